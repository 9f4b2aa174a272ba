package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aditisaurus/pixxel/utils"
)

// Context keys set by AuthMiddleware for downstream handlers.
const (
	CtxTokenIdentifier = "tokenIdentifier"
	CtxUserName        = "userName"
)

// AuthMiddleware verifies the identity provider's assertion. Requests without
// a valid assertion are rejected before any other logic runs.
func AuthMiddleware(jwtSecret, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			utils.UnauthorizedResponse(c, "Authorization token required")
			c.Abort()
			return
		}

		claims, err := utils.VerifyIdentityToken(token, jwtSecret, issuer)
		if err != nil {
			utils.UnauthorizedResponse(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(CtxTokenIdentifier, claims.Subject)
		c.Set(CtxUserName, claims.Name)

		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return ""
	}

	return strings.TrimSpace(authHeader[len(bearerPrefix):])
}
