package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityClaims is the assertion minted by the external identity provider.
// Subject is the stable token identifier for the real-world user; Name may be
// empty when the provider has no display name.
type IdentityClaims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// GenerateIdentityToken signs an identity assertion. Used by tests and local
// tooling; in production the identity provider mints these.
func GenerateIdentityToken(tokenIdentifier, name, secret, issuer string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &IdentityClaims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   tokenIdentifier,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// VerifyIdentityToken validates an identity assertion and returns its claims.
// An empty issuer disables issuer checking.
func VerifyIdentityToken(tokenString, secret, issuer string) (*IdentityClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &IdentityClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*IdentityClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token missing subject")
	}
	return claims, nil
}
