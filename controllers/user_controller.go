package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/aditisaurus/pixxel/middleware"
	"github.com/aditisaurus/pixxel/utils"
)

type UserController struct {
	users AccountResolver
}

func NewUserController(users AccountResolver) *UserController {
	return &UserController{users: users}
}

// Me returns the caller's account, provisioning it on first contact.
func (uc *UserController) Me(c *gin.Context) {
	tokenIdentifier := c.GetString(middleware.CtxTokenIdentifier)
	if tokenIdentifier == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return
	}

	user, err := uc.users.GetOrCreateByToken(c.Request.Context(), tokenIdentifier, c.GetString(middleware.CtxUserName))
	if err != nil {
		utils.InternalServerErrorResponse(c, "Failed to resolve account", err.Error())
		return
	}

	utils.SuccessResponse(c, "User retrieved successfully", user)
}
