package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/aditisaurus/pixxel/controllers"
	"github.com/aditisaurus/pixxel/middleware"
)

func RegisterUserRoutes(rg *gin.RouterGroup, container *ServiceContainer) {
	userController := controllers.NewUserController(container.UserService)

	users := rg.Group("/users")
	users.Use(middleware.AuthMiddleware(container.Config.JWTSecret, container.Config.JWTIssuer))
	{
		users.GET("/me", userController.Me)
	}
}
