package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/aditisaurus/pixxel/controllers"
	"github.com/aditisaurus/pixxel/middleware"
)

func RegisterProjectRoutes(rg *gin.RouterGroup, container *ServiceContainer) {
	// AssetService may be nil; the controller answers 503 for the token
	// endpoint in that case.
	var assets controllers.AssetAuthorizer
	if container.AssetService != nil {
		assets = container.AssetService
	}

	projectController := controllers.NewProjectController(container.UserService, container.ProjectService, assets)

	projects := rg.Group("/projects")
	projects.Use(middleware.AuthMiddleware(container.Config.JWTSecret, container.Config.JWTIssuer))
	{
		projects.GET("", projectController.ListProjects)
		projects.POST("", projectController.CreateProject)
		projects.GET("/:id", projectController.GetProject)
		projects.PATCH("/:id", projectController.UpdateProject)
		projects.DELETE("/:id", projectController.DeleteProject)
		projects.GET("/:id/assets/token", projectController.GetAssetToken)
	}
}
