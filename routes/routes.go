package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/aditisaurus/pixxel/config"
	"github.com/aditisaurus/pixxel/services"
)

// ServiceContainer holds all services and dependencies.
type ServiceContainer struct {
	DB             *mongo.Database
	Config         *config.Config
	UserService    *services.UserService
	ProjectService *services.ProjectService
	AssetService   *services.AssetService // nil when B2 is not configured
}

// NewServiceContainer initializes every service against the given database.
func NewServiceContainer(ctx context.Context, db *mongo.Database, cfg *config.Config) (*ServiceContainer, error) {
	userService := services.NewUserService(db)
	quota := services.NewQuota(cfg.FreePlanProjectLimit)
	projectService := services.NewProjectService(db, quota)

	var assetService *services.AssetService
	if cfg.AssetsConfigured() {
		var err error
		assetService, err = services.NewAssetService(ctx, cfg.B2ApplicationKeyID, cfg.B2ApplicationKey, cfg.B2BucketName, cfg.AssetTokenTTL)
		if err != nil {
			return nil, err
		}
	} else {
		log.Info().Msg("B2 credentials not set, asset token endpoint disabled")
	}

	return &ServiceContainer{
		DB:             db,
		Config:         cfg,
		UserService:    userService,
		ProjectService: projectService,
		AssetService:   assetService,
	}, nil
}

// SetupRoutes registers all API route groups.
func SetupRoutes(api *gin.RouterGroup, container *ServiceContainer) {
	RegisterProjectRoutes(api, container)
	RegisterUserRoutes(api, container)
}
