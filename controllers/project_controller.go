package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aditisaurus/pixxel/middleware"
	"github.com/aditisaurus/pixxel/models"
	"github.com/aditisaurus/pixxel/services"
	"github.com/aditisaurus/pixxel/utils"
)

// AccountResolver maps an authenticated external identity to an account,
// creating it on first sight.
type AccountResolver interface {
	GetOrCreateByToken(ctx context.Context, tokenIdentifier, name string) (*models.User, error)
}

// ProjectStore is the ownership-checked project facade.
type ProjectStore interface {
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Project, error)
	Create(ctx context.Context, owner *models.User, input services.CreateProjectInput) (*models.Project, error)
	Get(ctx context.Context, ownerID, projectID primitive.ObjectID) (*models.Project, error)
	Update(ctx context.Context, ownerID, projectID primitive.ObjectID, patch services.ProjectUpdate) (primitive.ObjectID, error)
	Delete(ctx context.Context, ownerID, projectID primitive.ObjectID) error
}

// AssetAuthorizer grants scoped download access to a project's stored assets.
type AssetAuthorizer interface {
	AuthorizeProjectAssets(ctx context.Context, projectID string) (*services.AssetGrant, error)
}

type ProjectController struct {
	users    AccountResolver
	projects ProjectStore
	assets   AssetAuthorizer // nil when B2 is not configured
}

func NewProjectController(users AccountResolver, projects ProjectStore, assets AssetAuthorizer) *ProjectController {
	return &ProjectController{
		users:    users,
		projects: projects,
		assets:   assets,
	}
}

type createProjectRequest struct {
	Title            string      `json:"title" binding:"required"`
	Width            int         `json:"width" binding:"required"`
	Height           int         `json:"height" binding:"required"`
	OriginalImageURL string      `json:"original_image_url"`
	CurrentImageURL  string      `json:"current_image_url"`
	ThumbnailURL     string      `json:"thumbnail_url"`
	CanvasState      interface{} `json:"canvas_state"`
}

type updateProjectRequest struct {
	Title                 *string     `json:"title"`
	Width                 *int        `json:"width"`
	Height                *int        `json:"height"`
	CurrentImageURL       *string     `json:"current_image_url"`
	ThumbnailURL          *string     `json:"thumbnail_url"`
	ActiveTransformations *string     `json:"active_transformations"`
	BackgroundRemoved     *bool       `json:"background_removed"`
	CanvasState           interface{} `json:"canvas_state"`
}

// ========== Helpers ==========

// resolveAccount turns the verified identity assertion into an account,
// provisioning one on first contact.
func (pc *ProjectController) resolveAccount(c *gin.Context) (*models.User, bool) {
	tokenIdentifier := c.GetString(middleware.CtxTokenIdentifier)
	if tokenIdentifier == "" {
		utils.UnauthorizedResponse(c, "User not authenticated")
		return nil, false
	}

	user, err := pc.users.GetOrCreateByToken(c.Request.Context(), tokenIdentifier, c.GetString(middleware.CtxUserName))
	if err != nil {
		utils.InternalServerErrorResponse(c, "Failed to resolve account", err.Error())
		return nil, false
	}
	return user, true
}

func (pc *ProjectController) parseProjectID(c *gin.Context) (primitive.ObjectID, bool) {
	id := c.Param("id")
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid project ID format", nil)
		return primitive.NilObjectID, false
	}
	return objID, true
}

// handleError maps service errors to HTTP. Not-found and not-owned produce an
// identical response on purpose: callers must not be able to tell whether a
// project they don't own exists.
func (pc *ProjectController) handleError(c *gin.Context, err error, defaultMessage string) {
	var quotaErr *services.QuotaExceededError
	var validationErr *utils.ValidationError

	switch {
	case errors.Is(err, services.ErrProjectNotFound), errors.Is(err, services.ErrAccessDenied):
		utils.NotFoundResponse(c, "Project not found")
	case errors.As(err, &quotaErr):
		utils.ForbiddenResponse(c, quotaErr.Error())
	case errors.As(err, &validationErr):
		utils.BadRequestResponse(c, validationErr.Error(), nil)
	default:
		utils.ErrorResponse(c, http.StatusInternalServerError, defaultMessage, err.Error())
	}
}

// ========== Endpoints ==========

// ListProjects returns the caller's projects, most recently updated first.
func (pc *ProjectController) ListProjects(c *gin.Context) {
	user, ok := pc.resolveAccount(c)
	if !ok {
		return
	}

	projects, err := pc.projects.ListByOwner(c.Request.Context(), user.ID)
	if err != nil {
		pc.handleError(c, err, "Failed to retrieve projects")
		return
	}

	utils.SuccessResponse(c, "Projects retrieved successfully", projects)
}

// CreateProject creates a project for the caller, subject to plan quota.
func (pc *ProjectController) CreateProject(c *gin.Context) {
	user, ok := pc.resolveAccount(c)
	if !ok {
		return
	}

	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request data", err.Error())
		return
	}

	project, err := pc.projects.Create(c.Request.Context(), user, services.CreateProjectInput{
		Title:            req.Title,
		Width:            req.Width,
		Height:           req.Height,
		OriginalImageURL: req.OriginalImageURL,
		CurrentImageURL:  req.CurrentImageURL,
		ThumbnailURL:     req.ThumbnailURL,
		CanvasState:      req.CanvasState,
	})
	if err != nil {
		pc.handleError(c, err, "Failed to create project")
		return
	}

	utils.CreatedResponse(c, "Project created successfully", gin.H{"id": project.ID})
}

// GetProject returns one owned project unchanged.
func (pc *ProjectController) GetProject(c *gin.Context) {
	user, ok := pc.resolveAccount(c)
	if !ok {
		return
	}
	projectID, ok := pc.parseProjectID(c)
	if !ok {
		return
	}

	project, err := pc.projects.Get(c.Request.Context(), user.ID, projectID)
	if err != nil {
		pc.handleError(c, err, "Failed to retrieve project")
		return
	}

	utils.SuccessResponse(c, "Project retrieved successfully", project)
}

// UpdateProject applies a partial update: only fields present in the request
// body overwrite stored values.
func (pc *ProjectController) UpdateProject(c *gin.Context) {
	user, ok := pc.resolveAccount(c)
	if !ok {
		return
	}
	projectID, ok := pc.parseProjectID(c)
	if !ok {
		return
	}

	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request data", err.Error())
		return
	}

	id, err := pc.projects.Update(c.Request.Context(), user.ID, projectID, services.ProjectUpdate{
		Title:                 req.Title,
		Width:                 req.Width,
		Height:                req.Height,
		CurrentImageURL:       req.CurrentImageURL,
		ThumbnailURL:          req.ThumbnailURL,
		ActiveTransformations: req.ActiveTransformations,
		BackgroundRemoved:     req.BackgroundRemoved,
		CanvasState:           req.CanvasState,
	})
	if err != nil {
		pc.handleError(c, err, "Failed to update project")
		return
	}

	utils.SuccessResponse(c, "Project updated successfully", gin.H{"id": id})
}

// DeleteProject removes an owned project and releases its quota slot.
func (pc *ProjectController) DeleteProject(c *gin.Context) {
	user, ok := pc.resolveAccount(c)
	if !ok {
		return
	}
	projectID, ok := pc.parseProjectID(c)
	if !ok {
		return
	}

	if err := pc.projects.Delete(c.Request.Context(), user.ID, projectID); err != nil {
		pc.handleError(c, err, "Failed to delete project")
		return
	}

	utils.SuccessResponse(c, "Project deleted successfully", gin.H{"deleted": true})
}

// GetAssetToken grants short-lived download access to the project's assets.
func (pc *ProjectController) GetAssetToken(c *gin.Context) {
	user, ok := pc.resolveAccount(c)
	if !ok {
		return
	}
	projectID, ok := pc.parseProjectID(c)
	if !ok {
		return
	}

	// Ownership guard runs before any grant is minted.
	if _, err := pc.projects.Get(c.Request.Context(), user.ID, projectID); err != nil {
		pc.handleError(c, err, "Failed to retrieve project")
		return
	}

	if pc.assets == nil {
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "Asset service not configured", nil)
		return
	}

	grant, err := pc.assets.AuthorizeProjectAssets(c.Request.Context(), projectID.Hex())
	if err != nil {
		pc.handleError(c, err, "Failed to authorize asset access")
		return
	}

	utils.SuccessResponse(c, "Asset access granted", grant)
}
