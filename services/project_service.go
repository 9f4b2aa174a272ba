package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aditisaurus/pixxel/models"
	"github.com/aditisaurus/pixxel/utils"
)

// ProjectService performs all project reads and writes and keeps the owning
// user's projects_used counter consistent with the number of live projects.
// Create and delete run the document write and the counter write inside one
// session transaction, so a failure rolls back both.
type ProjectService struct {
	client            *mongo.Client
	projectCollection *mongo.Collection
	userCollection    *mongo.Collection
	quota             *Quota
}

// CreateProjectInput carries the fields a new project is created with.
type CreateProjectInput struct {
	Title            string
	Width            int
	Height           int
	OriginalImageURL string
	CurrentImageURL  string
	ThumbnailURL     string
	CanvasState      interface{}
}

// ProjectUpdate is a field-presence patch: nil fields are left untouched,
// non-nil fields overwrite the stored value. An all-nil patch is a legal
// no-op that still refreshes updated_at.
type ProjectUpdate struct {
	Title                 *string
	Width                 *int
	Height                *int
	CurrentImageURL       *string
	ThumbnailURL          *string
	ActiveTransformations *string
	BackgroundRemoved     *bool
	CanvasState           interface{}
}

func NewProjectService(db *mongo.Database, quota *Quota) *ProjectService {
	service := &ProjectService{
		client:            db.Client(),
		projectCollection: db.Collection("projects"),
		userCollection:    db.Collection("users"),
		quota:             quota,
	}
	service.createIndexes()
	return service
}

func (s *ProjectService) createIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userUpdatedIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "updated_at", Value: -1}},
	}

	if _, err := s.projectCollection.Indexes().CreateOne(ctx, userUpdatedIndex); err != nil {
		// Only costs query performance; the index is not load-bearing.
		log.Warn().Err(err).Msg("failed to create projects indexes")
	}
}

// ListByOwner returns the user's projects, most recently touched first. A
// brand-new account gets an empty slice, never an error.
func (s *ProjectService) ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Project, error) {
	cursor, err := s.projectCollection.Find(ctx,
		bson.M{"user_id": ownerID},
		options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer cursor.Close(ctx)

	var projects []models.Project
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, fmt.Errorf("failed to decode projects: %w", err)
	}
	if projects == nil {
		projects = []models.Project{}
	}
	return projects, nil
}

// Create inserts a project for owner after the quota gate passes. The gate is
// a conditional increment of projects_used on the user document: two creates
// racing at one slot below the limit contend on that single document write, so
// at most one passes. Gate and insert commit together or not at all.
func (s *ProjectService) Create(ctx context.Context, owner *models.User, input CreateProjectInput) (*models.Project, error) {
	if err := utils.ValidateProjectTitle(input.Title); err != nil {
		return nil, err
	}
	if err := utils.ValidateDimensions(input.Width, input.Height); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	project := models.Project{
		ID:               primitive.NewObjectID(),
		UserID:           owner.ID,
		Title:            input.Title,
		OriginalImageURL: input.OriginalImageURL,
		CurrentImageURL:  input.CurrentImageURL,
		ThumbnailURL:     input.ThumbnailURL,
		Width:            input.Width,
		Height:           input.Height,
		CanvasState:      input.CanvasState,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	limit := s.quota.LimitFor(owner.Plan)

	err := s.withTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		gate := bson.M{"_id": owner.ID}
		if limit != UnlimitedProjects {
			gate["projects_used"] = bson.M{"$lt": limit}
		}

		res, err := s.userCollection.UpdateOne(sessCtx, gate, bson.M{
			"$inc": bson.M{"projects_used": 1},
			"$set": bson.M{"updated_at": now},
		})
		if err != nil {
			return fmt.Errorf("failed to update project count: %w", err)
		}
		if res.MatchedCount == 0 {
			exists, err := s.userCollection.CountDocuments(sessCtx, bson.M{"_id": owner.ID})
			if err != nil {
				return fmt.Errorf("database error: %w", err)
			}
			if exists == 0 {
				return ErrUserNotFound
			}
			return s.quota.Exceeded(owner.Plan)
		}

		if _, err := s.projectCollection.InsertOne(sessCtx, project); err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &project, nil
}

// Get returns a project unchanged after the ownership check.
func (s *ProjectService) Get(ctx context.Context, ownerID, projectID primitive.ObjectID) (*models.Project, error) {
	return s.findOwned(ctx, ownerID, projectID)
}

// Update applies a field-presence merge to an owned project and always
// refreshes updated_at.
func (s *ProjectService) Update(ctx context.Context, ownerID, projectID primitive.ObjectID, patch ProjectUpdate) (primitive.ObjectID, error) {
	if _, err := s.findOwned(ctx, ownerID, projectID); err != nil {
		return primitive.NilObjectID, err
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Title != nil {
		if err := utils.ValidateProjectTitle(*patch.Title); err != nil {
			return primitive.NilObjectID, err
		}
		set["title"] = *patch.Title
	}
	if patch.Width != nil || patch.Height != nil {
		width, height := 1, 1
		if patch.Width != nil {
			width = *patch.Width
		}
		if patch.Height != nil {
			height = *patch.Height
		}
		if err := utils.ValidateDimensions(width, height); err != nil {
			return primitive.NilObjectID, err
		}
		if patch.Width != nil {
			set["width"] = *patch.Width
		}
		if patch.Height != nil {
			set["height"] = *patch.Height
		}
	}
	if patch.CurrentImageURL != nil {
		set["current_image_url"] = *patch.CurrentImageURL
	}
	if patch.ThumbnailURL != nil {
		set["thumbnail_url"] = *patch.ThumbnailURL
	}
	if patch.ActiveTransformations != nil {
		set["active_transformations"] = *patch.ActiveTransformations
	}
	if patch.BackgroundRemoved != nil {
		set["background_removed"] = *patch.BackgroundRemoved
	}
	if patch.CanvasState != nil {
		set["canvas_state"] = patch.CanvasState
	}

	res, err := s.projectCollection.UpdateOne(ctx,
		bson.M{"_id": projectID, "user_id": ownerID},
		bson.M{"$set": set},
	)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to update project: %w", err)
	}
	if res.MatchedCount == 0 {
		// Deleted between the guard and the write.
		return primitive.NilObjectID, ErrProjectNotFound
	}
	return projectID, nil
}

// Delete removes an owned project and decrements the owner's counter, floored
// at zero so pre-existing drift can never push it negative. Both writes commit
// together or not at all.
func (s *ProjectService) Delete(ctx context.Context, ownerID, projectID primitive.ObjectID) error {
	if _, err := s.findOwned(ctx, ownerID, projectID); err != nil {
		return err
	}

	now := time.Now().UTC()
	return s.withTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		res, err := s.projectCollection.DeleteOne(sessCtx, bson.M{"_id": projectID, "user_id": ownerID})
		if err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		if res.DeletedCount == 0 {
			return ErrProjectNotFound
		}

		decrement := mongo.Pipeline{
			bson.D{{Key: "$set", Value: bson.D{
				{Key: "projects_used", Value: bson.D{{Key: "$max", Value: bson.A{
					0,
					bson.D{{Key: "$subtract", Value: bson.A{"$projects_used", 1}}},
				}}}},
				{Key: "updated_at", Value: now},
			}}},
		}
		if _, err := s.userCollection.UpdateOne(sessCtx, bson.M{"_id": ownerID}, decrement); err != nil {
			return fmt.Errorf("failed to update project count: %w", err)
		}
		return nil
	})
}

// findOwned is the ownership guard: it distinguishes "no such project" from
// "someone else's project" internally, while the HTTP layer presents both the
// same way.
func (s *ProjectService) findOwned(ctx context.Context, ownerID, projectID primitive.ObjectID) (*models.Project, error) {
	var project models.Project
	err := s.projectCollection.FindOne(ctx, bson.M{"_id": projectID}).Decode(&project)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if project.UserID != ownerID {
		return nil, ErrAccessDenied
	}
	return &project, nil
}

func (s *ProjectService) withTransaction(ctx context.Context, fn func(mongo.SessionContext) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}
