package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project is one editable canvas owned by exactly one user. CanvasState and
// ActiveTransformations are opaque to the backend: stored and returned verbatim.
type Project struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID                primitive.ObjectID `bson:"user_id" json:"user_id"`
	Title                 string             `bson:"title" json:"title"`
	OriginalImageURL      string             `bson:"original_image_url,omitempty" json:"original_image_url,omitempty"`
	CurrentImageURL       string             `bson:"current_image_url,omitempty" json:"current_image_url,omitempty"`
	ThumbnailURL          string             `bson:"thumbnail_url,omitempty" json:"thumbnail_url,omitempty"`
	Width                 int                `bson:"width" json:"width"`
	Height                int                `bson:"height" json:"height"`
	CanvasState           interface{}        `bson:"canvas_state,omitempty" json:"canvas_state,omitempty"`
	ActiveTransformations string             `bson:"active_transformations,omitempty" json:"active_transformations,omitempty"`
	BackgroundRemoved     *bool              `bson:"background_removed,omitempty" json:"background_removed,omitempty"`
	CreatedAt             time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt             time.Time          `bson:"updated_at" json:"updated_at"`
}
