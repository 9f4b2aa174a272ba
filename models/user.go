package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Plan is the subscription tier controlling how many projects an account may own.
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// DefaultUserName is used when the identity provider supplies no display name.
const DefaultUserName = "Anonymous"

type User struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TokenIdentifier string             `bson:"token_identifier" json:"-"`
	Name            string             `bson:"name" json:"name"`
	Plan            Plan               `bson:"plan" json:"plan"`
	ProjectsUsed    int                `bson:"projects_used" json:"projects_used"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}
