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
)

// UserService resolves external identities to internal accounts. Accounts are
// never created through an explicit endpoint: the first authenticated request
// bearing an unseen token identifier materializes one.
type UserService struct {
	userCollection *mongo.Collection
}

func NewUserService(db *mongo.Database) *UserService {
	service := &UserService{
		userCollection: db.Collection("users"),
	}
	service.createIndexes()
	return service
}

func (s *UserService) createIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tokenIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "token_identifier", Value: 1}},
		Options: options.Index().SetUnique(true),
	}

	if _, err := s.userCollection.Indexes().CreateOne(ctx, tokenIndex); err != nil {
		// The unique constraint serializes concurrent account creation, so a
		// failure here is worth noticing even though the index may simply
		// already exist.
		log.Warn().Err(err).Msg("failed to create users indexes")
	}
}

// GetOrCreateByToken returns the account for an external identity, creating it
// on first sight. Concurrent first requests for the same token are serialized
// by the unique index: the losing insert re-reads the winner's row, so exactly
// one account ever exists per token.
func (s *UserService) GetOrCreateByToken(ctx context.Context, tokenIdentifier, name string) (*models.User, error) {
	if tokenIdentifier == "" {
		return nil, fmt.Errorf("empty token identifier")
	}

	var user models.User
	err := s.userCollection.FindOne(ctx, bson.M{"token_identifier": tokenIdentifier}).Decode(&user)
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if name == "" {
		name = models.DefaultUserName
	}

	now := time.Now().UTC()
	user = models.User{
		ID:              primitive.NewObjectID(),
		TokenIdentifier: tokenIdentifier,
		Name:            name,
		Plan:            models.PlanFree,
		ProjectsUsed:    0,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	_, err = s.userCollection.InsertOne(ctx, user)
	if err == nil {
		log.Info().Str("user_id", user.ID.Hex()).Msg("created new user")
		return &user, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Lost the race against a concurrent first request; the row exists now.
	err = s.userCollection.FindOne(ctx, bson.M{"token_identifier": tokenIdentifier}).Decode(&user)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

// GetByID fetches an account by its internal id.
func (s *UserService) GetByID(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.userCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}
