package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/aditisaurus/pixxel/models"
)

func TestGetOrCreateByToken_CreatesOnFirstSight(t *testing.T) {
	db := newTestDB(t)
	service := NewUserService(db)
	ctx := context.Background()

	user, err := service.GetOrCreateByToken(ctx, "provider|alice", "Alice")
	require.NoError(t, err)

	assert.Equal(t, "provider|alice", user.TokenIdentifier)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, models.PlanFree, user.Plan)
	assert.Equal(t, 0, user.ProjectsUsed)
	assert.False(t, user.ID.IsZero())
}

func TestGetOrCreateByToken_DefaultsName(t *testing.T) {
	db := newTestDB(t)
	service := NewUserService(db)

	user, err := service.GetOrCreateByToken(context.Background(), "provider|nameless", "")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultUserName, user.Name)
}

func TestGetOrCreateByToken_Idempotent(t *testing.T) {
	db := newTestDB(t)
	service := NewUserService(db)
	ctx := context.Background()

	first, err := service.GetOrCreateByToken(ctx, "provider|alice", "Alice")
	require.NoError(t, err)

	second, err := service.GetOrCreateByToken(ctx, "provider|alice", "Alice")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	count, err := db.Collection("users").CountDocuments(ctx, bson.M{"token_identifier": "provider|alice"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestGetOrCreateByToken_ConcurrentFirstRequests(t *testing.T) {
	db := newTestDB(t)
	service := NewUserService(db)
	ctx := context.Background()

	const workers = 10
	ids := make(chan string, workers)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			user, err := service.GetOrCreateByToken(ctx, "provider|raced", "Racer")
			if assert.NoError(t, err) {
				ids <- user.ID.Hex()
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		seen[id] = true
	}
	assert.Len(t, seen, 1, "all racers must resolve to the same account")

	count, err := db.Collection("users").CountDocuments(ctx, bson.M{"token_identifier": "provider|raced"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count, "exactly one account row must exist")
}

func TestGetOrCreateByToken_EmptyToken(t *testing.T) {
	db := newTestDB(t)
	service := NewUserService(db)

	_, err := service.GetOrCreateByToken(context.Background(), "", "Ghost")
	assert.Error(t, err)
}
