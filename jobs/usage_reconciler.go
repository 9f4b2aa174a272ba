package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/aditisaurus/pixxel/models"
)

// UsageReconciler recomputes each user's projects_used from live project
// counts. The write path keeps the counter correct transactionally; this job
// repairs any drift left behind by historical bugs or manual edits.
type UsageReconciler struct {
	userCollection    *mongo.Collection
	projectCollection *mongo.Collection
	logger            zerolog.Logger
}

func NewUsageReconciler(db *mongo.Database) *UsageReconciler {
	return &UsageReconciler{
		userCollection:    db.Collection("users"),
		projectCollection: db.Collection("projects"),
		logger:            log.With().Str("job", "usage_reconciler").Logger(),
	}
}

// StartUsageReconciler runs the reconciler on the given interval until the
// context is cancelled.
func StartUsageReconciler(ctx context.Context, reconciler *UsageReconciler, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if fixed, err := reconciler.Run(ctx); err != nil {
					reconciler.logger.Error().Err(err).Msg("reconcile run failed")
				} else if fixed > 0 {
					reconciler.logger.Warn().Int("corrected", fixed).Msg("usage counters drifted")
				}
			}
		}
	}()
}

// Run scans all users and corrects counters that disagree with the live
// project count. Returns how many users were corrected.
func (r *UsageReconciler) Run(ctx context.Context) (int, error) {
	cursor, err := r.userCollection.Find(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer cursor.Close(ctx)

	var corrected int
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			r.logger.Error().Err(err).Msg("failed to decode user")
			continue
		}

		live, err := r.projectCollection.CountDocuments(ctx, bson.M{"user_id": user.ID})
		if err != nil {
			r.logger.Error().Err(err).Str("user_id", user.ID.Hex()).Msg("failed to count projects")
			continue
		}

		if int(live) == user.ProjectsUsed {
			continue
		}

		// Guard against overwriting a counter a concurrent create/delete just
		// moved: only correct if it still holds the stale value.
		res, err := r.userCollection.UpdateOne(ctx,
			bson.M{"_id": user.ID, "projects_used": user.ProjectsUsed},
			bson.M{"$set": bson.M{"projects_used": int(live), "updated_at": time.Now().UTC()}},
		)
		if err != nil {
			r.logger.Error().Err(err).Str("user_id", user.ID.Hex()).Msg("failed to correct counter")
			continue
		}
		if res.ModifiedCount > 0 {
			r.logger.Info().
				Str("user_id", user.ID.Hex()).
				Int("was", user.ProjectsUsed).
				Int64("now", live).
				Msg("corrected projects_used")
			corrected++
		}
	}

	if err := cursor.Err(); err != nil {
		return corrected, fmt.Errorf("cursor error: %w", err)
	}
	return corrected, nil
}
