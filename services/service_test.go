package services

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// newTestDB connects to a local MongoDB for store-level tests. Create and
// delete use multi-document transactions, so a replica set (or mongod started
// with --replSet) is required; tests skip when either is unavailable.
func newTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Skipf("MongoDB not reachable: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		t.Skip("MongoDB not available for testing")
	}

	db := client.Database(fmt.Sprintf("pixxel_test_%d", time.Now().UnixNano()))

	if !transactionsSupported(ctx, client, db) {
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
		t.Skip("MongoDB transactions not supported (standalone server?)")
	}

	t.Cleanup(func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cleanupCancel()
		_ = db.Drop(cleanupCtx)
		_ = client.Disconnect(cleanupCtx)
	})

	return db
}

func transactionsSupported(ctx context.Context, client *mongo.Client, db *mongo.Database) bool {
	session, err := client.StartSession()
	if err != nil {
		return false
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return db.Collection("txn_probe").InsertOne(sessCtx, bson.M{"probe": true})
	})
	return err == nil
}
