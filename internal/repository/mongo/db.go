package mongo

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB and verifies it with a ping.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// Connect succeeds lazily, so ping to catch an unreachable server now.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}
	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes for every collection the tracker uses.
// Failures are logged, not returned.
func EnsureIndexes(ctx context.Context, db *mongo.Database) {
	EnsureMemberIndexes(ctx, db.Collection(memberCollectionName))
	EnsureWorkoutIndexes(ctx, db.Collection(workoutCollectionName))
	EnsurePTSessionIndexes(ctx, db.Collection(ptSessionCollectionName))
	EnsureScheduledSessionIndexes(ctx, db.Collection(scheduledSessionCollectionName))
	EnsureSharedWorkoutIndexes(ctx, db.Collection(sharedWorkoutCollectionName))
	log.Println("INFO: Index creation process completed.")
}
