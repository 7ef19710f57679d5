package mongo

import (
	"alcyxob/flighttrack/internal/domain"
	"alcyxob/flighttrack/internal/repository"
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const scheduledSessionCollectionName = "scheduled_sessions"

type mongoScheduledSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoScheduledSessionRepository creates a new scheduled session repository.
func NewMongoScheduledSessionRepository(db *mongo.Database) repository.ScheduledSessionRepository {
	return &mongoScheduledSessionRepository{
		collection: db.Collection(scheduledSessionCollectionName),
	}
}

func (r *mongoScheduledSessionRepository) Create(ctx context.Context, session *domain.ScheduledSession) (primitive.ObjectID, error) {
	session.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted scheduled session ID")
	}
	return insertedID, nil
}

func (r *mongoScheduledSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ScheduledSession, error) {
	var session domain.ScheduledSession
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// Update sets the non-empty fields and returns the stored result.
func (r *mongoScheduledSessionRepository) Update(ctx context.Context, id primitive.ObjectID, update repository.ScheduleUpdate) (*domain.ScheduledSession, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.Date != "" {
		set["date"] = update.Date
	}
	if update.Time != "" {
		set["time"] = update.Time
	}
	if update.Description != "" {
		set["description"] = update.Description
	}
	if update.Flight != "" {
		set["flight"] = update.Flight
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var session domain.ScheduledSession
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *mongoScheduledSessionRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListFrom relies on YYYY-MM-DD and HH:MM sorting lexically.
func (r *mongoScheduledSessionRepository) ListFrom(ctx context.Context, from string, flight domain.Flight) ([]domain.ScheduledSession, error) {
	filter := bson.M{"date": bson.M{"$gte": from}}
	if flight != "" {
		filter["flight"] = flight
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	sessions := []domain.ScheduledSession{}
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, cursor.Err()
}

// EnsureScheduledSessionIndexes creates necessary indexes. Call during startup.
func EnsureScheduledSessionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "flight", Value: 1}, {Key: "date", Value: 1}, {Key: "time", Value: 1}},
			Options: options.Index(),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
