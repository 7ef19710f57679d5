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

const ptSessionCollectionName = "pt_sessions"

type mongoPTSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoPTSessionRepository creates a new PT session repository.
func NewMongoPTSessionRepository(db *mongo.Database) repository.PTSessionRepository {
	return &mongoPTSessionRepository{
		collection: db.Collection(ptSessionCollectionName),
	}
}

// Create inserts a session. (flight, date) is unique.
func (r *mongoPTSessionRepository) Create(ctx context.Context, session *domain.PTSession) (primitive.ObjectID, error) {
	if session.Flight == "" || session.Date == "" {
		return primitive.NilObjectID, errors.New("pt session requires flight and date")
	}
	session.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now
	if session.Attendees == nil {
		session.Attendees = []primitive.ObjectID{}
	}

	result, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrConflict
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted session ID")
	}
	return insertedID, nil
}

// GetByID retrieves a session by its ID.
func (r *mongoPTSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PTSession, error) {
	var session domain.PTSession
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// GetByFlightAndDate finds the session a flight held on a given day.
func (r *mongoPTSessionRepository) GetByFlightAndDate(ctx context.Context, flight domain.Flight, date string) (*domain.PTSession, error) {
	var session domain.PTSession
	err := r.collection.FindOne(ctx, bson.M{"flight": flight, "date": date}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// ToggleAttendee flips memberID's presence on the attendee list. Each branch
// is a single conditional update, so two concurrent toggles cannot both add.
func (r *mongoPTSessionRepository) ToggleAttendee(ctx context.Context, sessionID, memberID primitive.ObjectID) (*domain.PTSession, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	now := time.Now().UTC()

	var session domain.PTSession
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": sessionID, "attendees": memberID},
		bson.M{"$pull": bson.M{"attendees": memberID}, "$set": bson.M{"updatedAt": now}},
		opts,
	).Decode(&session)
	if err == nil {
		return &session, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": sessionID, "attendees": bson.M{"$ne": memberID}},
		bson.M{"$addToSet": bson.M{"attendees": memberID}, "$set": bson.M{"updatedAt": now}},
		opts,
	).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// ListAttended returns the sessions a member attended inside [from, to].
func (r *mongoPTSessionRepository) ListAttended(ctx context.Context, memberID primitive.ObjectID, from, to string) ([]domain.PTSession, error) {
	filter := bson.M{
		"attendees": memberID,
		"date":      bson.M{"$gte": from, "$lte": to},
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	sessions := []domain.PTSession{}
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, cursor.Err()
}

// Delete removes a session and its attendance.
func (r *mongoPTSessionRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsurePTSessionIndexes creates necessary indexes. Call during startup.
func EnsurePTSessionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "flight", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "attendees", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index(),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
