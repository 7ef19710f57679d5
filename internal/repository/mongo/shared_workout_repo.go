package mongo

import (
	"alcyxob/flighttrack/internal/domain"
	"alcyxob/flighttrack/internal/repository"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const sharedWorkoutCollectionName = "shared_workouts"

type mongoSharedWorkoutRepository struct {
	collection *mongo.Collection
}

// NewMongoSharedWorkoutRepository creates a new shared workout repository.
func NewMongoSharedWorkoutRepository(db *mongo.Database) repository.SharedWorkoutRepository {
	return &mongoSharedWorkoutRepository{
		collection: db.Collection(sharedWorkoutCollectionName),
	}
}

func (r *mongoSharedWorkoutRepository) Create(ctx context.Context, workout *domain.SharedWorkout) (primitive.ObjectID, error) {
	if workout.Name == "" || workout.CreatedBy.IsZero() {
		return primitive.NilObjectID, errors.New("shared workout requires name and createdBy")
	}
	workout.ID = primitive.NewObjectID()
	workout.CreatedAt = time.Now().UTC()
	if workout.Steps == nil {
		workout.Steps = []string{}
	}
	workout.ThumbsUp = []primitive.ObjectID{}
	workout.ThumbsDown = []primitive.ObjectID{}
	workout.FavoritedBy = []primitive.ObjectID{}

	result, err := r.collection.InsertOne(ctx, workout)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted shared workout ID")
	}
	return insertedID, nil
}

func (r *mongoSharedWorkoutRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.SharedWorkout, error) {
	var workout domain.SharedWorkout
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// List returns matching workouts, newest first.
func (r *mongoSharedWorkoutRepository) List(ctx context.Context, filter repository.SharedWorkoutFilter) ([]domain.SharedWorkout, error) {
	query := bson.M{}
	if filter.Squadron != "" {
		query["squadron"] = filter.Squadron
	}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if !filter.CreatedBy.IsZero() {
		query["createdBy"] = filter.CreatedBy
	}
	if !filter.FavoritedBy.IsZero() {
		query["favoritedBy"] = filter.FavoritedBy
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	workouts := []domain.SharedWorkout{}
	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	return workouts, cursor.Err()
}

func (r *mongoSharedWorkoutRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetRating is one update: $addToSet on the chosen list and $pull on the
// other touch different fields, so they can be combined.
func (r *mongoSharedWorkoutRepository) SetRating(ctx context.Context, id, memberID primitive.ObjectID, rating domain.Rating) (*domain.SharedWorkout, error) {
	var update bson.M
	switch rating {
	case domain.RatingUp:
		update = bson.M{"$addToSet": bson.M{"thumbsUp": memberID}, "$pull": bson.M{"thumbsDown": memberID}}
	case domain.RatingDown:
		update = bson.M{"$addToSet": bson.M{"thumbsDown": memberID}, "$pull": bson.M{"thumbsUp": memberID}}
	case domain.RatingNone:
		update = bson.M{"$pull": bson.M{"thumbsUp": memberID, "thumbsDown": memberID}}
	default:
		return nil, fmt.Errorf("unknown rating %q", rating)
	}
	return r.findOneAndUpdate(ctx, bson.M{"_id": id}, update)
}

// ToggleFavorite mirrors ToggleAttendee: each branch is conditional on the
// current membership, so concurrent toggles cannot both add.
func (r *mongoSharedWorkoutRepository) ToggleFavorite(ctx context.Context, id, memberID primitive.ObjectID) (*domain.SharedWorkout, error) {
	workout, err := r.findOneAndUpdate(ctx,
		bson.M{"_id": id, "favoritedBy": memberID},
		bson.M{"$pull": bson.M{"favoritedBy": memberID}},
	)
	if !errors.Is(err, repository.ErrNotFound) {
		return workout, err
	}
	return r.findOneAndUpdate(ctx,
		bson.M{"_id": id, "favoritedBy": bson.M{"$ne": memberID}},
		bson.M{"$addToSet": bson.M{"favoritedBy": memberID}},
	)
}

func (r *mongoSharedWorkoutRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*domain.SharedWorkout, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var workout domain.SharedWorkout
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// EnsureSharedWorkoutIndexes creates necessary indexes. Call during startup.
func EnsureSharedWorkoutIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "squadron", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "favoritedBy", Value: 1}},
			Options: options.Index(),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
