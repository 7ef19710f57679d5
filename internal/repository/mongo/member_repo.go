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

const memberCollectionName = "members"

// mongoMemberRepository implements repository.MemberRepository using MongoDB.
// Assessment history and achievements live inside the member document, so
// every write below is a single-document update.
type mongoMemberRepository struct {
	collection *mongo.Collection
}

// NewMongoMemberRepository creates a new member repository.
func NewMongoMemberRepository(db *mongo.Database) repository.MemberRepository {
	return &mongoMemberRepository{
		collection: db.Collection(memberCollectionName),
	}
}

// Create inserts a new member.
func (r *mongoMemberRepository) Create(ctx context.Context, member *domain.Member) (primitive.ObjectID, error) {
	if member.Email == "" || member.PasswordHash == "" || member.AccountType == "" {
		return primitive.NilObjectID, errors.New("member email, password hash, and account type are required")
	}

	member.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	member.CreatedAt = now
	member.UpdatedAt = now
	if member.FitnessAssessments == nil {
		member.FitnessAssessments = []domain.FitnessAssessment{}
	}
	if member.Achievements == nil {
		member.Achievements = []string{}
	}

	result, err := r.collection.InsertOne(ctx, member)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrConflict
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a member by ObjectID.
func (r *mongoMemberRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Member, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByEmail retrieves a member by email address.
func (r *mongoMemberRepository) GetByEmail(ctx context.Context, email string) (*domain.Member, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoMemberRepository) findOne(ctx context.Context, filter bson.M) (*domain.Member, error) {
	var member domain.Member
	err := r.collection.FindOne(ctx, filter).Decode(&member)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &member, nil
}

// List returns members sorted by last name.
func (r *mongoMemberRepository) List(ctx context.Context, filter repository.MemberFilter) ([]domain.Member, error) {
	query := bson.M{}
	if filter.Flight != "" {
		query["flight"] = filter.Flight
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "lastName", Value: 1}, {Key: "firstName", Value: 1}})

	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	members := []domain.Member{}
	if err = cursor.All(ctx, &members); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return members, nil
}

// UpdateProfile overwrites the editable profile fields.
func (r *mongoMemberRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, update repository.ProfileUpdate) error {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.Rank != "" {
		set["rank"] = update.Rank
	}
	if update.FirstName != "" {
		set["firstName"] = update.FirstName
	}
	if update.LastName != "" {
		set["lastName"] = update.LastName
	}
	if update.Flight != "" {
		set["flight"] = update.Flight
	}
	if update.Gender != "" {
		set["gender"] = update.Gender
	}
	return r.updateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
}

// SetAccountType changes the account type and the PTL pending flag together.
func (r *mongoMemberRepository) SetAccountType(ctx context.Context, id primitive.ObjectID, accountType domain.AccountType, ptlPending bool) error {
	update := bson.M{"$set": bson.M{
		"accountType":        accountType,
		"ptlPendingApproval": ptlPending,
		"updatedAt":          time.Now().UTC(),
	}}
	return r.updateOne(ctx, bson.M{"_id": id}, update)
}

// ReplaceAccountType moves every holder of one account type to another.
func (r *mongoMemberRepository) ReplaceAccountType(ctx context.Context, from, to domain.AccountType) error {
	update := bson.M{"$set": bson.M{"accountType": to, "updatedAt": time.Now().UTC()}}
	_, err := r.collection.UpdateMany(ctx, bson.M{"accountType": from}, update)
	return err
}

// AppendAssessment pushes a new assessment and replaces the requirement,
// returning the document as it was before the push.
func (r *mongoMemberRepository) AppendAssessment(ctx context.Context, id primitive.ObjectID, assessment domain.FitnessAssessment, requiredSessions int) (*domain.Member, error) {
	update := bson.M{
		"$push": bson.M{"fitnessAssessments": assessment},
		"$set": bson.M{
			"requiredPTSessionsPerWeek": requiredSessions,
			"updatedAt":                 time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)

	var before domain.Member
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&before)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &before, nil
}

// GetByAssessmentID finds the member holding an assessment.
func (r *mongoMemberRepository) GetByAssessmentID(ctx context.Context, assessmentID primitive.ObjectID) (*domain.Member, error) {
	return r.findOne(ctx, bson.M{"fitnessAssessments.id": assessmentID})
}

// SetAssessmentPrivacy sets isPrivate on every history entry.
func (r *mongoMemberRepository) SetAssessmentPrivacy(ctx context.Context, id primitive.ObjectID, private bool) error {
	update := bson.M{"$set": bson.M{
		"fitnessAssessments.$[].isPrivate": private,
		"updatedAt":                        time.Now().UTC(),
	}}
	return r.updateOne(ctx, bson.M{"_id": id}, update)
}

// AddAchievements adds ids to the achievement set ($addToSet ignores repeats).
func (r *mongoMemberRepository) AddAchievements(ctx context.Context, id primitive.ObjectID, achievementIDs ...string) error {
	if len(achievementIDs) == 0 {
		return nil
	}
	update := bson.M{
		"$addToSet": bson.M{"achievements": bson.M{"$each": achievementIDs}},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}
	return r.updateOne(ctx, bson.M{"_id": id}, update)
}

// IncrementTotals bumps the running totals and returns the updated member.
func (r *mongoMemberRepository) IncrementTotals(ctx context.Context, id primitive.ObjectID, minutes int, miles float64, calories int) (*domain.Member, error) {
	update := bson.M{
		"$inc": bson.M{
			"exerciseMinutes": minutes,
			"distanceRun":     miles,
			"caloriesBurned":  calories,
		},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var member domain.Member
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&member)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &member, nil
}

// Delete removes a member document.
func (r *mongoMemberRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoMemberRepository) updateOne(ctx context.Context, filter, update bson.M) error {
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureMemberIndexes creates necessary indexes for the members collection.
// Call this once during application startup.
func EnsureMemberIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "flight", Value: 1}, {Key: "lastName", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "accountType", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "fitnessAssessments.id", Value: 1}},
			Options: options.Index(),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
