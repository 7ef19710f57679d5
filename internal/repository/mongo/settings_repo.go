package mongo

import (
	"alcyxob/flighttrack/internal/domain"
	"alcyxob/flighttrack/internal/repository"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	settingsCollectionName = "settings"
	settingsDocumentID     = "squadron"
)

type mongoSettingsRepository struct {
	collection *mongo.Collection
}

// NewMongoSettingsRepository creates a repository over the single settings document.
func NewMongoSettingsRepository(db *mongo.Database) repository.SettingsRepository {
	return &mongoSettingsRepository{
		collection: db.Collection(settingsCollectionName),
	}
}

func (r *mongoSettingsRepository) Get(ctx context.Context) (*domain.Settings, error) {
	var settings domain.Settings
	err := r.collection.FindOne(ctx, bson.M{"_id": settingsDocumentID}).Decode(&settings)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &settings, nil
}

// Save upserts the settings document.
func (r *mongoSettingsRepository) Save(ctx context.Context, settings *domain.Settings) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": settingsDocumentID},
		bson.M{"$set": settings},
		options.Update().SetUpsert(true),
	)
	return err
}
