package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/ArowuTest/hostboard-backend/internal/apperrors"
	"github.com/ArowuTest/hostboard-backend/internal/models"
	"github.com/ArowuTest/hostboard-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ChannelSettingsRepository implements repositories.ChannelSettingsRepository
type ChannelSettingsRepository struct {
	collection *mongo.Collection
}

// NewChannelSettingsRepository creates a new ChannelSettingsRepository
func NewChannelSettingsRepository(db *mongo.Database) repositories.ChannelSettingsRepository {
	return &ChannelSettingsRepository{
		collection: db.Collection("system_settings"),
	}
}

// Get retrieves the channel switches, creating the all-enabled default on first use
func (r *ChannelSettingsRepository) Get(ctx context.Context) (*models.ChannelSettings, error) {
	var settings models.ChannelSettings
	err := r.collection.FindOne(ctx, bson.M{}).Decode(&settings)
	if errors.Is(err, mongo.ErrNoDocuments) {
		settings = models.DefaultChannelSettings()
		settings.CreatedAt = time.Now()
		settings.UpdatedAt = settings.CreatedAt
		if _, err := r.collection.InsertOne(ctx, settings); err != nil {
			return nil, apperrors.NewStore("settings.init", err)
		}
		return &settings, nil
	}
	if err != nil {
		return nil, apperrors.NewStore("settings.get", err)
	}
	return &settings, nil
}

// Update writes the channel switches
func (r *ChannelSettingsRepository) Update(ctx context.Context, settings *models.ChannelSettings) error {
	settings.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"slackEnabled": settings.SlackEnabled,
			"emailEnabled": settings.EmailEnabled,
			"smsEnabled":   settings.SMSEnabled,
			"updatedAt":    settings.UpdatedAt,
			"updatedBy":    settings.UpdatedBy,
		},
		"$setOnInsert": bson.M{"createdAt": settings.UpdatedAt},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{}, update, options.Update().SetUpsert(true))
	return apperrors.NewStore("settings.update", err)
}
