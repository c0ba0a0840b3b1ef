package services

import (
	"context"
	"time"

	"github.com/ArowuTest/hostboard-backend/internal/models"
	"github.com/ArowuTest/hostboard-backend/internal/repositories"
	"go.uber.org/zap"
)

// ChannelSettingsServiceImpl implements ChannelSettingsService
type ChannelSettingsServiceImpl struct {
	settings repositories.ChannelSettingsRepository
	logger   *zap.Logger
}

// NewChannelSettingsService creates a new ChannelSettingsService
func NewChannelSettingsService(settings repositories.ChannelSettingsRepository, logger *zap.Logger) *ChannelSettingsServiceImpl {
	return &ChannelSettingsServiceImpl{settings: settings, logger: logger}
}

// Get retrieves the current channel switches
func (s *ChannelSettingsServiceImpl) Get(ctx context.Context) (*models.ChannelSettings, error) {
	return s.settings.Get(ctx)
}

// Update replaces the channel switches. Dispatches already running keep the settings
// they loaded.
func (s *ChannelSettingsServiceImpl) Update(ctx context.Context, caller models.CallerContext, input models.ChannelSettings) (*models.ChannelSettings, error) {
	current, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	current.SlackEnabled = input.SlackEnabled
	current.EmailEnabled = input.EmailEnabled
	current.SMSEnabled = input.SMSEnabled
	current.UpdatedBy = caller.Actor()
	current.UpdatedAt = time.Now().UTC()

	if err := s.settings.Update(ctx, current); err != nil {
		return nil, err
	}
	s.logger.Info("Channel settings updated",
		zap.Bool("slack", current.SlackEnabled),
		zap.Bool("email", current.EmailEnabled),
		zap.Bool("sms", current.SMSEnabled),
		zap.String("by", current.UpdatedBy),
	)
	return current, nil
}
