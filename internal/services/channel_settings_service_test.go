package services

import (
	"context"
	"testing"

	"github.com/ArowuTest/hostboard-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestChannelSettingsUpdate(t *testing.T) {
	repo := newMemSettings()
	svc := NewChannelSettingsService(repo, zap.NewNop())
	ctx := context.Background()

	got, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.True(t, got.IsEnabled(models.ChannelSMS))

	updated, err := svc.Update(ctx, operator, models.ChannelSettings{SlackEnabled: true, EmailEnabled: true, UpdatedBy: "spoofed"})
	require.NoError(t, err)
	assert.False(t, updated.SMSEnabled)
	assert.Equal(t, "ops@example.com", updated.UpdatedBy)

	stored, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.False(t, stored.IsEnabled(models.ChannelSMS))
	assert.True(t, stored.IsEnabled(models.ChannelSlack))
}
