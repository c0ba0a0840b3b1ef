package repositories

import (
	"context"
	"time"

	"github.com/ArowuTest/hostboard-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HostRepository defines the interface for host directory operations
type HostRepository interface {
	Create(ctx context.Context, host *models.Host) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Host, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Host, error)
	FindByAuthID(ctx context.Context, authID string) (*models.Host, error)
	Find(ctx context.Context, filter models.HostFilter, page, limit int) ([]*models.Host, error)
	UpsertByEmail(ctx context.Context, host *models.Host) (created bool, err error)
	Count(ctx context.Context, filter models.HostFilter) (int64, error)
}

// StatusPatch carries the fields written together with a status transition
type StatusPatch struct {
	SendingStartedAt      *time.Time
	ClearSendingStartedAt bool
	// IfSendingStartedAt additionally guards the transition on the stored sendingStartedAt
	IfSendingStartedAt *time.Time
	// IfNoSendingStartedAt guards on sendingStartedAt being unset
	IfNoSendingStartedAt bool
	SentAt               *time.Time
	Stats                *models.BroadcastStats
}

// BroadcastRepository defines the interface for broadcast data operations
type BroadcastRepository interface {
	Create(ctx context.Context, broadcast *models.Broadcast) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Broadcast, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Broadcast, error)
	Find(ctx context.Context, filter models.BroadcastFilter, page, limit int) ([]*models.Broadcast, error)
	// Update replaces content and targeting only while the stored version equals
	// expectedVersion and the stored status is editable.
	Update(ctx context.Context, broadcast *models.Broadcast, expectedVersion int64) error
	// DeleteDraft removes the broadcast only while it is a draft.
	DeleteDraft(ctx context.Context, id primitive.ObjectID) error
	// TransitionStatus moves the broadcast to `to` only if its stored status is one of `from`.
	// It returns the updated document, or apperrors.ErrConflict when the guard fails.
	TransitionStatus(ctx context.Context, id primitive.ObjectID, from []models.BroadcastStatus, to models.BroadcastStatus, patch StatusPatch) (*models.Broadcast, error)
	FindDue(ctx context.Context, now time.Time) ([]*models.Broadcast, error)
	FindStaleSending(ctx context.Context, startedBefore time.Time) ([]*models.Broadcast, error)
	Count(ctx context.Context, filter models.BroadcastFilter) (int64, error)
}

// TemplateRepository defines the interface for template data operations
type TemplateRepository interface {
	Create(ctx context.Context, template *models.Template) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Template, error)
	FindByName(ctx context.Context, name string) (*models.Template, error)
	FindAll(ctx context.Context, page, limit int) ([]*models.Template, error)
	Update(ctx context.Context, template *models.Template) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

// DeliveryRepository defines the interface for delivery data operations
type DeliveryRepository interface {
	// Upsert writes the channel outcomes keyed by (broadcastId, userId); read state is preserved.
	Upsert(ctx context.Context, delivery *models.Delivery) error
	FindByBroadcastAndUser(ctx context.Context, broadcastID, userID primitive.ObjectID) (*models.Delivery, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Delivery, error)
	FindByBroadcast(ctx context.Context, broadcastID primitive.ObjectID, page, limit int) ([]*models.Delivery, error)
	// MarkRead sets readAt only when it is still null; changed is false when it was already set.
	MarkRead(ctx context.Context, broadcastID, userID primitive.ObjectID, at time.Time) (changed bool, err error)
	CountByBroadcast(ctx context.Context, broadcastID primitive.ObjectID) (int64, error)
}

// ChannelSettingsRepository defines the interface for channel switch operations
type ChannelSettingsRepository interface {
	Get(ctx context.Context) (*models.ChannelSettings, error)
	Update(ctx context.Context, settings *models.ChannelSettings) error
}
