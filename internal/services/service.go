package services

import (
	"context"

	"github.com/ArowuTest/hostboard-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BroadcastService defines the interface for composing and managing broadcasts
type BroadcastService interface {
	// Create stores a draft, or a scheduled broadcast when scheduledAt is set
	Create(ctx context.Context, caller models.CallerContext, input models.BroadcastInput) (*models.Broadcast, error)

	// Get retrieves a broadcast by its ID
	Get(ctx context.Context, id primitive.ObjectID) (*models.Broadcast, error)

	// List retrieves a page of broadcasts and the total count
	List(ctx context.Context, filter models.BroadcastFilter, page, limit int) ([]*models.Broadcast, int64, error)

	// Update edits a draft or scheduled broadcast
	Update(ctx context.Context, caller models.CallerContext, id primitive.ObjectID, input models.BroadcastInput) (*models.Broadcast, error)

	// Delete removes a draft broadcast
	Delete(ctx context.Context, caller models.CallerContext, id primitive.ObjectID) error

	// PreviewRecipients resolves targeting without sending
	PreviewRecipients(ctx context.Context, id primitive.ObjectID) ([]models.Recipient, error)
}

// BroadcastDispatcher defines the send operations
type BroadcastDispatcher interface {
	Dispatch(ctx context.Context, id primitive.ObjectID) (*DispatchResult, error)
	Resume(ctx context.Context, id primitive.ObjectID) (*DispatchResult, error)
}

// TemplateService defines the interface for template operations
type TemplateService interface {
	Create(ctx context.Context, caller models.CallerContext, input models.TemplateInput) (*models.Template, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Template, error)
	List(ctx context.Context, page, limit int) ([]*models.Template, int64, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id primitive.ObjectID, input models.TemplateInput) (*models.Template, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// InboxService defines the recipient read-state operations
type InboxService interface {
	// ListInbox returns sent broadcasts delivered to the host, newest first
	ListInbox(ctx context.Context, hostID primitive.ObjectID) ([]models.DeliveryView, error)

	// MarkRead is idempotent; the first read time is kept
	MarkRead(ctx context.Context, broadcastID, hostID primitive.ObjectID) error

	UnreadCount(ctx context.Context, hostID primitive.ObjectID) (int, error)

	// DeliveriesForBroadcast is the operator's per-recipient report
	DeliveriesForBroadcast(ctx context.Context, broadcastID primitive.ObjectID, page, limit int) ([]*models.Delivery, int64, error)
}

// HostService defines the host directory operations
type HostService interface {
	List(ctx context.Context, filter models.HostFilter, page, limit int) ([]*models.Host, int64, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Host, error)
	Import(ctx context.Context, rows []*models.Host) (*ImportResult, error)
}

// ChannelSettingsService defines the interface for the global channel switches
type ChannelSettingsService interface {
	Get(ctx context.Context) (*models.ChannelSettings, error)
	Update(ctx context.Context, caller models.CallerContext, input models.ChannelSettings) (*models.ChannelSettings, error)
}

// IdentityService turns an authenticated identity into the caller context of a request
type IdentityService interface {
	Resolve(ctx context.Context, identity models.Identity, actAs string) (models.CallerContext, error)
}

var (
	_ BroadcastService       = (*BroadcastServiceImpl)(nil)
	_ BroadcastDispatcher    = (*Dispatcher)(nil)
	_ TemplateService        = (*TemplateServiceImpl)(nil)
	_ InboxService           = (*InboxServiceImpl)(nil)
	_ HostService            = (*HostServiceImpl)(nil)
	_ ChannelSettingsService = (*ChannelSettingsServiceImpl)(nil)
	_ IdentityService        = (*IdentityServiceImpl)(nil)
)
