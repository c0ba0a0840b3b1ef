package services

import (
	"context"
	"sort"
	"time"

	"github.com/ArowuTest/hostboard-backend/internal/models"
	"github.com/ArowuTest/hostboard-backend/internal/repositories"
	"github.com/ArowuTest/hostboard-backend/pkg/blobstore"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// InboxServiceImpl implements InboxService
type InboxServiceImpl struct {
	deliveries repositories.DeliveryRepository
	broadcasts repositories.BroadcastRepository
	signer     blobstore.Signer
	logger     *zap.Logger
	now        func() time.Time
}

// NewInboxService creates a new InboxService
func NewInboxService(
	deliveries repositories.DeliveryRepository,
	broadcasts repositories.BroadcastRepository,
	signer blobstore.Signer,
	logger *zap.Logger,
) *InboxServiceImpl {
	return &InboxServiceImpl{
		deliveries: deliveries,
		broadcasts: broadcasts,
		signer:     signer,
		logger:     logger,
		now:        time.Now,
	}
}

// ListInbox returns the host's deliveries whose broadcast has been sent, newest first
func (s *InboxServiceImpl) ListInbox(ctx context.Context, hostID primitive.ObjectID) ([]models.DeliveryView, error) {
	deliveries, err := s.deliveries.FindByUser(ctx, hostID)
	if err != nil {
		return nil, err
	}
	if len(deliveries) == 0 {
		return []models.DeliveryView{}, nil
	}

	ids := make([]primitive.ObjectID, 0, len(deliveries))
	for _, d := range deliveries {
		ids = append(ids, d.BroadcastID)
	}
	broadcasts, err := s.broadcasts.FindByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*models.Broadcast, len(broadcasts))
	for _, b := range broadcasts {
		byID[b.ID] = b
	}

	views := make([]models.DeliveryView, 0, len(deliveries))
	for _, d := range deliveries {
		b, ok := byID[d.BroadcastID]
		if !ok || b.Status != models.BroadcastStatusSent || b.SentAt == nil {
			continue
		}
		views = append(views, models.DeliveryView{
			BroadcastID: b.ID,
			Title:       b.Title,
			Subject:     emailSubject(b),
			BodyHTML:    b.BodyHTML,
			VideoURL:    s.videoURL(ctx, b),
			LinkURL:     b.LinkURL,
			LinkText:    b.LinkText,
			SentAt:      *b.SentAt,
			ReadAt:      d.ReadAt,
			Read:        d.IsRead(),
		})
	}
	sort.SliceStable(views, func(i, j int) bool { return views[i].SentAt.After(views[j].SentAt) })
	return views, nil
}

// MarkRead records the first time the host opened the broadcast; later calls keep that time
func (s *InboxServiceImpl) MarkRead(ctx context.Context, broadcastID, hostID primitive.ObjectID) error {
	changed, err := s.deliveries.MarkRead(ctx, broadcastID, hostID, s.now().UTC())
	if err != nil {
		return err
	}
	if changed {
		s.logger.Debug("Delivery marked read",
			zap.String("broadcastId", broadcastID.Hex()),
			zap.String("hostId", hostID.Hex()),
		)
	}
	return nil
}

// UnreadCount counts inbox entries not yet read
func (s *InboxServiceImpl) UnreadCount(ctx context.Context, hostID primitive.ObjectID) (int, error) {
	views, err := s.ListInbox(ctx, hostID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, v := range views {
		if v.ReadAt == nil {
			n++
		}
	}
	return n, nil
}

// DeliveriesForBroadcast returns a page of per-recipient outcomes for the operator report
func (s *InboxServiceImpl) DeliveriesForBroadcast(ctx context.Context, broadcastID primitive.ObjectID, page, limit int) ([]*models.Delivery, int64, error) {
	if _, err := s.broadcasts.FindByID(ctx, broadcastID); err != nil {
		return nil, 0, err
	}
	items, err := s.deliveries.FindByBroadcast(ctx, broadcastID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.deliveries.CountByBroadcast(ctx, broadcastID)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *InboxServiceImpl) videoURL(ctx context.Context, b *models.Broadcast) string {
	if b.VideoURL == "" {
		return ""
	}
	url, err := s.signer.SignedURL(ctx, b.VideoURL)
	if err != nil {
		s.logger.Warn("Video URL signing failed", zap.String("broadcastId", b.ID.Hex()), zap.Error(err))
		return ""
	}
	return url
}
