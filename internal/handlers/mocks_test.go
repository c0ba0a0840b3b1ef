package handlers

import (
	"context"

	"github.com/ArowuTest/hostboard-backend/internal/models"
	"github.com/ArowuTest/hostboard-backend/internal/services"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mockBroadcastService struct{ mock.Mock }

func (m *mockBroadcastService) Create(ctx context.Context, caller models.CallerContext, input models.BroadcastInput) (*models.Broadcast, error) {
	args := m.Called(ctx, caller, input)
	b, _ := args.Get(0).(*models.Broadcast)
	return b, args.Error(1)
}

func (m *mockBroadcastService) Get(ctx context.Context, id primitive.ObjectID) (*models.Broadcast, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*models.Broadcast)
	return b, args.Error(1)
}

func (m *mockBroadcastService) List(ctx context.Context, filter models.BroadcastFilter, page, limit int) ([]*models.Broadcast, int64, error) {
	args := m.Called(ctx, filter, page, limit)
	items, _ := args.Get(0).([]*models.Broadcast)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *mockBroadcastService) Update(ctx context.Context, caller models.CallerContext, id primitive.ObjectID, input models.BroadcastInput) (*models.Broadcast, error) {
	args := m.Called(ctx, caller, id, input)
	b, _ := args.Get(0).(*models.Broadcast)
	return b, args.Error(1)
}

func (m *mockBroadcastService) Delete(ctx context.Context, caller models.CallerContext, id primitive.ObjectID) error {
	return m.Called(ctx, caller, id).Error(0)
}

func (m *mockBroadcastService) PreviewRecipients(ctx context.Context, id primitive.ObjectID) ([]models.Recipient, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).([]models.Recipient)
	return r, args.Error(1)
}

type mockDispatcher struct{ mock.Mock }

func (m *mockDispatcher) Dispatch(ctx context.Context, id primitive.ObjectID) (*services.DispatchResult, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*services.DispatchResult)
	return r, args.Error(1)
}

func (m *mockDispatcher) Resume(ctx context.Context, id primitive.ObjectID) (*services.DispatchResult, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*services.DispatchResult)
	return r, args.Error(1)
}

type mockInboxService struct{ mock.Mock }

func (m *mockInboxService) ListInbox(ctx context.Context, hostID primitive.ObjectID) ([]models.DeliveryView, error) {
	args := m.Called(ctx, hostID)
	v, _ := args.Get(0).([]models.DeliveryView)
	return v, args.Error(1)
}

func (m *mockInboxService) MarkRead(ctx context.Context, broadcastID, hostID primitive.ObjectID) error {
	return m.Called(ctx, broadcastID, hostID).Error(0)
}

func (m *mockInboxService) UnreadCount(ctx context.Context, hostID primitive.ObjectID) (int, error) {
	args := m.Called(ctx, hostID)
	return args.Int(0), args.Error(1)
}

func (m *mockInboxService) DeliveriesForBroadcast(ctx context.Context, broadcastID primitive.ObjectID, page, limit int) ([]*models.Delivery, int64, error) {
	args := m.Called(ctx, broadcastID, page, limit)
	d, _ := args.Get(0).([]*models.Delivery)
	return d, args.Get(1).(int64), args.Error(2)
}

type mockTemplateService struct{ mock.Mock }

func (m *mockTemplateService) Create(ctx context.Context, caller models.CallerContext, input models.TemplateInput) (*models.Template, error) {
	args := m.Called(ctx, caller, input)
	t, _ := args.Get(0).(*models.Template)
	return t, args.Error(1)
}

func (m *mockTemplateService) Get(ctx context.Context, id primitive.ObjectID) (*models.Template, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*models.Template)
	return t, args.Error(1)
}

func (m *mockTemplateService) List(ctx context.Context, page, limit int) ([]*models.Template, int64, error) {
	args := m.Called(ctx, page, limit)
	t, _ := args.Get(0).([]*models.Template)
	return t, args.Get(1).(int64), args.Error(2)
}

func (m *mockTemplateService) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTemplateService) Update(ctx context.Context, id primitive.ObjectID, input models.TemplateInput) (*models.Template, error) {
	args := m.Called(ctx, id, input)
	t, _ := args.Get(0).(*models.Template)
	return t, args.Error(1)
}

func (m *mockTemplateService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

var (
	_ services.BroadcastService    = (*mockBroadcastService)(nil)
	_ services.BroadcastDispatcher = (*mockDispatcher)(nil)
	_ services.InboxService        = (*mockInboxService)(nil)
	_ services.TemplateService     = (*mockTemplateService)(nil)
)
