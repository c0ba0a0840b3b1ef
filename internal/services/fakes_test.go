package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ArowuTest/hostboard-backend/internal/apperrors"
	"github.com/ArowuTest/hostboard-backend/internal/models"
	"github.com/ArowuTest/hostboard-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memHosts struct {
	mu    sync.Mutex
	hosts map[primitive.ObjectID]*models.Host
}

func newMemHosts(hosts ...*models.Host) *memHosts {
	m := &memHosts{hosts: map[primitive.ObjectID]*models.Host{}}
	for _, h := range hosts {
		if h.ID.IsZero() {
			h.ID = primitive.NewObjectID()
		}
		m.hosts[h.ID] = h
	}
	return m
}

func (m *memHosts) Create(_ context.Context, h *models.Host) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h.ID = primitive.NewObjectID()
	cp := *h
	m.hosts[h.ID] = &cp
	return nil
}

func (m *memHosts) FindByID(_ context.Context, id primitive.ObjectID) (*models.Host, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.hosts[id]
	if !ok {
		return nil, apperrors.NewNotFound("host", id.Hex())
	}
	cp := *h
	return &cp, nil
}

func (m *memHosts) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]*models.Host, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Host{}
	for _, id := range ids {
		if h, ok := m.hosts[id]; ok {
			cp := *h
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memHosts) FindByAuthID(_ context.Context, authID string) (*models.Host, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range m.hosts {
		if h.AuthID == authID {
			cp := *h
			return &cp, nil
		}
	}
	return nil, apperrors.NewNotFound("host", authID)
}

func (m *memHosts) Find(_ context.Context, f models.HostFilter, page, limit int) ([]*models.Host, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Host{}
	for _, h := range m.hosts {
		if matchesHost(h, f) {
			cp := *h
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	if limit > 0 {
		if page < 1 {
			page = 1
		}
		start := (page - 1) * limit
		if start >= len(out) {
			return []*models.Host{}, nil
		}
		end := start + limit
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, nil
}

func (m *memHosts) UpsertByEmail(_ context.Context, h *models.Host) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, existing := range m.hosts {
		if strings.EqualFold(existing.Email, h.Email) {
			h.ID = id
			cp := *h
			m.hosts[id] = &cp
			return false, nil
		}
	}
	h.ID = primitive.NewObjectID()
	cp := *h
	m.hosts[h.ID] = &cp
	return true, nil
}

func (m *memHosts) Count(ctx context.Context, f models.HostFilter) (int64, error) {
	all, _ := m.Find(ctx, f, 0, 0)
	return int64(len(all)), nil
}

func matchesHost(h *models.Host, f models.HostFilter) bool {
	if len(f.IDs) > 0 && !containsID(f.IDs, h.ID) {
		return false
	}
	if len(f.Roles) > 0 && !containsString(f.Roles, h.Role) {
		return false
	}
	if len(f.Locations) > 0 && !containsString(f.Locations, h.Location) {
		return false
	}
	if f.ActiveOnly && !h.Active {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(h.FullName()+" "+h.Email), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

type memBroadcasts struct {
	mu         sync.Mutex
	items      map[primitive.ObjectID]*models.Broadcast
	transition func(to models.BroadcastStatus) error
}

func newMemBroadcasts() *memBroadcasts {
	return &memBroadcasts{items: map[primitive.ObjectID]*models.Broadcast{}}
}

func (m *memBroadcasts) put(b *models.Broadcast) *models.Broadcast {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	if b.Version == 0 {
		b.Version = 1
	}
	cp := *b
	m.items[b.ID] = &cp
	return b
}

func (m *memBroadcasts) get(id primitive.ObjectID) *models.Broadcast {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *m.items[id]
	return &cp
}

func (m *memBroadcasts) Create(_ context.Context, b *models.Broadcast) error {
	b.ID = primitive.NewObjectID()
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	b.Version = 1
	m.put(b)
	return nil
}

func (m *memBroadcasts) FindByID(_ context.Context, id primitive.ObjectID) (*models.Broadcast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.items[id]
	if !ok {
		return nil, apperrors.NewNotFound("broadcast", id.Hex())
	}
	cp := *b
	return &cp, nil
}

func (m *memBroadcasts) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]*models.Broadcast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Broadcast{}
	for _, id := range ids {
		if b, ok := m.items[id]; ok {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memBroadcasts) Find(_ context.Context, f models.BroadcastFilter, _, _ int) ([]*models.Broadcast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Broadcast{}
	for _, b := range m.items {
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if f.CreatedBy != "" && b.CreatedBy != f.CreatedBy {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memBroadcasts) Update(_ context.Context, b *models.Broadcast, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.items[b.ID]
	if !ok {
		return apperrors.NewNotFound("broadcast", b.ID.Hex())
	}
	if !cur.IsEditable() {
		return apperrors.NewInvalidState(b.ID.Hex(), string(cur.Status), "edit", nil)
	}
	if cur.Version != expectedVersion {
		return apperrors.ErrConflict
	}
	b.Version = expectedVersion + 1
	b.UpdatedAt = time.Now()
	cp := *b
	m.items[b.ID] = &cp
	return nil
}

func (m *memBroadcasts) DeleteDraft(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.items[id]
	if !ok {
		return apperrors.NewNotFound("broadcast", id.Hex())
	}
	if cur.Status != models.BroadcastStatusDraft {
		return apperrors.NewInvalidState(id.Hex(), string(cur.Status), "delete", nil)
	}
	delete(m.items, id)
	return nil
}

func (m *memBroadcasts) TransitionStatus(_ context.Context, id primitive.ObjectID, from []models.BroadcastStatus, to models.BroadcastStatus, patch repositories.StatusPatch) (*models.Broadcast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.transition != nil {
		if err := m.transition(to); err != nil {
			return nil, err
		}
	}
	cur, ok := m.items[id]
	if !ok {
		return nil, apperrors.NewNotFound("broadcast", id.Hex())
	}
	allowed := false
	for _, s := range from {
		if cur.Status == s {
			allowed = true
		}
	}
	if patch.IfSendingStartedAt != nil && (cur.SendingStartedAt == nil || !cur.SendingStartedAt.Equal(*patch.IfSendingStartedAt)) {
		allowed = false
	}
	if patch.IfNoSendingStartedAt && cur.SendingStartedAt != nil {
		allowed = false
	}
	if !allowed {
		return nil, apperrors.ErrConflict
	}
	cur.Status = to
	cur.Version++
	if patch.SendingStartedAt != nil {
		cur.SendingStartedAt = patch.SendingStartedAt
	}
	if patch.ClearSendingStartedAt {
		cur.SendingStartedAt = nil
	}
	if patch.SentAt != nil {
		cur.SentAt = patch.SentAt
	}
	if patch.Stats != nil {
		cur.Stats = *patch.Stats
	}
	cp := *cur
	return &cp, nil
}

func (m *memBroadcasts) FindDue(_ context.Context, now time.Time) ([]*models.Broadcast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Broadcast{}
	for _, b := range m.items {
		if b.Status == models.BroadcastStatusScheduled && b.ScheduledAt != nil && !b.ScheduledAt.After(now) {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memBroadcasts) FindStaleSending(_ context.Context, before time.Time) ([]*models.Broadcast, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Broadcast{}
	for _, b := range m.items {
		if b.Status == models.BroadcastStatusSending && (b.SendingStartedAt == nil || b.SendingStartedAt.Before(before)) {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memBroadcasts) Count(ctx context.Context, f models.BroadcastFilter) (int64, error) {
	all, _ := m.Find(ctx, f, 0, 0)
	return int64(len(all)), nil
}

type deliveryKey struct {
	broadcast primitive.ObjectID
	user      primitive.ObjectID
}

type memDeliveries struct {
	mu        sync.Mutex
	items     map[deliveryKey]*models.Delivery
	upsertErr func(d *models.Delivery) error
}

func newMemDeliveries() *memDeliveries {
	return &memDeliveries{items: map[deliveryKey]*models.Delivery{}}
}

func (m *memDeliveries) Upsert(_ context.Context, d *models.Delivery) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		if err := m.upsertErr(d); err != nil {
			return apperrors.NewStore("deliveries.upsert", err)
		}
	}
	key := deliveryKey{d.BroadcastID, d.UserID}
	now := time.Now()
	if cur, ok := m.items[key]; ok {
		if d.Slack != nil {
			cur.Slack = d.Slack
		}
		if d.Email != nil {
			cur.Email = d.Email
		}
		if d.SMS != nil {
			cur.SMS = d.SMS
		}
		cur.UpdatedAt = now
		d.ID = cur.ID
		return nil
	}
	cp := *d
	cp.ID = primitive.NewObjectID()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	cp.ReadAt = nil
	m.items[key] = &cp
	d.ID = cp.ID
	return nil
}

func (m *memDeliveries) FindByBroadcastAndUser(_ context.Context, b, u primitive.ObjectID) (*models.Delivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.items[deliveryKey{b, u}]
	if !ok {
		return nil, apperrors.NewNotFound("delivery", b.Hex()+"/"+u.Hex())
	}
	cp := *d
	return &cp, nil
}

func (m *memDeliveries) FindByUser(_ context.Context, u primitive.ObjectID) ([]*models.Delivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Delivery{}
	for k, d := range m.items {
		if k.user == u {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memDeliveries) FindByBroadcast(_ context.Context, b primitive.ObjectID, _, _ int) ([]*models.Delivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Delivery{}
	for k, d := range m.items {
		if k.broadcast == b {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memDeliveries) MarkRead(_ context.Context, b, u primitive.ObjectID, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.items[deliveryKey{b, u}]
	if !ok {
		return false, apperrors.NewNotFound("delivery", b.Hex()+"/"+u.Hex())
	}
	if d.ReadAt != nil {
		return false, nil
	}
	t := at
	d.ReadAt = &t
	return true, nil
}

func (m *memDeliveries) CountByBroadcast(ctx context.Context, b primitive.ObjectID) (int64, error) {
	all, _ := m.FindByBroadcast(ctx, b, 0, 0)
	return int64(len(all)), nil
}

func (m *memDeliveries) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

type memTemplates struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*models.Template
}

func newMemTemplates() *memTemplates {
	return &memTemplates{items: map[primitive.ObjectID]*models.Template{}}
}

func (m *memTemplates) Create(_ context.Context, t *models.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.items {
		if existing.Name == t.Name {
			return apperrors.NewValidation("name", "a template with this name already exists")
		}
	}
	t.ID = primitive.NewObjectID()
	cp := *t
	m.items[t.ID] = &cp
	return nil
}

func (m *memTemplates) FindByID(_ context.Context, id primitive.ObjectID) (*models.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.items[id]
	if !ok {
		return nil, apperrors.NewNotFound("template", id.Hex())
	}
	cp := *t
	return &cp, nil
}

func (m *memTemplates) FindByName(_ context.Context, name string) (*models.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.items {
		if t.Name == name {
			cp := *t
			return &cp, nil
		}
	}
	return nil, apperrors.NewNotFound("template", name)
}

func (m *memTemplates) FindAll(_ context.Context, _, _ int) ([]*models.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Template{}
	for _, t := range m.items {
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memTemplates) Update(_ context.Context, t *models.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[t.ID]; !ok {
		return apperrors.NewNotFound("template", t.ID.Hex())
	}
	cp := *t
	m.items[t.ID] = &cp
	return nil
}

func (m *memTemplates) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return apperrors.NewNotFound("template", id.Hex())
	}
	delete(m.items, id)
	return nil
}

func (m *memTemplates) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.items)), nil
}

type memSettings struct {
	mu sync.Mutex
	s  models.ChannelSettings
}

func newMemSettings() *memSettings {
	return &memSettings{s: models.DefaultChannelSettings()}
}

func (m *memSettings) Get(_ context.Context) (*models.ChannelSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := m.s
	return &cp, nil
}

func (m *memSettings) Update(_ context.Context, s *models.ChannelSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = *s
	return nil
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func containsString(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}

var (
	_ repositories.HostRepository            = (*memHosts)(nil)
	_ repositories.BroadcastRepository       = (*memBroadcasts)(nil)
	_ repositories.DeliveryRepository        = (*memDeliveries)(nil)
	_ repositories.TemplateRepository        = (*memTemplates)(nil)
	_ repositories.ChannelSettingsRepository = (*memSettings)(nil)
)
