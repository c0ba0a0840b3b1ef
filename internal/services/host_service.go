package services

import (
	"context"
	"strings"

	"github.com/ArowuTest/hostboard-backend/internal/apperrors"
	"github.com/ArowuTest/hostboard-backend/internal/models"
	"github.com/ArowuTest/hostboard-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ImportResult summarizes a directory import
type ImportResult struct {
	Created  int `json:"created"`
	Updated  int `json:"updated"`
	Rejected int `json:"rejected"`
}

// HostServiceImpl implements HostService
type HostServiceImpl struct {
	hosts  repositories.HostRepository
	logger *zap.Logger
}

// NewHostService creates a new HostService
func NewHostService(hosts repositories.HostRepository, logger *zap.Logger) *HostServiceImpl {
	return &HostServiceImpl{hosts: hosts, logger: logger}
}

// List returns a page of hosts and the total matching count
func (s *HostServiceImpl) List(ctx context.Context, filter models.HostFilter, page, limit int) ([]*models.Host, int64, error) {
	items, err := s.hosts.Find(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.hosts.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Get returns one host
func (s *HostServiceImpl) Get(ctx context.Context, id primitive.ObjectID) (*models.Host, error) {
	return s.hosts.FindByID(ctx, id)
}

// Import upserts directory rows keyed by email. Rows without an email are rejected and
// logged; a store failure stops the import.
func (s *HostServiceImpl) Import(ctx context.Context, rows []*models.Host) (*ImportResult, error) {
	res := &ImportResult{}
	for i, h := range rows {
		h.Email = strings.ToLower(strings.TrimSpace(h.Email))
		if h.Email == "" {
			res.Rejected++
			s.logger.Warn("Skipping host without email", zap.Int("row", i+1), zap.String("name", h.FullName()))
			continue
		}
		if h.Role == "" {
			h.Role = models.RoleHost
		}

		created, err := s.hosts.UpsertByEmail(ctx, h)
		if err != nil {
			return res, apperrors.NewStore("hosts.import", err)
		}
		if created {
			res.Created++
		} else {
			res.Updated++
		}
	}
	s.logger.Info("Host import finished",
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
		zap.Int("rejected", res.Rejected),
	)
	return res, nil
}
