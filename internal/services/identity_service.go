package services

import (
	"context"
	"errors"

	"github.com/ArowuTest/hostboard-backend/internal/apperrors"
	"github.com/ArowuTest/hostboard-backend/internal/models"
	"github.com/ArowuTest/hostboard-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// IdentityServiceImpl implements IdentityService
type IdentityServiceImpl struct {
	hosts  repositories.HostRepository
	logger *zap.Logger
}

// NewIdentityService creates a new IdentityService
func NewIdentityService(hosts repositories.HostRepository, logger *zap.Logger) *IdentityServiceImpl {
	return &IdentityServiceImpl{hosts: hosts, logger: logger}
}

// Resolve links the authenticated identity to its directory host and applies ghost mode.
// Callers without a host record keep a zero HostID. Only admins may act as another host.
func (s *IdentityServiceImpl) Resolve(ctx context.Context, identity models.Identity, actAs string) (models.CallerContext, error) {
	h, err := s.hosts.FindByAuthID(ctx, identity.AuthID)
	var nf *apperrors.NotFoundError
	switch {
	case err == nil:
		identity.HostID = h.ID
	case errors.As(err, &nf):
	default:
		return models.CallerContext{}, err
	}

	caller := models.CallerContext{Real: identity}
	if actAs == "" {
		return caller, nil
	}
	if identity.Role != models.RoleAdmin {
		return models.CallerContext{}, apperrors.ErrForbidden
	}
	id, err := primitive.ObjectIDFromHex(actAs)
	if err != nil {
		return models.CallerContext{}, apperrors.NewValidation("actAs", "must be a host id")
	}
	target, err := s.hosts.FindByID(ctx, id)
	if err != nil {
		return models.CallerContext{}, err
	}

	caller.ActingAsID = &target.ID
	s.logger.Info("Admin acting as host",
		zap.String("admin", caller.Actor()),
		zap.String("hostId", target.ID.Hex()),
	)
	return caller, nil
}
