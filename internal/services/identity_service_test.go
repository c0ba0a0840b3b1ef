package services

import (
	"context"
	"testing"

	"github.com/ArowuTest/hostboard-backend/internal/apperrors"
	"github.com/ArowuTest/hostboard-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestResolveLinksHost(t *testing.T) {
	h := &models.Host{AuthID: "auth|ada", FirstName: "Ada", Role: models.RoleHost, Active: true}
	svc := NewIdentityService(newMemHosts(h), zap.NewNop())

	caller, err := svc.Resolve(context.Background(), models.Identity{AuthID: "auth|ada", Role: models.RoleHost}, "")

	require.NoError(t, err)
	assert.Equal(t, h.ID, caller.Real.HostID)
	assert.Equal(t, h.ID, caller.EffectiveHostID())
	assert.False(t, caller.IsImpersonating())
}

func TestResolveWithoutHostRecord(t *testing.T) {
	svc := NewIdentityService(newMemHosts(), zap.NewNop())

	caller, err := svc.Resolve(context.Background(), models.Identity{AuthID: "auth|ops", Role: models.RoleOperator}, "")

	require.NoError(t, err)
	assert.True(t, caller.Real.HostID.IsZero())
	assert.True(t, caller.IsOperator())
}

func TestResolveActAs(t *testing.T) {
	target := &models.Host{FirstName: "Target", Role: models.RoleHost}
	hosts := newMemHosts(target)
	svc := NewIdentityService(hosts, zap.NewNop())
	ctx := context.Background()

	caller, err := svc.Resolve(ctx, models.Identity{AuthID: "auth|admin", Role: models.RoleAdmin}, target.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, target.ID, caller.EffectiveHostID())
	assert.True(t, caller.IsImpersonating())

	_, err = svc.Resolve(ctx, models.Identity{AuthID: "auth|ops", Role: models.RoleOperator}, target.ID.Hex())
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = svc.Resolve(ctx, models.Identity{AuthID: "auth|admin", Role: models.RoleAdmin}, "nope")
	assert.Equal(t, 400, apperrors.HTTPStatus(err))

	_, err = svc.Resolve(ctx, models.Identity{AuthID: "auth|admin", Role: models.RoleAdmin}, primitive.NewObjectID().Hex())
	assert.Equal(t, 404, apperrors.HTTPStatus(err))
}
