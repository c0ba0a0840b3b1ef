package services

import (
	"context"
	"errors"
	"testing"

	"github.com/ArowuTest/hostboard-backend/internal/apperrors"
	"github.com/ArowuTest/hostboard-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func recipientIDs(rs []models.Recipient) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}

func TestResolveExplicitIDsDropsMissingAndDuplicates(t *testing.T) {
	u2 := &models.Host{FirstName: "Grace", Role: models.RoleHost, Active: true}
	hosts := newMemHosts(u2)
	missing := primitive.NewObjectID()

	b := &models.Broadcast{ID: primitive.NewObjectID(), TargetUserIDs: []primitive.ObjectID{missing, missing, u2.ID}}
	got, err := NewRecipientResolver(hosts).Resolve(context.Background(), b)

	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{u2.ID}, recipientIDs(got))
}

func TestResolveExplicitIDsIncludeInactiveHosts(t *testing.T) {
	h := &models.Host{FirstName: "Off", Role: models.RoleHost, Active: false}
	hosts := newMemHosts(h)

	b := &models.Broadcast{TargetUserIDs: []primitive.ObjectID{h.ID}}
	got, err := NewRecipientResolver(hosts).Resolve(context.Background(), b)

	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestResolveSavedSelection(t *testing.T) {
	h := &models.Host{FirstName: "Sel", Role: models.RoleLead, Active: true}
	hosts := newMemHosts(h)

	b := &models.Broadcast{UserSelection: &models.UserSelection{Label: "leads", SelectedUserIDs: []primitive.ObjectID{h.ID, h.ID}}}
	got, err := NewRecipientResolver(hosts).Resolve(context.Background(), b)

	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{h.ID}, recipientIDs(got))
}

func TestResolveRolesNarrowedByLocation(t *testing.T) {
	nyc := &models.Host{FirstName: "A", Role: models.RoleHost, Location: "nyc", Active: true}
	la := &models.Host{FirstName: "B", Role: models.RoleHost, Location: "la", Active: true}
	lead := &models.Host{FirstName: "C", Role: models.RoleLead, Location: "nyc", Active: true}
	inactive := &models.Host{FirstName: "D", Role: models.RoleHost, Location: "nyc", Active: false}
	hosts := newMemHosts(nyc, la, lead, inactive)
	resolver := NewRecipientResolver(hosts)

	got, err := resolver.Resolve(context.Background(), &models.Broadcast{
		TargetRoles:     []string{models.RoleHost, models.RoleHost},
		TargetLocations: []string{"nyc"},
	})
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{nyc.ID}, recipientIDs(got))

	got, err = resolver.Resolve(context.Background(), &models.Broadcast{
		TargetRoles: []string{models.RoleHost, models.RoleLead},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []primitive.ObjectID{nyc.ID, la.ID, lead.ID}, recipientIDs(got))
}

func TestResolveWithoutTargeting(t *testing.T) {
	_, err := NewRecipientResolver(newMemHosts()).Resolve(context.Background(), &models.Broadcast{})

	var nr *apperrors.NoRecipientsError
	require.True(t, errors.As(err, &nr))
	assert.ErrorIs(t, err, apperrors.ErrNoRecipientsConfigured)
}

func TestResolveEmptyResult(t *testing.T) {
	b := &models.Broadcast{TargetRoles: []string{"nobody"}}
	_, err := NewRecipientResolver(newMemHosts()).Resolve(context.Background(), b)

	assert.ErrorIs(t, err, apperrors.ErrNoRecipientsFound)
}
