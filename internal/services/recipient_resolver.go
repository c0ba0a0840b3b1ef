package services

import (
	"context"

	"github.com/ArowuTest/hostboard-backend/internal/apperrors"
	"github.com/ArowuTest/hostboard-backend/internal/models"
	"github.com/ArowuTest/hostboard-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecipientResolver expands a broadcast's targeting into concrete recipients
type RecipientResolver struct {
	hosts repositories.HostRepository
}

// NewRecipientResolver creates a new RecipientResolver
func NewRecipientResolver(hosts repositories.HostRepository) *RecipientResolver {
	return &RecipientResolver{hosts: hosts}
}

// Resolve returns one recipient per unique host. Explicit ids win over role
// targeting; ids that no longer exist are dropped. An empty result is
// reported as NoRecipientsError wrapping ErrNoRecipientsFound.
func (r *RecipientResolver) Resolve(ctx context.Context, b *models.Broadcast) ([]models.Recipient, error) {
	var hosts []*models.Host
	var err error

	if ids := b.ExplicitUserIDs(); len(ids) > 0 {
		hosts, err = r.hosts.FindByIDs(ctx, uniqueIDs(ids))
	} else if roles, locations := b.RoleTargeting(); len(roles) > 0 {
		hosts, err = r.hosts.Find(ctx, models.HostFilter{
			Roles:      roles,
			Locations:  locations,
			ActiveOnly: true,
		}, 0, 0)
	} else {
		return nil, apperrors.NewNoRecipients(b.ID.Hex(), apperrors.ErrNoRecipientsConfigured)
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[primitive.ObjectID]struct{}, len(hosts))
	recipients := make([]models.Recipient, 0, len(hosts))
	for _, h := range hosts {
		if _, dup := seen[h.ID]; dup {
			continue
		}
		seen[h.ID] = struct{}{}
		recipients = append(recipients, h.Recipient())
	}
	if len(recipients) == 0 {
		return nil, apperrors.NewNoRecipients(b.ID.Hex(), apperrors.ErrNoRecipientsFound)
	}
	return recipients, nil
}

func uniqueIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
