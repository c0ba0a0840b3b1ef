package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Identity is the authenticated principal as reported by the identity provider
type Identity struct {
	AuthID string             `json:"authId"`
	Email  string             `json:"email"`
	Role   string             `json:"role"`
	HostID primitive.ObjectID `json:"hostId"`
}

// CallerContext carries the real caller and, for admins in ghost mode, the host being acted as
type CallerContext struct {
	Real       Identity            `json:"real"`
	ActingAsID *primitive.ObjectID `json:"actingAsId,omitempty"`
}

// EffectiveHostID is the host whose inbox and deliveries the caller operates on
func (c CallerContext) EffectiveHostID() primitive.ObjectID {
	if c.ActingAsID != nil {
		return *c.ActingAsID
	}
	return c.Real.HostID
}

// IsImpersonating reports whether the caller acts as another host
func (c CallerContext) IsImpersonating() bool {
	return c.ActingAsID != nil && *c.ActingAsID != c.Real.HostID
}

// IsOperator reports whether the real caller may manage broadcasts and templates
func (c CallerContext) IsOperator() bool {
	return c.Real.Role == RoleAdmin || c.Real.Role == RoleOperator
}

// Actor names the real caller for audit fields
func (c CallerContext) Actor() string {
	if c.Real.Email != "" {
		return c.Real.Email
	}
	return c.Real.AuthID
}
