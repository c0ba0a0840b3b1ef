package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Host roles known to the directory
const (
	RoleHost      = "host"
	RoleLead      = "lead"
	RoleOperator  = "operator"
	RoleAdmin     = "admin"
	RoleApplicant = "applicant"
)

// Host represents a member of the host directory
type Host struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	AuthID    string             `bson:"authId,omitempty" json:"authId,omitempty"`
	FirstName string             `bson:"firstName" json:"firstName"`
	LastName  string             `bson:"lastName" json:"lastName"`
	Email     string             `bson:"email" json:"email"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	SlackID   string             `bson:"slackId,omitempty" json:"slackId,omitempty"`
	Role      string             `bson:"role" json:"role"`
	Location  string             `bson:"location,omitempty" json:"location,omitempty"`
	Active    bool               `bson:"active" json:"active"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// FullName joins first and last name
func (h *Host) FullName() string {
	return strings.TrimSpace(h.FirstName + " " + h.LastName)
}

// Recipient projects the host into its targeting view
func (h *Host) Recipient() Recipient {
	return Recipient{
		ID:        h.ID,
		FirstName: h.FirstName,
		LastName:  h.LastName,
		Name:      h.FullName(),
		Email:     strings.TrimSpace(h.Email),
		Phone:     strings.TrimSpace(h.Phone),
		SlackID:   strings.TrimSpace(h.SlackID),
		Role:      h.Role,
		Location:  h.Location,
	}
}

// Recipient is a resolved broadcast target with its channel addressing
type Recipient struct {
	ID        primitive.ObjectID `json:"id"`
	FirstName string             `json:"firstName"`
	LastName  string             `json:"lastName"`
	Name      string             `json:"name"`
	Email     string             `json:"email,omitempty"`
	Phone     string             `json:"phone,omitempty"`
	SlackID   string             `json:"slackId,omitempty"`
	Role      string             `json:"role"`
	Location  string             `json:"location,omitempty"`
}

// HostFilter enumerates the fields a host query may filter on
type HostFilter struct {
	IDs        []primitive.ObjectID
	Roles      []string
	Locations  []string
	ActiveOnly bool
	Search     string
}
