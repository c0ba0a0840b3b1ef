package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BroadcastStatus is the lifecycle state of a broadcast
type BroadcastStatus string

const (
	BroadcastStatusDraft     BroadcastStatus = "draft"
	BroadcastStatusScheduled BroadcastStatus = "scheduled"
	BroadcastStatusSending   BroadcastStatus = "sending"
	BroadcastStatusSent      BroadcastStatus = "sent"
)

// MaxSMSLength is the longest SMS body a broadcast may carry
const MaxSMSLength = 160

// Channels holds the per-channel enable flags of a broadcast or template
type Channels struct {
	Slack bool `bson:"slack" json:"slack"`
	Email bool `bson:"email" json:"email"`
	SMS   bool `bson:"sms" json:"sms"`
}

// Any reports whether at least one channel is enabled
func (c Channels) Any() bool {
	return c.Slack || c.Email || c.SMS
}

// Enabled lists the enabled channels in a fixed order
func (c Channels) Enabled() []Channel {
	var out []Channel
	if c.Slack {
		out = append(out, ChannelSlack)
	}
	if c.Email {
		out = append(out, ChannelEmail)
	}
	if c.SMS {
		out = append(out, ChannelSMS)
	}
	return out
}

// UserSelection is a saved recipient selection snapshot taken when the broadcast was composed
type UserSelection struct {
	Label           string               `bson:"label,omitempty" json:"label,omitempty"`
	SelectedUserIDs []primitive.ObjectID `bson:"selectedUserIds,omitempty" json:"selectedUserIds,omitempty"`
	Roles           []string             `bson:"roles,omitempty" json:"roles,omitempty"`
	Locations       []string             `bson:"locations,omitempty" json:"locations,omitempty"`
}

// IsEmpty reports whether the selection carries no targeting at all
func (s *UserSelection) IsEmpty() bool {
	return s == nil || (len(s.SelectedUserIDs) == 0 && len(s.Roles) == 0)
}

// BroadcastStats is the aggregate outcome of the last dispatch
type BroadcastStats struct {
	Recipients int `bson:"recipients" json:"recipients"`
	Sent       int `bson:"sent" json:"sent"`
	Failed     int `bson:"failed" json:"failed"`
	Skipped    int `bson:"skipped" json:"skipped"`
}

// Broadcast represents one outbound message campaign
type Broadcast struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	Title            string               `bson:"title" json:"title"`
	Subject          string               `bson:"subject" json:"subject"`
	BodyHTML         string               `bson:"bodyHtml" json:"bodyHtml"`
	BodySMS          string               `bson:"bodySms,omitempty" json:"bodySms,omitempty"`
	VideoURL         string               `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`
	VideoPlaybackURL string               `bson:"-" json:"videoPlaybackUrl,omitempty"`
	LinkURL          string               `bson:"linkUrl,omitempty" json:"linkUrl,omitempty"`
	LinkText         string               `bson:"linkText,omitempty" json:"linkText,omitempty"`
	TargetRoles      []string             `bson:"targetRoles,omitempty" json:"targetRoles,omitempty"`
	TargetLocations  []string             `bson:"targetLocations,omitempty" json:"targetLocations,omitempty"`
	TargetUserIDs    []primitive.ObjectID `bson:"targetUserIds,omitempty" json:"targetUserIds,omitempty"`
	UserSelection    *UserSelection       `bson:"userSelection,omitempty" json:"userSelection,omitempty"`
	Channels         Channels             `bson:"channels" json:"channels"`
	Status           BroadcastStatus      `bson:"status" json:"status"`
	ScheduledAt      *time.Time           `bson:"scheduledAt,omitempty" json:"scheduledAt,omitempty"`
	TemplateID       *primitive.ObjectID  `bson:"templateId,omitempty" json:"templateId,omitempty"`
	Stats            BroadcastStats       `bson:"stats" json:"stats"`
	Version          int64                `bson:"version" json:"version"`
	CreatedBy        string               `bson:"createdBy" json:"createdBy"`
	CreatedAt        time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time            `bson:"updatedAt" json:"updatedAt"`
	SendingStartedAt *time.Time           `bson:"sendingStartedAt,omitempty" json:"sendingStartedAt,omitempty"`
	SentAt           *time.Time           `bson:"sentAt,omitempty" json:"sentAt,omitempty"`
}

// IsEditable reports whether content and targeting may still change
func (b *Broadcast) IsEditable() bool {
	return b.Status == BroadcastStatusDraft || b.Status == BroadcastStatusScheduled
}

// IsDeletable reports whether the broadcast may be removed
func (b *Broadcast) IsDeletable() bool {
	return b.Status == BroadcastStatusDraft
}

// IsDispatchable reports whether a send may start from the current status
func (b *Broadcast) IsDispatchable() bool {
	return b.Status == BroadcastStatusDraft || b.Status == BroadcastStatusScheduled
}

// ExplicitUserIDs returns the explicit id targeting, falling back to the saved selection
func (b *Broadcast) ExplicitUserIDs() []primitive.ObjectID {
	if len(b.TargetUserIDs) > 0 {
		return b.TargetUserIDs
	}
	if b.UserSelection != nil {
		return b.UserSelection.SelectedUserIDs
	}
	return nil
}

// RoleTargeting returns the role set and location narrowing, falling back to the saved selection
func (b *Broadcast) RoleTargeting() (roles, locations []string) {
	if len(b.TargetRoles) > 0 {
		return b.TargetRoles, b.TargetLocations
	}
	if b.UserSelection != nil {
		return b.UserSelection.Roles, b.UserSelection.Locations
	}
	return nil, nil
}

// BroadcastInput carries operator-supplied fields for create and edit
type BroadcastInput struct {
	Title           string               `json:"title" validate:"required,max=200"`
	Subject         string               `json:"subject" validate:"max=300"`
	BodyHTML        string               `json:"bodyHtml"`
	BodySMS         string               `json:"bodySms" validate:"max=160"`
	VideoURL        string               `json:"videoUrl"`
	LinkURL         string               `json:"linkUrl" validate:"omitempty,url"`
	LinkText        string               `json:"linkText"`
	TargetRoles     []string             `json:"targetRoles" validate:"dive,required"`
	TargetLocations []string             `json:"targetLocations" validate:"dive,required"`
	TargetUserIDs   []primitive.ObjectID `json:"targetUserIds"`
	UserSelection   *UserSelection       `json:"userSelection"`
	Channels        *Channels            `json:"channels"`
	ScheduledAt     *time.Time           `json:"scheduledAt"`
	TemplateID      *primitive.ObjectID  `json:"templateId"`
	Version         int64                `json:"version"`
}

// BroadcastFilter enumerates the fields a broadcast listing may filter on
type BroadcastFilter struct {
	Status    BroadcastStatus
	CreatedBy string
	Search    string
}
