package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Channel is one of the notification transports
type Channel string

const (
	ChannelSlack Channel = "slack"
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// OutcomeStatus is the result of one channel attempt
type OutcomeStatus string

const (
	OutcomeSent    OutcomeStatus = "sent"
	OutcomeFailed  OutcomeStatus = "failed"
	OutcomeSkipped OutcomeStatus = "skipped"
)

// ChannelOutcome records what happened on one channel for one recipient
type ChannelOutcome struct {
	Status OutcomeStatus `bson:"status" json:"status"`
	Error  string        `bson:"error,omitempty" json:"error,omitempty"`
}

// Delivery is the per-recipient record of one broadcast
type Delivery struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	BroadcastID primitive.ObjectID `bson:"broadcastId" json:"broadcastId"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	Slack       *ChannelOutcome    `bson:"slack,omitempty" json:"slack,omitempty"`
	Email       *ChannelOutcome    `bson:"email,omitempty" json:"email,omitempty"`
	SMS         *ChannelOutcome    `bson:"sms,omitempty" json:"sms,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
	ReadAt      *time.Time         `bson:"readAt" json:"readAt"`
}

// SetOutcome stores the outcome for a channel
func (d *Delivery) SetOutcome(ch Channel, o ChannelOutcome) {
	switch ch {
	case ChannelSlack:
		d.Slack = &o
	case ChannelEmail:
		d.Email = &o
	case ChannelSMS:
		d.SMS = &o
	}
}

// Outcome returns the recorded outcome for a channel, nil when there is none
func (d *Delivery) Outcome(ch Channel) *ChannelOutcome {
	if d == nil {
		return nil
	}
	switch ch {
	case ChannelSlack:
		return d.Slack
	case ChannelEmail:
		return d.Email
	case ChannelSMS:
		return d.SMS
	}
	return nil
}

// Outcomes returns the recorded channel outcomes
func (d *Delivery) Outcomes() []ChannelOutcome {
	var out []ChannelOutcome
	for _, o := range []*ChannelOutcome{d.Slack, d.Email, d.SMS} {
		if o != nil {
			out = append(out, *o)
		}
	}
	return out
}

// Summary classifies the delivery: sent when any channel succeeded, skipped when every
// channel was skipped, failed otherwise.
func (d *Delivery) Summary() OutcomeStatus {
	outcomes := d.Outcomes()
	skipped := 0
	for _, o := range outcomes {
		switch o.Status {
		case OutcomeSent:
			return OutcomeSent
		case OutcomeSkipped:
			skipped++
		}
	}
	if len(outcomes) > 0 && skipped == len(outcomes) {
		return OutcomeSkipped
	}
	return OutcomeFailed
}

// IsRead reports whether the recipient has opened the delivery
func (d *Delivery) IsRead() bool {
	return d.ReadAt != nil
}

// DeliveryView is the inbox projection of a delivery joined with its broadcast
type DeliveryView struct {
	BroadcastID primitive.ObjectID `json:"broadcastId"`
	Title       string             `json:"title"`
	Subject     string             `json:"subject"`
	BodyHTML    string             `json:"bodyHtml"`
	VideoURL    string             `json:"videoUrl,omitempty"`
	LinkURL     string             `json:"linkUrl,omitempty"`
	LinkText    string             `json:"linkText,omitempty"`
	SentAt      time.Time          `json:"sentAt"`
	ReadAt      *time.Time         `json:"readAt"`
	Read        bool               `json:"read"`
}
