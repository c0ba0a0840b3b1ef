package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChannelSettings holds the global per-channel switches consulted at dispatch time
type ChannelSettings struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	SlackEnabled bool               `bson:"slackEnabled" json:"slackEnabled"`
	EmailEnabled bool               `bson:"emailEnabled" json:"emailEnabled"`
	SMSEnabled   bool               `bson:"smsEnabled" json:"smsEnabled"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
	UpdatedBy    string             `bson:"updatedBy" json:"updatedBy"`
}

// DefaultChannelSettings enables every channel
func DefaultChannelSettings() ChannelSettings {
	return ChannelSettings{SlackEnabled: true, EmailEnabled: true, SMSEnabled: true}
}

// IsEnabled reports whether the channel may be used
func (s *ChannelSettings) IsEnabled(ch Channel) bool {
	switch ch {
	case ChannelSlack:
		return s.SlackEnabled
	case ChannelEmail:
		return s.EmailEnabled
	case ChannelSMS:
		return s.SMSEnabled
	}
	return false
}
