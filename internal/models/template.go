package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Template represents a reusable broadcast skeleton
type Template struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name             string             `bson:"name" json:"name"`
	Subject          string             `bson:"subject" json:"subject"`
	BodyHTML         string             `bson:"bodyHtml" json:"bodyHtml"`
	BodySMS          string             `bson:"bodySms,omitempty" json:"bodySms,omitempty"`
	DefaultChannels  Channels           `bson:"defaultChannels" json:"defaultChannels"`
	DefaultSelection *UserSelection     `bson:"defaultSelection,omitempty" json:"defaultSelection,omitempty"`
	Variables        []string           `bson:"variables" json:"variables"`
	CreatedBy        string             `bson:"createdBy" json:"createdBy"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// TemplateInput carries operator-supplied template fields
type TemplateInput struct {
	Name             string         `json:"name" validate:"required,max=120"`
	Subject          string         `json:"subject" validate:"max=300"`
	BodyHTML         string         `json:"bodyHtml"`
	BodySMS          string         `json:"bodySms" validate:"max=160"`
	DefaultChannels  Channels       `json:"defaultChannels"`
	DefaultSelection *UserSelection `json:"defaultSelection"`
	Variables        []string       `json:"variables" validate:"dive,required"`
}
