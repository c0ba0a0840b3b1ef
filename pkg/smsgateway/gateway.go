package smsgateway

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nyaruka/phonenumbers"
	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

// MaxLength is the longest body a single SMS may carry
const MaxLength = 160

// ErrInvalidPhone is returned when a number cannot be normalized to E.164
var ErrInvalidPhone = errors.New("invalid phone number")

// Gateway represents an SMS gateway interface
type Gateway interface {
	SendSMS(ctx context.Context, phone, message string) (string, error)
}

// Normalize parses phone, falling back to region for numbers without a country
// code, and formats it as E.164.
func Normalize(phone, region string) (string, error) {
	if phone == "" {
		return "", ErrInvalidPhone
	}
	parsed, err := phonenumbers.Parse(phone, region)
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return "", ErrInvalidPhone
	}
	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}

// TwilioGateway sends SMS through the Twilio Messages API
type TwilioGateway struct {
	FromNumber string
	client     *twilio.RestClient
	logger     *zap.Logger
}

// NewTwilioGateway creates a new TwilioGateway
func NewTwilioGateway(accountSID, authToken, fromNumber string, logger *zap.Logger) *TwilioGateway {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioGateway{
		FromNumber: fromNumber,
		client:     client,
		logger:     logger,
	}
}

// SendSMS sends an SMS and returns the provider message id. The Twilio client
// has no context support, so cancellation abandons the call rather than aborting it.
func (g *TwilioGateway) SendSMS(ctx context.Context, phone, message string) (string, error) {
	if len(message) > MaxLength {
		return "", fmt.Errorf("sms body is %d characters, limit is %d", len(message), MaxLength)
	}

	params := &api.CreateMessageParams{}
	params.SetBody(message)
	params.SetFrom(g.FromNumber)
	params.SetTo(phone)

	type result struct {
		sid string
		err error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := g.client.Api.CreateMessage(params)
		if err != nil {
			done <- result{err: err}
			return
		}
		sid := ""
		if resp.Sid != nil {
			sid = *resp.Sid
		}
		done <- result{sid: sid}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		if r.err != nil {
			g.logger.Warn("Twilio send failed", zap.String("to", phone), zap.Error(r.err))
			return "", r.err
		}
		g.logger.Debug("Twilio message created", zap.String("sid", r.sid))
		return r.sid, nil
	}
}

// SentSMS is one message captured by MockGateway
type SentSMS struct {
	Phone   string
	Message string
}

// MockGateway represents a mock SMS gateway for testing and local runs
type MockGateway struct {
	mu   sync.Mutex
	Sent []SentSMS
	// Fail, when set, decides per phone number whether the send errors
	Fail func(phone string) error
}

// NewMockGateway creates a new MockGateway
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

// SendSMS records the message
func (g *MockGateway) SendSMS(ctx context.Context, phone, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if g.Fail != nil {
		if err := g.Fail(phone); err != nil {
			return "", err
		}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Sent = append(g.Sent, SentSMS{Phone: phone, Message: message})
	return fmt.Sprintf("MOCK-SMS-%d", time.Now().UnixNano()), nil
}

// Messages returns a copy of everything sent so far
func (g *MockGateway) Messages() []SentSMS {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]SentSMS(nil), g.Sent...)
}
