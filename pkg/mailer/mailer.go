package mailer

import (
	"context"
	"fmt"
	"sync"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Email is one outbound transactional message
type Email struct {
	ToName    string
	ToEmail   string
	Subject   string
	PlainText string
	HTMLBody  string
}

// Mailer sends transactional email
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// SendGridMailer sends email through the SendGrid v3 API
type SendGridMailer struct {
	FromName string
	FromMail string
	Client   *sendgrid.Client
	Logger   *zap.Logger
}

// NewSendGridMailer creates a new SendGridMailer
func NewSendGridMailer(apiKey, fromName, fromMail string, logger *zap.Logger) *SendGridMailer {
	return &SendGridMailer{
		FromName: fromName,
		FromMail: fromMail,
		Client:   sendgrid.NewSendClient(apiKey),
		Logger:   logger,
	}
}

// Send sends one email
func (m *SendGridMailer) Send(ctx context.Context, email Email) error {
	from := mail.NewEmail(m.FromName, m.FromMail)
	to := mail.NewEmail(email.ToName, email.ToEmail)
	message := mail.NewSingleEmail(from, email.Subject, to, email.PlainText, email.HTMLBody)

	resp, err := m.Client.SendWithContext(ctx, message)
	if err != nil {
		m.Logger.Error("SendGrid email failed",
			zap.String("to", email.ToEmail),
			zap.Error(err),
		)
		return err
	}
	if resp.StatusCode >= 400 {
		m.Logger.Error("SendGrid rejected email",
			zap.String("to", email.ToEmail),
			zap.Int("status", resp.StatusCode),
		)
		return fmt.Errorf("sendgrid status %d", resp.StatusCode)
	}

	m.Logger.Debug("Email sent",
		zap.String("to", email.ToEmail),
		zap.String("subject", email.Subject),
	)
	return nil
}

// MockMailer captures emails instead of sending them
type MockMailer struct {
	mu   sync.Mutex
	Sent []Email
	// Fail, when set, decides per address whether the send errors
	Fail func(address string) error
}

// NewMockMailer creates a new MockMailer
func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

// Send records the email
func (m *MockMailer) Send(ctx context.Context, email Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.Fail != nil {
		if err := m.Fail(email.ToEmail); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, email)
	return nil
}

// Messages returns a copy of everything sent so far
func (m *MockMailer) Messages() []Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Email(nil), m.Sent...)
}
