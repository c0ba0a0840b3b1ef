package slackbot

import (
	"context"
	"sync"

	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

// Poster delivers a direct message to a workspace member
type Poster interface {
	PostText(ctx context.Context, memberID, text string) error
}

// Client posts direct messages with a bot token
type Client struct {
	api    *slack.Client
	logger *zap.Logger
}

// NewClient creates a new Client
func NewClient(botToken string, logger *zap.Logger) *Client {
	return &Client{
		api:    slack.New(botToken),
		logger: logger,
	}
}

// PostText opens (or reuses) the DM channel with memberID and posts text to it
func (c *Client) PostText(ctx context.Context, memberID, text string) error {
	ch, _, _, err := c.api.OpenConversationContext(ctx, &slack.OpenConversationParameters{
		Users: []string{memberID},
	})
	if err != nil {
		c.logger.Warn("Slack open conversation failed", zap.String("member", memberID), zap.Error(err))
		return err
	}

	_, ts, err := c.api.PostMessageContext(ctx, ch.ID,
		slack.MsgOptionText(text, false),
		slack.MsgOptionDisableLinkUnfurl(),
	)
	if err != nil {
		c.logger.Warn("Slack post failed", zap.String("member", memberID), zap.Error(err))
		return err
	}
	c.logger.Debug("Slack message posted", zap.String("member", memberID), zap.String("ts", ts))
	return nil
}

// PostedMessage is one message captured by Mock
type PostedMessage struct {
	MemberID string
	Text     string
}

// Mock captures posts instead of calling Slack
type Mock struct {
	mu     sync.Mutex
	Posted []PostedMessage
	// Fail, when set, decides per member whether the post errors
	Fail func(memberID string) error
}

// NewMock creates a new Mock
func NewMock() *Mock {
	return &Mock{}
}

// PostText records the message
func (m *Mock) PostText(ctx context.Context, memberID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.Fail != nil {
		if err := m.Fail(memberID); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Posted = append(m.Posted, PostedMessage{MemberID: memberID, Text: text})
	return nil
}

// Messages returns a copy of everything posted so far
func (m *Mock) Messages() []PostedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PostedMessage(nil), m.Posted...)
}
