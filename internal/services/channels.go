package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ArowuTest/hostboard-backend/internal/apperrors"
	"github.com/ArowuTest/hostboard-backend/internal/models"
	"github.com/ArowuTest/hostboard-backend/pkg/mailer"
	"github.com/ArowuTest/hostboard-backend/pkg/slackbot"
	"github.com/ArowuTest/hostboard-backend/pkg/smsgateway"
	"golang.org/x/time/rate"
)

// Senders bundles the three notification transports
type Senders struct {
	Slack     slackbot.Poster
	Email     mailer.Mailer
	SMS       smsgateway.Gateway
	SMSRegion string
}

// ChannelRates caps outbound calls per second for each channel; zero or less means unlimited
type ChannelRates struct {
	Slack float64
	Email float64
	SMS   float64
}

func newLimiters(r ChannelRates) map[models.Channel]*rate.Limiter {
	mk := func(perSec float64) *rate.Limiter {
		if perSec <= 0 {
			return rate.NewLimiter(rate.Inf, 0)
		}
		burst := int(perSec)
		if burst < 1 {
			burst = 1
		}
		return rate.NewLimiter(rate.Limit(perSec), burst)
	}
	return map[models.Channel]*rate.Limiter{
		models.ChannelSlack: mk(r.Slack),
		models.ChannelEmail: mk(r.Email),
		models.ChannelSMS:   mk(r.SMS),
	}
}

// message is the rendered content of one broadcast for one recipient
type message struct {
	broadcast *models.Broadcast
	videoURL  string
}

// errSkip marks a channel attempt that was never made
type errSkip struct{ reason string }

func (e errSkip) Error() string { return e.reason }

// prepare checks the channel prerequisite and returns the address to send to
func (s Senders) prepare(ch models.Channel, r models.Recipient) (string, error) {
	switch ch {
	case models.ChannelSlack:
		if r.SlackID == "" {
			return "", errSkip{"missing slackId"}
		}
		return r.SlackID, nil
	case models.ChannelEmail:
		if r.Email == "" {
			return "", errSkip{"missing email"}
		}
		return r.Email, nil
	case models.ChannelSMS:
		if r.Phone == "" {
			return "", errSkip{"missing phone"}
		}
		phone, err := smsgateway.Normalize(r.Phone, s.SMSRegion)
		if err != nil {
			return "", errSkip{"invalid phone"}
		}
		return phone, nil
	}
	return "", errSkip{fmt.Sprintf("unknown channel %s", ch)}
}

// send performs one channel call. A panic inside a sender becomes an error.
func (s Senders) send(ctx context.Context, ch models.Channel, addr string, m message, r models.Recipient) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("sender panic: %v", p)
		}
	}()

	b := m.broadcast
	switch ch {
	case models.ChannelSlack:
		err = s.Slack.PostText(ctx, addr, renderSlackText(b, m.videoURL, r))
	case models.ChannelEmail:
		htmlBody := renderEmailHTML(b, m.videoURL, r)
		err = s.Email.Send(ctx, mailer.Email{
			ToName:    r.Name,
			ToEmail:   addr,
			Subject:   Personalize(emailSubject(b), r),
			PlainText: PlainText(htmlBody),
			HTMLBody:  htmlBody,
		})
	case models.ChannelSMS:
		// SMS goes out verbatim so the length checked at write time holds
		_, err = s.SMS.SendSMS(ctx, addr, b.BodySMS)
	default:
		err = fmt.Errorf("unknown channel %s", ch)
	}
	if err != nil {
		return &apperrors.ChannelSendError{Channel: string(ch), Err: err}
	}
	return nil
}

// outcomeOf turns an attempt error into the recorded outcome
func outcomeOf(err error) models.ChannelOutcome {
	if err == nil {
		return models.ChannelOutcome{Status: models.OutcomeSent}
	}
	var skip errSkip
	if errors.As(err, &skip) {
		return models.ChannelOutcome{Status: models.OutcomeSkipped, Error: skip.reason}
	}
	var cse *apperrors.ChannelSendError
	if errors.As(err, &cse) {
		return models.ChannelOutcome{Status: models.OutcomeFailed, Error: cse.Err.Error()}
	}
	return models.ChannelOutcome{Status: models.OutcomeFailed, Error: err.Error()}
}
