package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ArowuTest/hostboard-backend/internal/apperrors"
	"github.com/ArowuTest/hostboard-backend/internal/metrics"
	"github.com/ArowuTest/hostboard-backend/internal/models"
	"github.com/ArowuTest/hostboard-backend/internal/repositories"
	"github.com/ArowuTest/hostboard-backend/pkg/blobstore"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("github.com/ArowuTest/hostboard-backend/internal/services")

// DispatchResult is the aggregate outcome reported to the operator
type DispatchResult struct {
	BroadcastID primitive.ObjectID `json:"broadcastId"`
	Recipients  int                `json:"recipients"`
	Sent        int                `json:"sent"`
	Failed      int                `json:"failed"`
	Skipped     int                `json:"skipped"`
}

// DispatcherConfig tunes the fan-out
type DispatcherConfig struct {
	Concurrency       int
	ChannelTimeout    time.Duration
	StaleSendingAfter time.Duration
	Rates             ChannelRates
}

// Dispatcher fans a broadcast out to its recipients across the enabled channels
type Dispatcher struct {
	broadcasts repositories.BroadcastRepository
	deliveries repositories.DeliveryRepository
	settings   repositories.ChannelSettingsRepository
	resolver   *RecipientResolver
	senders    Senders
	signer     blobstore.Signer
	cfg        DispatcherConfig
	limiters   map[models.Channel]*rate.Limiter
	logger     *zap.Logger
	now        func() time.Time
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(
	broadcasts repositories.BroadcastRepository,
	deliveries repositories.DeliveryRepository,
	settings repositories.ChannelSettingsRepository,
	resolver *RecipientResolver,
	senders Senders,
	signer blobstore.Signer,
	cfg DispatcherConfig,
	logger *zap.Logger,
) *Dispatcher {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.ChannelTimeout <= 0 {
		cfg.ChannelTimeout = 15 * time.Second
	}
	return &Dispatcher{
		broadcasts: broadcasts,
		deliveries: deliveries,
		settings:   settings,
		resolver:   resolver,
		senders:    senders,
		signer:     signer,
		cfg:        cfg,
		limiters:   newLimiters(cfg.Rates),
		logger:     logger,
		now:        time.Now,
	}
}

// Dispatch sends a draft or scheduled broadcast. The draft/scheduled -> sending
// transition is a compare-and-set, so of two concurrent triggers only one proceeds.
// When targeting resolves to nobody the broadcast returns to its prior status.
func (d *Dispatcher) Dispatch(ctx context.Context, id primitive.ObjectID) (*DispatchResult, error) {
	ctx, span := tracer.Start(ctx, "broadcast.dispatch")
	defer span.End()
	span.SetAttributes(attribute.String("broadcast.id", id.Hex()))

	start := time.Now()
	res, err := d.dispatch(ctx, id)
	d.observe(start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return res, err
}

func (d *Dispatcher) dispatch(ctx context.Context, id primitive.ObjectID) (*DispatchResult, error) {
	b, err := d.broadcasts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.IsDispatchable() {
		return nil, stateError(b, "send")
	}
	if err := validateSendable(b); err != nil {
		return nil, err
	}

	prior := b.Status
	startedAt := d.now().UTC()
	b, err = d.broadcasts.TransitionStatus(ctx, id,
		[]models.BroadcastStatus{models.BroadcastStatusDraft, models.BroadcastStatusScheduled},
		models.BroadcastStatusSending,
		repositories.StatusPatch{SendingStartedAt: &startedAt},
	)
	if errors.Is(err, apperrors.ErrConflict) {
		// Lost the race: report what the winner moved it to
		current, ferr := d.broadcasts.FindByID(ctx, id)
		if ferr != nil {
			return nil, ferr
		}
		return nil, stateError(current, "send")
	}
	if err != nil {
		return nil, err
	}

	d.logger.Info("Broadcast dispatch started",
		zap.String("broadcastId", id.Hex()),
		zap.String("from", string(prior)),
	)

	recipients, err := d.resolver.Resolve(ctx, b)
	if err != nil {
		if rerr := d.revert(ctx, id, prior); rerr != nil {
			return nil, fmt.Errorf("%w (revert to %s failed: %v)", err, prior, rerr)
		}
		return nil, err
	}

	return d.complete(ctx, b, recipients, false)
}

// Resume re-runs the fan-out of a broadcast left in sending, typically after a
// crash mid-dispatch. Channels already recorded as sent for a recipient are not sent
// again, and deliveries are upserted so each recipient keeps a single record.
// Only broadcasts sending for longer than StaleSendingAfter qualify.
func (d *Dispatcher) Resume(ctx context.Context, id primitive.ObjectID) (*DispatchResult, error) {
	ctx, span := tracer.Start(ctx, "broadcast.resume")
	defer span.End()
	span.SetAttributes(attribute.String("broadcast.id", id.Hex()))

	start := time.Now()
	res, err := d.resume(ctx, id)
	d.observe(start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return res, err
}

func (d *Dispatcher) resume(ctx context.Context, id primitive.ObjectID) (*DispatchResult, error) {
	b, err := d.broadcasts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BroadcastStatusSending {
		return nil, apperrors.NewInvalidState(id.Hex(), string(b.Status), "resume", nil)
	}
	if b.SendingStartedAt != nil && d.now().Sub(*b.SendingStartedAt) < d.cfg.StaleSendingAfter {
		return nil, apperrors.NewInvalidState(id.Hex(), string(b.Status), "resume", apperrors.ErrAlreadySending)
	}

	// Claim the stale run so two resumes cannot both proceed
	startedAt := d.now().UTC()
	b, err = d.broadcasts.TransitionStatus(ctx, id,
		[]models.BroadcastStatus{models.BroadcastStatusSending},
		models.BroadcastStatusSending,
		repositories.StatusPatch{
			SendingStartedAt:     &startedAt,
			IfSendingStartedAt:   b.SendingStartedAt,
			IfNoSendingStartedAt: b.SendingStartedAt == nil,
		},
	)
	if errors.Is(err, apperrors.ErrConflict) {
		current, ferr := d.broadcasts.FindByID(ctx, id)
		if ferr != nil {
			return nil, ferr
		}
		return nil, apperrors.NewInvalidState(id.Hex(), string(current.Status), "resume", apperrors.ErrAlreadySending)
	}
	if err != nil {
		return nil, err
	}

	d.logger.Warn("Resuming stale broadcast dispatch", zap.String("broadcastId", id.Hex()))

	recipients, err := d.resolver.Resolve(ctx, b)
	if err != nil {
		if rerr := d.revert(ctx, id, models.BroadcastStatusDraft); rerr != nil {
			return nil, fmt.Errorf("%w (revert to draft failed: %v)", err, rerr)
		}
		return nil, err
	}
	return d.complete(ctx, b, recipients, true)
}

// complete runs the fan-out and moves the broadcast to sent
func (d *Dispatcher) complete(ctx context.Context, b *models.Broadcast, recipients []models.Recipient, resuming bool) (*DispatchResult, error) {
	result, err := d.fanOut(ctx, b, recipients, resuming)
	if err != nil {
		d.logger.Error("Broadcast dispatch aborted, broadcast left in sending",
			zap.String("broadcastId", b.ID.Hex()),
			zap.Error(err),
		)
		return nil, err
	}

	sentAt := d.now().UTC()
	stats := models.BroadcastStats{
		Recipients: result.Recipients,
		Sent:       result.Sent,
		Failed:     result.Failed,
		Skipped:    result.Skipped,
	}
	if _, err := d.broadcasts.TransitionStatus(ctx, b.ID,
		[]models.BroadcastStatus{models.BroadcastStatusSending},
		models.BroadcastStatusSent,
		repositories.StatusPatch{SentAt: &sentAt, Stats: &stats},
	); err != nil {
		return nil, err
	}

	d.logger.Info("Broadcast sent",
		zap.String("broadcastId", b.ID.Hex()),
		zap.Int("recipients", result.Recipients),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// fanOut delivers to every recipient with bounded concurrency. Channel failures are
// recorded on the delivery; a failed delivery write aborts the remaining recipients.
// When resuming, outcomes already recorded as sent are carried over unsent.
func (d *Dispatcher) fanOut(ctx context.Context, b *models.Broadcast, recipients []models.Recipient, resuming bool) (*DispatchResult, error) {
	settings, err := d.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	videoURL := ""
	if b.VideoURL != "" {
		if videoURL, err = d.signer.SignedURL(ctx, b.VideoURL); err != nil {
			d.logger.Warn("Video URL signing failed, sending without video",
				zap.String("broadcastId", b.ID.Hex()),
				zap.Error(err),
			)
			videoURL = ""
		}
	}
	msg := message{broadcast: b, videoURL: videoURL}

	result := &DispatchResult{BroadcastID: b.ID, Recipients: len(recipients)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.Concurrency)
	for _, r := range recipients {
		r := r
		g.Go(func() error {
			var prior *models.Delivery
			if resuming {
				existing, err := d.deliveries.FindByBroadcastAndUser(gctx, b.ID, r.ID)
				var nf *apperrors.NotFoundError
				switch {
				case err == nil:
					prior = existing
				case !errors.As(err, &nf):
					return err
				}
			}
			delivery := d.deliver(gctx, msg, r, settings, prior)
			if err := d.deliveries.Upsert(gctx, delivery); err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			switch delivery.Summary() {
			case models.OutcomeSent:
				result.Sent++
			case models.OutcomeSkipped:
				result.Skipped++
			default:
				result.Failed++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// deliver attempts every enabled channel for one recipient; attempts are independent.
// A channel that prior records as sent is kept as is.
func (d *Dispatcher) deliver(ctx context.Context, m message, r models.Recipient, settings *models.ChannelSettings, prior *models.Delivery) *models.Delivery {
	ctx, span := tracer.Start(ctx, "broadcast.deliver")
	defer span.End()
	span.SetAttributes(attribute.String("recipient.id", r.ID.Hex()))

	delivery := &models.Delivery{BroadcastID: m.broadcast.ID, UserID: r.ID}
	for _, ch := range m.broadcast.Channels.Enabled() {
		if prev := prior.Outcome(ch); prev != nil && prev.Status == models.OutcomeSent {
			delivery.SetOutcome(ch, *prev)
			span.SetAttributes(attribute.String("channel."+string(ch), "already_sent"))
			continue
		}
		outcome := outcomeOf(d.attempt(ctx, ch, m, r, settings))
		delivery.SetOutcome(ch, outcome)
		metrics.ChannelAttemptsTotal.WithLabelValues(string(ch), string(outcome.Status)).Inc()
		span.SetAttributes(attribute.String("channel."+string(ch), string(outcome.Status)))

		if outcome.Status == models.OutcomeFailed {
			d.logger.Warn("Channel send failed",
				zap.String("broadcastId", m.broadcast.ID.Hex()),
				zap.String("recipientId", r.ID.Hex()),
				zap.String("channel", string(ch)),
				zap.String("error", outcome.Error),
			)
		}
	}
	return delivery
}

func (d *Dispatcher) attempt(ctx context.Context, ch models.Channel, m message, r models.Recipient, settings *models.ChannelSettings) error {
	if !settings.IsEnabled(ch) {
		return errSkip{"channel disabled"}
	}
	addr, err := d.senders.prepare(ch, r)
	if err != nil {
		return err
	}

	actx, cancel := context.WithTimeout(ctx, d.cfg.ChannelTimeout)
	defer cancel()
	if err := d.limiters[ch].Wait(actx); err != nil {
		return &apperrors.ChannelSendError{Channel: string(ch), Err: err}
	}
	return d.senders.send(actx, ch, addr, m, r)
}

func (d *Dispatcher) revert(ctx context.Context, id primitive.ObjectID, to models.BroadcastStatus) error {
	_, err := d.broadcasts.TransitionStatus(ctx, id,
		[]models.BroadcastStatus{models.BroadcastStatusSending},
		to,
		repositories.StatusPatch{ClearSendingStartedAt: true},
	)
	return err
}

func (d *Dispatcher) observe(start time.Time, err error) {
	metrics.DispatchDuration.Observe(time.Since(start).Seconds())
	result := "ok"
	var (
		is *apperrors.InvalidStateError
		nr *apperrors.NoRecipientsError
	)
	switch {
	case err == nil:
	case errors.As(err, &is):
		result = "rejected"
	case errors.As(err, &nr):
		result = "no_recipients"
	default:
		result = "error"
	}
	metrics.DispatchTotal.WithLabelValues(result).Inc()
}

// stateError explains why a broadcast in its current status cannot be sent
func stateError(b *models.Broadcast, op string) error {
	var cause error
	switch b.Status {
	case models.BroadcastStatusSending:
		cause = apperrors.ErrAlreadySending
	case models.BroadcastStatusSent:
		cause = apperrors.ErrAlreadySent
	}
	return apperrors.NewInvalidState(b.ID.Hex(), string(b.Status), op, cause)
}
