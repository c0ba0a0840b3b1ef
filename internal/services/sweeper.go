package services

import (
	"context"
	"time"

	"github.com/ArowuTest/hostboard-backend/internal/metrics"
	"github.com/ArowuTest/hostboard-backend/internal/repositories"
	"go.uber.org/zap"
)

// SweepResult counts what one sweep did
type SweepResult struct {
	Dispatched int
	Resumed    int
	Failed     int
}

// Sweeper reconciles broadcasts no request will move on its own: scheduled ones
// that are due and sending ones whose dispatch was interrupted.
type Sweeper struct {
	broadcasts repositories.BroadcastRepository
	dispatcher BroadcastDispatcher
	staleAfter time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewSweeper creates a new Sweeper
func NewSweeper(broadcasts repositories.BroadcastRepository, dispatcher BroadcastDispatcher, staleAfter time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		broadcasts: broadcasts,
		dispatcher: dispatcher,
		staleAfter: staleAfter,
		logger:     logger,
		now:        time.Now,
	}
}

// Run performs one sweep. Errors on individual broadcasts are logged and counted;
// only a failed listing query is returned.
func (s *Sweeper) Run(ctx context.Context) (*SweepResult, error) {
	res := &SweepResult{}
	now := s.now().UTC()

	due, err := s.broadcasts.FindDue(ctx, now)
	if err != nil {
		metrics.SweeperRunsTotal.WithLabelValues("due", "error").Inc()
		return nil, err
	}
	for _, b := range due {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		if _, err := s.dispatcher.Dispatch(ctx, b.ID); err != nil {
			res.Failed++
			metrics.SweeperRunsTotal.WithLabelValues("due", "error").Inc()
			s.logger.Error("Scheduled dispatch failed", zap.String("broadcastId", b.ID.Hex()), zap.Error(err))
			continue
		}
		res.Dispatched++
		metrics.SweeperRunsTotal.WithLabelValues("due", "ok").Inc()
	}

	stale, err := s.broadcasts.FindStaleSending(ctx, now.Add(-s.staleAfter))
	if err != nil {
		metrics.SweeperRunsTotal.WithLabelValues("stale", "error").Inc()
		return res, err
	}
	for _, b := range stale {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		if _, err := s.dispatcher.Resume(ctx, b.ID); err != nil {
			res.Failed++
			metrics.SweeperRunsTotal.WithLabelValues("stale", "error").Inc()
			s.logger.Error("Stale dispatch resume failed", zap.String("broadcastId", b.ID.Hex()), zap.Error(err))
			continue
		}
		res.Resumed++
		metrics.SweeperRunsTotal.WithLabelValues("stale", "ok").Inc()
	}

	if res.Dispatched+res.Resumed+res.Failed > 0 {
		s.logger.Info("Sweep finished",
			zap.Int("dispatched", res.Dispatched),
			zap.Int("resumed", res.Resumed),
			zap.Int("failed", res.Failed),
		)
	}
	return res, nil
}
