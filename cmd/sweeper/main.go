package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ArowuTest/hostboard-backend/internal/app"
	"github.com/ArowuTest/hostboard-backend/internal/config"
	"github.com/ArowuTest/hostboard-backend/internal/metrics"
	"github.com/ArowuTest/hostboard-backend/internal/services"
	"github.com/ArowuTest/hostboard-backend/internal/tracing"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := config.NewLogger(cfg.LogLevel, cfg.Server.Mode)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing.ServiceName+"-sweeper", cfg.Tracing.Endpoint, logger)
	if err != nil {
		logger.Fatal("Failed to init tracing", zap.Error(err))
	}
	defer shutdownTracing()

	metrics.InitWorkerMetrics()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialise application", zap.Error(err))
	}
	defer a.Close()

	sweeper := services.NewSweeper(a.Broadcasts, a.Dispatcher, cfg.Dispatch.StaleSendingAfter, logger)

	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	c := cron.New(
		cron.WithParser(parser),
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := c.AddFunc(cfg.Sweeper.Schedule, func() {
		if _, err := sweeper.Run(ctx); err != nil {
			logger.Error("Sweep failed", zap.Error(err))
		}
	}); err != nil {
		logger.Fatal("Invalid sweeper schedule", zap.String("schedule", cfg.Sweeper.Schedule), zap.Error(err))
	}

	// Metrics only; the sweeper serves no API
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: ":" + cfg.Server.Port, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Metrics listener stopped", zap.Error(err))
		}
	}()

	c.Start()
	logger.Info("Sweeper started", zap.String("schedule", cfg.Sweeper.Schedule))

	<-ctx.Done()
	logger.Info("Shutting down sweeper...")
	<-c.Stop().Done()

	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(sctx)

	logger.Info("Sweeper exiting")
}
