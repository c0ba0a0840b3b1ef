package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ArowuTest/hostboard-backend/api/routes"
	"github.com/ArowuTest/hostboard-backend/internal/app"
	"github.com/ArowuTest/hostboard-backend/internal/config"
	"github.com/ArowuTest/hostboard-backend/internal/handlers"
	"github.com/ArowuTest/hostboard-backend/internal/metrics"
	"github.com/ArowuTest/hostboard-backend/internal/services"
	"github.com/ArowuTest/hostboard-backend/internal/tracing"
	"github.com/ArowuTest/hostboard-backend/pkg/jwt"
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

	ctx := context.Background()
	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, logger)
	if err != nil {
		logger.Fatal("Failed to init tracing", zap.Error(err))
	}
	defer shutdownTracing()

	metrics.InitAPIMetrics()
	metrics.InitWorkerMetrics()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialise application", zap.Error(err))
	}
	defer a.Close()

	resolver := services.NewRecipientResolver(a.Hosts)
	broadcastService := services.NewBroadcastService(a.Broadcasts, a.Templates, resolver, a.Signer, logger)
	templateService := services.NewTemplateService(a.Templates, logger)
	inboxService := services.NewInboxService(a.Deliveries, a.Broadcasts, a.Signer, logger)
	hostService := services.NewHostService(a.Hosts, logger)
	settingsService := services.NewChannelSettingsService(a.Settings, logger)
	identityService := services.NewIdentityService(a.Hosts, logger)

	router := routes.SetupRouter(cfg, routes.HandlerDependencies{
		BroadcastHandler: handlers.NewBroadcastHandler(broadcastService, a.Dispatcher, inboxService),
		TemplateHandler:  handlers.NewTemplateHandler(templateService),
		InboxHandler:     handlers.NewInboxHandler(inboxService),
		HostHandler:      handlers.NewHostHandler(hostService),
		SettingsHandler:  handlers.NewChannelSettingsHandler(settingsService),
		Tokens:           jwt.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.ExpiresIn)*time.Second),
		Identity:         identityService,
		Logger:           logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// In-flight sends run on a detached context; give them time to finish
	sctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
