// Package app wires configuration into repositories, channel senders and services
// for the binaries under cmd/.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ArowuTest/hostboard-backend/internal/config"
	"github.com/ArowuTest/hostboard-backend/internal/repositories"
	mongorepo "github.com/ArowuTest/hostboard-backend/internal/repositories/mongodb"
	"github.com/ArowuTest/hostboard-backend/internal/services"
	"github.com/ArowuTest/hostboard-backend/pkg/blobstore"
	"github.com/ArowuTest/hostboard-backend/pkg/mailer"
	"github.com/ArowuTest/hostboard-backend/pkg/mongodb"
	"github.com/ArowuTest/hostboard-backend/pkg/slackbot"
	"github.com/ArowuTest/hostboard-backend/pkg/smsgateway"
	"go.uber.org/zap"
)

// App holds the long-lived dependencies shared by the API and the sweeper
type App struct {
	Config *config.Config
	Logger *zap.Logger
	Mongo  *mongodb.Client

	Hosts      repositories.HostRepository
	Broadcasts repositories.BroadcastRepository
	Templates  repositories.TemplateRepository
	Deliveries repositories.DeliveryRepository
	Settings   repositories.ChannelSettingsRepository

	Signer     blobstore.Signer
	Dispatcher *services.Dispatcher
}

// New connects to MongoDB, ensures indexes and builds the dispatcher
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	client, err := mongodb.NewClient(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.MongoDB.Database)

	ictx, cancel := context.WithTimeout(ctx, cfg.MongoDB.Timeout)
	defer cancel()
	if err := mongodb.EnsureIndexes(ictx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}

	a := &App{
		Config:     cfg,
		Logger:     logger,
		Mongo:      client,
		Hosts:      mongorepo.NewHostRepository(db),
		Broadcasts: mongorepo.NewBroadcastRepository(db),
		Templates:  mongorepo.NewTemplateRepository(db),
		Deliveries: mongorepo.NewDeliveryRepository(db),
		Settings:   mongorepo.NewChannelSettingsRepository(db),
	}

	if a.Signer, err = newSigner(ctx, cfg.Blob); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	a.Dispatcher = services.NewDispatcher(
		a.Broadcasts, a.Deliveries, a.Settings,
		services.NewRecipientResolver(a.Hosts),
		NewSenders(cfg, logger),
		a.Signer,
		services.DispatcherConfig{
			Concurrency:       cfg.Dispatch.Concurrency,
			ChannelTimeout:    cfg.Dispatch.ChannelTimeout,
			StaleSendingAfter: cfg.Dispatch.StaleSendingAfter,
			Rates: services.ChannelRates{
				Slack: cfg.Dispatch.SlackRatePerSec,
				Email: cfg.Dispatch.EmailRatePerSec,
				SMS:   cfg.Dispatch.SMSRatePerSec,
			},
		},
		logger,
	)
	return a, nil
}

// Close disconnects from MongoDB
func (a *App) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Mongo.Disconnect(ctx); err != nil {
		a.Logger.Error("Error disconnecting from MongoDB", zap.Error(err))
	}
}

// NewSenders picks the real or mock transport for each channel
func NewSenders(cfg *config.Config, logger *zap.Logger) services.Senders {
	s := services.Senders{SMSRegion: cfg.SMS.DefaultRegion}

	if cfg.Slack.Mock {
		s.Slack = slackbot.NewMock()
	} else {
		s.Slack = slackbot.NewClient(cfg.Slack.BotToken, logger)
	}
	if cfg.Email.Mock {
		s.Email = mailer.NewMockMailer()
	} else {
		s.Email = mailer.NewSendGridMailer(cfg.Email.SendGridAPIKey, cfg.Email.FromName, cfg.Email.FromAddress, logger)
	}
	if cfg.SMS.Mock {
		s.SMS = smsgateway.NewMockGateway()
	} else {
		s.SMS = smsgateway.NewTwilioGateway(cfg.SMS.TwilioAccountSID, cfg.SMS.TwilioAuthToken, cfg.SMS.FromNumber, logger)
	}

	logger.Info("Channel senders configured",
		zap.Bool("slackMock", cfg.Slack.Mock),
		zap.Bool("emailMock", cfg.Email.Mock),
		zap.Bool("smsMock", cfg.SMS.Mock),
	)
	return s
}

func newSigner(ctx context.Context, cfg config.BlobConfig) (blobstore.Signer, error) {
	if cfg.Bucket == "" {
		return blobstore.Passthrough{}, nil
	}
	signer, err := blobstore.NewS3Signer(ctx, cfg.Bucket, cfg.Region, cfg.Endpoint, cfg.URLTTL)
	if err != nil {
		return nil, fmt.Errorf("blob signer: %w", err)
	}
	return signer, nil
}
