// Package app wires configuration, storage, channel sinks and services
// into the HTTP handlers served by cmd/ops-service.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"

	"hospital-ops/internal/api"
	awsclients "hospital-ops/internal/common/aws"
	"hospital-ops/internal/common/config"
	"hospital-ops/internal/common/logger"
	"hospital-ops/internal/common/observability"
	"hospital-ops/internal/common/validation"
	"hospital-ops/internal/services/notification"
	"hospital-ops/internal/services/notification/channels"
	"hospital-ops/internal/services/resource"
	"hospital-ops/internal/storage"
	"hospital-ops/pkg/registry"
)

type App struct {
	Notifications *notification.Service
	Resources     *resource.Service
	Router        http.Handler
	OpsRouter     http.Handler

	dispatcher *notification.Dispatcher
}

// New builds the application. clients may be nil when no AWS transport is
// configured.
func New(cfg *config.Config, rdb redis.Cmdable, clients *awsclients.Clients, obs *observability.Observability, log logger.Logger) (*App, error) {
	reg, err := registry.LoadRegistry(cfg.Notifications.RegistryPath)
	if err != nil {
		return nil, fmt.Errorf("load template registry: %w", err)
	}
	validator, err := validation.NewValidator(reg)
	if err != nil {
		return nil, fmt.Errorf("compile template registry: %w", err)
	}

	store := storage.NewRedisStore(rdb, config.GetDuration(cfg.Storage.Timeout))

	ncfg := notification.NewConfig(cfg)
	dispatcher := notification.NewDispatcher(
		buildSinks(cfg.Notifications, clients, log),
		ncfg.Workers,
		ncfg.QueueSize,
		ncfg.SendTimeout,
		log,
		obs,
	)

	notifications := notification.New(ncfg, store, dispatcher, log)
	resources := resource.New(resource.NewConfig(cfg), store, log)

	handler := api.NewHandler(notifications, resources, validator, ncfg.RetentionDays, log)
	health := api.NewHealthHandler(func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})

	return &App{
		Notifications: notifications,
		Resources:     resources,
		Router:        api.NewRouter(handler),
		OpsRouter:     api.NewOpsRouter(health),
		dispatcher:    dispatcher,
	}, nil
}

// Load restores persisted state into both services.
func (a *App) Load(ctx context.Context) {
	a.Notifications.Load(ctx)
	a.Resources.Load(ctx)
}

// Close drains pending deliveries.
func (a *App) Close(ctx context.Context) error {
	if err := a.dispatcher.Close(ctx); err != nil {
		return fmt.Errorf("pending deliveries abandoned: %w", err)
	}
	return nil
}

// buildSinks picks a transport per channel. Typed nil clients must not
// reach the sinks as non-nil interfaces, hence the explicit checks.
func buildSinks(cfg config.NotificationConfig, clients *awsclients.Clients, log logger.Logger) channels.Set {
	if clients == nil {
		clients = &awsclients.Clients{}
	}

	var sesClient channels.SESService
	if clients.SES != nil && cfg.Email.Transport == config.TransportSES {
		sesClient = clients.SES
	}
	var smsClient, pushClient channels.SNSService
	if clients.SNS != nil && cfg.SMS.Transport == config.TransportSNS {
		smsClient = clients.SNS
	}
	if clients.SNS != nil {
		pushClient = clients.SNS
	}

	return channels.NewSet(
		channels.NewInAppSink(log),
		channels.NewPushSink(pushClient, cfg.Push.TopicARN, log),
		channels.NewEmailSink(sesClient, cfg.Email.FromEmail, cfg.Email.ToEmail, log),
		channels.NewSMSSink(smsClient, cfg.SMS.PhoneNumber, cfg.SMS.DefaultSMSSenderID, log),
	)
}
