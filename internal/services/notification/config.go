package notification

import (
	"time"

	"hospital-ops/internal/common/config"
)

const (
	defaultRetentionDays = 30
	defaultWorkers       = 4
	defaultQueueSize     = 256
	defaultSendTimeout   = 10 * time.Second
)

// Config is the subset of the application config the service needs.
type Config struct {
	SettingsKey      string
	NotificationsKey string
	RetentionDays    int
	Workers          int
	QueueSize        int
	SendTimeout      time.Duration
}

// NewConfig extracts the notification service settings, filling gaps
// with defaults.
func NewConfig(cfg *config.Config) Config {
	c := Config{
		SettingsKey:      cfg.Storage.SettingsKey,
		NotificationsKey: cfg.Storage.NotificationsKey,
		RetentionDays:    cfg.Storage.RetentionDays,
		Workers:          cfg.Notifications.Delivery.Workers,
		QueueSize:        cfg.Notifications.Delivery.QueueSize,
		SendTimeout:      config.GetDuration(cfg.Notifications.Delivery.Timeout),
	}
	return c.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.SettingsKey == "" {
		c.SettingsKey = "hospital_notification_settings"
	}
	if c.NotificationsKey == "" {
		c.NotificationsKey = "hospital_notifications"
	}
	if c.RetentionDays <= 0 {
		c.RetentionDays = defaultRetentionDays
	}
	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}
	if c.QueueSize < 0 {
		c.QueueSize = defaultQueueSize
	}
	if c.SendTimeout <= 0 {
		c.SendTimeout = defaultSendTimeout
	}
	return c
}
