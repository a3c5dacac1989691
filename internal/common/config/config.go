// internal/common/config/config.go
package config

import "time"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	HTTP          HTTPConfig         `mapstructure:"http"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Storage       StorageConfig      `mapstructure:"storage"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Resources     ResourceConfig     `mapstructure:"resources"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// HTTPConfig holds the API and ops listeners.
type HTTPConfig struct {
	Address         string `mapstructure:"address"`
	OpsAddress      string `mapstructure:"ops_address"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StorageConfig names the durable keys and the retention window.
type StorageConfig struct {
	SettingsKey      string `mapstructure:"settings_key"`
	NotificationsKey string `mapstructure:"notifications_key"`
	ResourcesKey     string `mapstructure:"resources_key"`
	RetentionDays    int    `mapstructure:"retention_days"`
	Timeout          int    `mapstructure:"timeout"` // milliseconds
}

// NotificationConfig holds settings for the dispatcher and the channel sinks.
type NotificationConfig struct {
	RegistryPath string `mapstructure:"registry_path"`

	Delivery struct {
		Workers   int `mapstructure:"workers"`
		QueueSize int `mapstructure:"queue_size"`
		Timeout   int `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"delivery"`

	Email struct {
		Transport string `mapstructure:"transport"` // "log" or "ses"
		FromEmail string `mapstructure:"from_email"`
		ToEmail   string `mapstructure:"to_email"`
	} `mapstructure:"email"`

	SMS struct {
		Transport          string `mapstructure:"transport"` // "log" or "sns"
		PhoneNumber        string `mapstructure:"phone_number"`
		DefaultSMSSenderID string `mapstructure:"default_sms_sender_id"`
	} `mapstructure:"sms"`

	Push struct {
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"push"`

	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

// ResourceConfig carries the inventory merge thresholds.
type ResourceConfig struct {
	UrgentAvailable   int     `mapstructure:"urgent_available"`
	CapacityFloor     int     `mapstructure:"capacity_floor"`
	HalfCapacityRatio float64 `mapstructure:"half_capacity_ratio"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// UsesAWS reports whether any sink needs an AWS client.
func (n NotificationConfig) UsesAWS() bool {
	return n.Email.Transport == TransportSES || n.SMS.Transport == TransportSNS || n.Push.TopicARN != ""
}

const (
	TransportLog = "log"
	TransportSES = "ses"
	TransportSNS = "sns"
)

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
