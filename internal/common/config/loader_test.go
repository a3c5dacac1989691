package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeConfig(t, `
database:
  redis:
    address: localhost:6379
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "hospital-ops", cfg.App.Name)
	assert.Equal(t, ":8081", cfg.HTTP.Address)
	assert.Equal(t, ":8080", cfg.HTTP.OpsAddress)
	assert.Equal(t, "hospital_notification_settings", cfg.Storage.SettingsKey)
	assert.Equal(t, "hospital_notifications", cfg.Storage.NotificationsKey)
	assert.Equal(t, "hospital_resources", cfg.Storage.ResourcesKey)
	assert.Equal(t, 30, cfg.Storage.RetentionDays)
	assert.Equal(t, TransportLog, cfg.Notifications.Email.Transport)
	assert.Equal(t, TransportLog, cfg.Notifications.SMS.Transport)
	assert.Equal(t, 3, cfg.Resources.UrgentAvailable)
	assert.Equal(t, 10, cfg.Resources.CapacityFloor)
	assert.Equal(t, 0.5, cfg.Resources.HalfCapacityRatio)
	assert.False(t, cfg.Notifications.UsesAWS())
}

func TestLoadFromFile_EnvExpansion(t *testing.T) {
	t.Setenv("OPS_TEST_REDIS", "redis.internal:6380")
	path := writeConfig(t, `
database:
  redis:
    address: ${OPS_TEST_REDIS}
notifications:
  push:
    topic_arn: arn:aws:sns:us-east-1:123456789012:ward-alerts
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "redis.internal:6380", cfg.Database.Redis.Address)
	assert.True(t, cfg.Notifications.UsesAWS())
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "redis address required",
			body:    "app:\n  name: x\n",
			wantErr: "database.redis.address",
		},
		{
			name: "ses needs addresses",
			body: `
database:
  redis:
    address: localhost:6379
notifications:
  email:
    transport: ses
`,
			wantErr: "from_email",
		},
		{
			name: "sns needs phone",
			body: `
database:
  redis:
    address: localhost:6379
notifications:
  sms:
    transport: sns
`,
			wantErr: "phone_number",
		},
		{
			name: "unknown transport",
			body: `
database:
  redis:
    address: localhost:6379
notifications:
  email:
    transport: smtp
`,
			wantErr: "notifications.email.transport",
		},
		{
			name: "ratio out of range",
			body: `
database:
  redis:
    address: localhost:6379
resources:
  half_capacity_ratio: 1.5
`,
			wantErr: "half_capacity_ratio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("REDIS_ADDRESS", "")
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, "1.5s", GetDuration(1500).String())
}
