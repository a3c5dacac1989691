// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-ops/internal/app"
	"hospital-ops/internal/common/config"
	"hospital-ops/internal/common/logger"
	"hospital-ops/internal/common/observability"
	"hospital-ops/internal/models"
)

func loadConfig(t *testing.T, redisAddr string) *config.Config {
	t.Helper()
	body := fmt.Sprintf(`
database:
  redis:
    address: %s
notifications:
  delivery:
    workers: 2
    queue_size: 16
    timeout: 2000
logging:
  level: debug
  format: console
`, redisAddr)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := config.LoadFromFile(path)
	require.NoError(t, err)
	return cfg
}

func startApp(t *testing.T, cfg *config.Config) (*app.App, *httptest.Server, *httptest.Server) {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Database.Redis.Address})
	t.Cleanup(func() { _ = rdb.Close() })

	a, err := app.New(cfg, rdb, nil, observability.Noop(), logger.NewTestLogger(t))
	require.NoError(t, err)
	a.Load(context.Background())

	api := httptest.NewServer(a.Router)
	ops := httptest.NewServer(a.OpsRouter)
	t.Cleanup(func() {
		api.Close()
		ops.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.Close(ctx)
	})
	return a, api, ops
}

func call(t *testing.T, method, url, body string, out interface{}) int {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestFullE2E(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := loadConfig(t, mr.Addr())

	_, api, ops := startApp(t, cfg)

	t.Run("ops endpoints", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, call(t, http.MethodGet, ops.URL+"/health", "", nil))
		assert.Equal(t, http.StatusOK, call(t, http.MethodGet, ops.URL+"/ready", "", nil))
	})

	var supply struct {
		Resource     models.ResourceItem `json:"resource"`
		Notification models.Notification `json:"notification"`
	}
	t.Run("supply then request", func(t *testing.T) {
		status := call(t, http.MethodPost, api.URL+"/resources", `{"hospital":"City General","resourceType":"icu","quantity":2}`, &supply)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "2/10", supply.Resource.Total)
		assert.Equal(t, models.StatusUrgent, supply.Resource.Status)

		status = call(t, http.MethodPost, api.URL+"/resources", `{"hospital":"City General","resourceType":"icu","quantity":2}`, &supply)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "4/10", supply.Resource.Total)

		var request struct {
			Resource     models.ResourceItem `json:"resource"`
			Notification models.Notification `json:"notification"`
		}
		status = call(t, http.MethodPost, api.URL+"/resources", `{"hospital":"City General","resourceType":"icu","quantity":-6,"note":"trauma surge"}`, &request)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "4/10 (2 needed)", request.Resource.Total)
		assert.Equal(t, supply.Resource.ID, request.Resource.ID)
		assert.Equal(t, models.PriorityCritical, request.Notification.Priority)
	})

	t.Run("emergency and settings", func(t *testing.T) {
		var n models.Notification
		status := call(t, http.MethodPost, api.URL+"/alerts/emergency", `{"hospital":"City General","alertType":"Power Outage","severity":"critical","description":"Generator B offline"}`, &n)
		require.Equal(t, http.StatusCreated, status)
		assert.Equal(t, models.CategoryEmergency, n.Category)

		var settings models.NotificationSettings
		status = call(t, http.MethodPatch, api.URL+"/settings", `{"channels":{"in-app":true,"push":true,"email":true,"sms":false}}`, &settings)
		require.Equal(t, http.StatusOK, status)
		assert.True(t, settings.Channels[models.ChannelEmail])

		status = call(t, http.MethodPost, api.URL+"/notifications/"+n.ID+"/read", "", nil)
		assert.Equal(t, http.StatusNoContent, status)
	})

	var before struct {
		Notifications []models.Notification `json:"notifications"`
		UnreadCount   int                   `json:"unreadCount"`
	}
	require.Equal(t, http.StatusOK, call(t, http.MethodGet, api.URL+"/notifications", "", &before))
	require.Len(t, before.Notifications, 4)
	assert.Equal(t, 3, before.UnreadCount)
	assert.Equal(t, models.TypeEmergency, before.Notifications[0].Type)

	t.Run("state survives restart", func(t *testing.T) {
		restarted, api2, _ := startApp(t, loadConfig(t, mr.Addr()))

		var after struct {
			Notifications []models.Notification `json:"notifications"`
			UnreadCount   int                   `json:"unreadCount"`
		}
		require.Equal(t, http.StatusOK, call(t, http.MethodGet, api2.URL+"/notifications", "", &after))
		require.Len(t, after.Notifications, len(before.Notifications))
		for i := range before.Notifications {
			assert.Equal(t, before.Notifications[i].ID, after.Notifications[i].ID)
			assert.Equal(t, before.Notifications[i].IsRead, after.Notifications[i].IsRead)
		}
		assert.Equal(t, before.UnreadCount, after.UnreadCount)

		resources := restarted.Resources.Resources()
		require.Len(t, resources, 1)
		assert.Equal(t, "4/10 (2 needed)", resources[0].Total)
		assert.True(t, restarted.Notifications.Settings().Channels[models.ChannelEmail])
	})

	t.Run("readiness fails without redis", func(t *testing.T) {
		mr.Close()
		assert.Equal(t, http.StatusServiceUnavailable, call(t, http.MethodGet, ops.URL+"/ready", "", nil))
	})
}
