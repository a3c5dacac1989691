package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-ops/internal/common/logger"
	"hospital-ops/internal/common/observability"
	"hospital-ops/internal/common/validation"
	"hospital-ops/internal/models"
	"hospital-ops/internal/services/notification"
	"hospital-ops/internal/services/notification/channels"
	"hospital-ops/internal/services/resource"
	"hospital-ops/internal/storage"
	"hospital-ops/pkg/registry"
)

type testEnv struct {
	router        http.Handler
	notifications *notification.Service
	resources     *resource.Service
}

func setupAPI(t *testing.T) *testEnv {
	t.Helper()
	log := logger.NewTestLogger(t)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := storage.NewRedisStore(client, time.Second)

	reg, err := registry.Default()
	require.NoError(t, err)
	validator, err := validation.NewValidator(reg)
	require.NoError(t, err)

	dispatcher := notification.NewDispatcher(channels.NewSet(channels.NewInAppSink(log)), 1, 8, time.Second, log, observability.Noop())
	t.Cleanup(func() { _ = dispatcher.Close(context.Background()) })

	notifications := notification.New(notification.Config{}, store, dispatcher, log)
	resources := resource.New(resource.Config{}, store, log)

	return &testEnv{
		router:        NewRouter(NewHandler(notifications, resources, validator, 30, log)),
		notifications: notifications,
		resources:     resources,
	}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

type errorBody struct {
	Error struct {
		Code     string                 `json:"code"`
		Metadata map[string]interface{} `json:"metadata"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var out errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestCreateNotification(t *testing.T) {
	env := setupAPI(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "valid",
			body:       `{"type":"system","title":"Maintenance","message":"Tonight 02:00","priority":"low","category":"system","deliveryChannels":["in-app"]}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing title",
			body:       `{"type":"system","message":"x","priority":"low","category":"system","deliveryChannels":["in-app"]}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "unknown channel",
			body:       `{"type":"system","title":"t","message":"x","priority":"low","category":"system","deliveryChannels":["pager"]}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "emergency metadata missing fields",
			body:       `{"type":"emergency","title":"t","message":"x","priority":"critical","category":"emergency","deliveryChannels":["in-app"],"metadata":{"hospital":"A"}}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "malformed json",
			body:       `{"type":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/notifications", tt.body)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, rec).Error.Code)
			}
		})
	}

	rec := env.do(t, http.MethodGet, "/notifications", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Notifications []models.Notification `json:"notifications"`
		UnreadCount   int                   `json:"unreadCount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Notifications, 1)
	assert.Equal(t, "Maintenance", list.Notifications[0].Title)
	assert.Equal(t, 1, list.UnreadCount)
}

func TestMarkAsRead(t *testing.T) {
	env := setupAPI(t)
	n := env.notifications.CreateAIInsight(context.Background(), notification.AIInsight{Title: "t", Insight: "i"})

	rec := env.do(t, http.MethodPost, "/notifications/"+n.ID+"/read", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, env.notifications.UnreadCount())

	rec = env.do(t, http.MethodPost, "/notifications/does-not-exist/read", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, rec).Error.Code)
}

func TestMarkAllAsRead(t *testing.T) {
	env := setupAPI(t)
	ctx := context.Background()
	env.notifications.CreateAIInsight(ctx, notification.AIInsight{Title: "a", Insight: "i"})
	env.notifications.CreateAIInsight(ctx, notification.AIInsight{Title: "b", Insight: "i"})

	rec := env.do(t, http.MethodPost, "/notifications/read-all", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, env.notifications.UnreadCount())
}

func TestClearOldNotifications(t *testing.T) {
	env := setupAPI(t)

	rec := env.do(t, http.MethodPost, "/notifications/cleanup?days=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.notifications.CreateAppointmentReminder(context.Background(), notification.AppointmentReminder{
		PatientName:     "P",
		Doctor:          "D",
		AppointmentTime: time.Now().Add(-time.Minute),
	})

	rec = env.do(t, http.MethodPost, "/notifications/cleanup", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"removed":1}`, rec.Body.String())
}

func TestAlerts(t *testing.T) {
	env := setupAPI(t)

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantType   models.NotificationType
	}{
		{"emergency", "/alerts/emergency", `{"hospital":"City General","alertType":"Fire","severity":"HIGH","description":"Smoke on 3F"}`, http.StatusCreated, models.TypeEmergency},
		{"emergency missing description", "/alerts/emergency", `{"hospital":"City General","alertType":"Fire","severity":"HIGH"}`, http.StatusBadRequest, ""},
		{"resource", "/alerts/resource", `{"hospital":"A","resource":"ICU Beds","available":2,"capacity":10}`, http.StatusCreated, models.TypeResourceUpdate},
		{"resource negative", "/alerts/resource", `{"hospital":"A","resource":"ICU Beds","available":-2,"capacity":10}`, http.StatusBadRequest, ""},
		{"appointment", "/alerts/appointment", `{"patientName":"P","doctor":"D","appointmentTime":"2099-01-02T10:00:00Z"}`, http.StatusCreated, models.TypeAppointment},
		{"appointment bad time", "/alerts/appointment", `{"patientName":"P","doctor":"D","appointmentTime":"tomorrow"}`, http.StatusBadRequest, ""},
		{"insight", "/alerts/insight", `{"title":"Demand","insight":"Rising","confidence":0.9}`, http.StatusCreated, models.TypeAIInsight},
		{"insight confidence out of range", "/alerts/insight", `{"title":"Demand","insight":"Rising","confidence":1.5}`, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, tt.path, tt.body)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus != http.StatusCreated {
				return
			}
			var n models.Notification
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &n))
			assert.Equal(t, tt.wantType, n.Type)
			assert.NotEmpty(t, n.ID)
		})
	}
}

func TestSettings(t *testing.T) {
	env := setupAPI(t)

	rec := env.do(t, http.MethodGet, "/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var settings models.NotificationSettings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &settings))
	assert.Equal(t, models.DefaultNotificationSettings(), settings)

	rec = env.do(t, http.MethodPatch, "/settings", `{"quietHours":{"enabled":true,"start":"23:00","end":"06:30","timezone":"Local"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &settings))
	assert.True(t, settings.QuietHours.Enabled)
	assert.Equal(t, "23:00", settings.QuietHours.Start)
	assert.True(t, settings.Channels[models.ChannelPush])

	rec = env.do(t, http.MethodPatch, "/settings", `{"quietHours":{"enabled":true,"start":"25:00","end":"06:30"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPatch, "/settings", `{"channels":{"fax":true}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddOrUpdateResource(t *testing.T) {
	env := setupAPI(t)

	rec := env.do(t, http.MethodPost, "/resources", `{"hospital":"City General","resourceType":"icu","quantity":5}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp resourceUpsertResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ICU Beds", resp.Resource.Resource)
	assert.Equal(t, "5/10", resp.Resource.Total)
	assert.Equal(t, models.TypeResourceUpdate, resp.Notification.Type)
	assert.Contains(t, resp.Notification.Message, "Available: 5/10")

	rec = env.do(t, http.MethodPost, "/resources", `{"hospital":"City General","resourceType":"ventilators","quantity":-3,"urgency":"high"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "0/3 (Requested)", resp.Resource.Total)
	assert.Equal(t, models.TypeResourceRequest, resp.Notification.Type)
	assert.Equal(t, models.PriorityHigh, resp.Notification.Priority)
	assert.Contains(t, resp.Notification.Message, "Quantity Needed: 3")

	rec = env.do(t, http.MethodPost, "/resources", `{"hospital":"City General","resourceType":"icu","quantity":1.5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/resources", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Resources []models.ResourceItem `json:"resources"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Resources, 2)
	assert.Equal(t, "Ventilators", list.Resources[0].Resource)

	assert.Len(t, env.notifications.Notifications(), 2)
}

func readEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()
	var event, data string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "":
			return event, data
		}
	}
}

func TestStreamNotifications(t *testing.T) {
	env := setupAPI(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/stream/notifications", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	event, data := readEvent(t, reader)
	assert.Equal(t, "notifications", event)
	assert.Equal(t, "[]", data)

	env.notifications.CreateAIInsight(context.Background(), notification.AIInsight{Title: "Streamed", Insight: "i"})

	event, data = readEvent(t, reader)
	assert.Equal(t, "notifications", event)
	var list []models.Notification
	require.NoError(t, json.Unmarshal([]byte(data), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Streamed", list[0].Title)
}

func TestStreamResources(t *testing.T) {
	env := setupAPI(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/stream/resources", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	_, data := readEvent(t, reader)
	assert.Equal(t, "[]", data)

	env.resources.AddOrUpdate(context.Background(), models.ResourceUpdate{Hospital: "A", ResourceType: "ppe", Quantity: 20})

	event, data := readEvent(t, reader)
	assert.Equal(t, "resources", event)
	assert.Contains(t, data, "PPE Kits")
}

func TestOpsRouter(t *testing.T) {
	ready := NewOpsRouter(NewHealthHandler(func(context.Context) error { return nil }))
	notReady := NewOpsRouter(NewHealthHandler(func(context.Context) error { return errors.New("redis down") }))

	tests := []struct {
		name   string
		router http.Handler
		path   string
		want   int
	}{
		{"health", notReady, "/health", http.StatusOK},
		{"ready", ready, "/ready", http.StatusOK},
		{"not ready", notReady, "/ready", http.StatusServiceUnavailable},
		{"metrics", ready, "/metrics", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
