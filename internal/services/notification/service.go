// Package notification owns the in-app notification log, the per-instance
// delivery settings and the policy deciding which notifications are fanned
// out to push, email and SMS.
package notification

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"hospital-ops/internal/common/logger"
	"hospital-ops/internal/common/metrics"
	"hospital-ops/internal/common/observer"
	"hospital-ops/internal/models"
	"hospital-ops/internal/storage"
)

// Deliverer schedules asynchronous channel delivery.
type Deliverer interface {
	Dispatch(n models.Notification, chs []models.Channel)
}

// Service is the single authoritative notification log for a process.
// Listeners run synchronously inside mutating calls and may call the read
// methods, but must not call mutating ones.
type Service struct {
	cfg       Config
	store     storage.Store
	deliverer Deliverer
	logger    logger.Logger
	now       func() time.Time

	// opMu serialises mutate, broadcast and persist so listeners and the
	// store observe mutations in call order.
	opMu sync.Mutex

	mu            sync.RWMutex
	notifications []models.Notification
	settings      models.NotificationSettings

	listeners observer.Registry[[]models.Notification]
}

type Option func(*Service)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New returns a service with default settings and an empty log. Call Load
// to restore persisted state.
func New(cfg Config, store storage.Store, deliverer Deliverer, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		cfg:       cfg.withDefaults(),
		store:     store,
		deliverer: deliverer,
		logger:    logger.ForComponent(log, "notification-service"),
		now:       time.Now,
		settings:  models.DefaultNotificationSettings(),
	}
	s.listeners.Clone = slices.Clone[[]models.Notification]
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create assigns an ID and timestamp to draft. If the draft targets the
// in-app channel the notification is prepended to the log and every
// listener sees it before Create returns. Channel delivery is scheduled
// asynchronously when policy allows; its outcome is only logged.
func (s *Service) Create(ctx context.Context, draft models.NotificationDraft) models.Notification {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	n := models.Notification{
		ID:               newID(),
		Type:             draft.Type,
		Title:            draft.Title,
		Message:          draft.Message,
		Priority:         draft.Priority,
		Category:         draft.Category,
		DeliveryChannels: append([]models.Channel(nil), draft.DeliveryChannels...),
		Timestamp:        s.now(),
		ExpiresAt:        draft.ExpiresAt,
		Metadata:         maps.Clone(draft.Metadata),
		ActionURL:        draft.ActionURL,
	}
	metrics.NotificationsCreated.WithLabelValues(string(n.Category), string(n.Priority)).Inc()

	if n.HasChannel(models.ChannelInApp) {
		s.mu.Lock()
		s.notifications = append([]models.Notification{n}, s.notifications...)
		snapshot := s.snapshotLocked()
		s.mu.Unlock()

		s.listeners.Broadcast(snapshot)
		s.saveNotifications(ctx, snapshot)
	}

	settings := s.Settings()
	if !ShouldSend(n, settings, s.now()) {
		metrics.NotificationsSuppressed.WithLabelValues(string(n.Category)).Inc()
		s.logger.Debug("notification suppressed by delivery policy", map[string]interface{}{
			"notificationId": n.ID,
			"category":       n.Category,
			"priority":       n.Priority,
		})
		return n
	}
	if s.deliverer != nil {
		s.deliverer.Dispatch(n, EnabledChannels(n, settings))
	}
	return n
}

// Notifications returns a copy of the log, newest first.
func (s *Service) Notifications() []models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Service) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, n := range s.notifications {
		if !n.IsRead {
			count++
		}
	}
	return count
}

// MarkAsRead reports false when no notification has the given id; the
// log is then left untouched and nothing is broadcast.
func (s *Service) MarkAsRead(ctx context.Context, id string) bool {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	found := false
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].IsRead = true
			found = true
			break
		}
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if !found {
		return false
	}
	s.saveNotifications(ctx, snapshot)
	s.listeners.Broadcast(snapshot)
	return true
}

// MarkAllAsRead broadcasts exactly once.
func (s *Service) MarkAllAsRead(ctx context.Context) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	for i := range s.notifications {
		s.notifications[i].IsRead = true
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.saveNotifications(ctx, snapshot)
	s.listeners.Broadcast(snapshot)
}

// Settings returns a copy of the current delivery settings.
func (s *Service) Settings() models.NotificationSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Clone()
}

// UpdateSettings shallow-merges patch into the settings and persists them.
func (s *Service) UpdateSettings(ctx context.Context, patch models.SettingsPatch) models.NotificationSettings {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	s.settings = patch.Apply(s.settings)
	updated := s.settings.Clone()
	s.mu.Unlock()

	s.saveSettings(ctx, updated)
	return updated
}

// ClearOldNotifications drops expired notifications and those older than
// daysToKeep days, then persists and broadcasts. It returns the number
// removed.
func (s *Service) ClearOldNotifications(ctx context.Context, daysToKeep int) int {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	kept, removed := prune(s.notifications, s.now(), daysToKeep)
	s.notifications = kept
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.saveNotifications(ctx, snapshot)
	s.listeners.Broadcast(snapshot)

	if removed > 0 {
		s.logger.Info("cleared old notifications", map[string]interface{}{
			"removed":    removed,
			"daysToKeep": daysToKeep,
		})
	}
	return removed
}

// Subscribe registers fn for the full list on every mutation. The
// returned function unregisters it and may be called more than once.
func (s *Service) Subscribe(fn func([]models.Notification)) (unsubscribe func()) {
	remove := s.listeners.Subscribe(fn)
	gauge := metrics.Subscribers.WithLabelValues("notifications")
	gauge.Inc()

	var once sync.Once
	return func() {
		once.Do(func() {
			remove()
			gauge.Dec()
		})
	}
}

func (s *Service) snapshotLocked() []models.Notification {
	out := make([]models.Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

// prune keeps notifications that have not expired and are no older than
// days before now.
func prune(list []models.Notification, now time.Time, days int) ([]models.Notification, int) {
	cutoff := now.Add(-time.Duration(days) * 24 * time.Hour)
	kept := make([]models.Notification, 0, len(list))
	for _, n := range list {
		if n.Expired(now) || n.Timestamp.Before(cutoff) {
			continue
		}
		kept = append(kept, n)
	}
	return kept, len(list) - len(kept)
}

// newID returns a time-ordered UUID so IDs sort in creation order.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
