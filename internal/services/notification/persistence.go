package notification

import (
	"context"

	apperrors "hospital-ops/internal/common/errors"
	"hospital-ops/internal/common/metrics"
	"hospital-ops/internal/models"
	"hospital-ops/internal/storage"
)

// Load restores settings and the notification log from the store. Missing
// or unreadable state falls back to defaults and an empty log. Expired and
// out-of-retention notifications are dropped, and the pruned log is written
// back if anything was removed. Listeners receive the restored log.
func (s *Service) Load(ctx context.Context) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	settings := s.loadSettings(ctx)
	stored := s.loadNotifications(ctx)
	kept, removed := prune(stored, s.now(), s.cfg.RetentionDays)

	s.mu.Lock()
	s.settings = settings
	s.notifications = kept
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if removed > 0 {
		s.logger.Info("pruned stale notifications on load", map[string]interface{}{
			"removed": removed,
			"kept":    len(kept),
		})
		s.saveNotifications(ctx, snapshot)
	}
	s.listeners.Broadcast(snapshot)
}

func (s *Service) loadSettings(ctx context.Context) models.NotificationSettings {
	defaults := models.DefaultNotificationSettings()

	var stored models.SettingsPatch
	found, err := storage.LoadJSON(ctx, s.store, s.cfg.SettingsKey, &stored)
	if err != nil {
		s.logger.Warn("discarding stored settings", map[string]interface{}{
			"error": apperrors.NewStateCorruptError(s.cfg.SettingsKey, err),
		})
		return defaults
	}
	if !found {
		return defaults
	}
	return stored.Apply(defaults)
}

func (s *Service) loadNotifications(ctx context.Context) []models.Notification {
	var stored []models.Notification
	_, err := storage.LoadJSON(ctx, s.store, s.cfg.NotificationsKey, &stored)
	if err != nil {
		s.logger.Warn("discarding stored notifications", map[string]interface{}{
			"error": apperrors.NewStateCorruptError(s.cfg.NotificationsKey, err),
		})
		return nil
	}
	return stored
}

// saveNotifications is lossy: a failed write is logged and counted, and
// the in-memory log stays authoritative.
func (s *Service) saveNotifications(ctx context.Context, list []models.Notification) {
	s.save(ctx, s.cfg.NotificationsKey, list)
}

func (s *Service) saveSettings(ctx context.Context, settings models.NotificationSettings) {
	s.save(ctx, s.cfg.SettingsKey, settings)
}

func (s *Service) save(ctx context.Context, key string, v interface{}) {
	if err := storage.SaveJSON(context.WithoutCancel(ctx), s.store, key, v); err != nil {
		metrics.PersistenceFailures.WithLabelValues(key).Inc()
		s.logger.Error("failed to persist state", map[string]interface{}{
			"error": apperrors.NewPersistenceFailedError(key, err),
		})
	}
}
