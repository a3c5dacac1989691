// Package resource keeps the hospital resource inventory: one row per
// (hospital, resource) pair, merged from supply and request updates.
package resource

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "hospital-ops/internal/common/errors"
	"hospital-ops/internal/common/logger"
	"hospital-ops/internal/common/metrics"
	"hospital-ops/internal/common/observer"
	"hospital-ops/internal/models"
	"hospital-ops/internal/storage"
)

type Service struct {
	cfg    Config
	store  storage.Store
	logger logger.Logger
	now    func() time.Time

	opMu sync.Mutex

	mu    sync.RWMutex
	items []models.ResourceItem

	listeners observer.Registry[[]models.ResourceItem]
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(cfg Config, store storage.Store, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		cfg:    cfg.withDefaults(),
		store:  store,
		logger: logger.ForComponent(log, "resource-service"),
		now:    time.Now,
		items:  []models.ResourceItem{},
	}
	s.listeners.Clone = slices.Clone[[]models.ResourceItem]
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddOrUpdate merges u into the inventory and returns the affected row.
// A negative quantity records a need; zero or positive adds supply.
// Listeners receive the full list before AddOrUpdate returns.
func (s *Service) AddOrUpdate(ctx context.Context, u models.ResourceUpdate) models.ResourceItem {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	res := merge(s.items, u, s.cfg.Thresholds, s.now(), newID)
	s.items = res.items
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	branch := "supply"
	if u.IsRequest() {
		branch = "request"
	}
	created := "false"
	if res.created {
		created = "true"
	}
	metrics.ResourceUpserts.WithLabelValues(branch, created).Inc()

	s.logger.Info("resource updated", map[string]interface{}{
		"hospital": res.item.Hospital,
		"resource": res.item.Resource,
		"branch":   branch,
		"created":  res.created,
		"total":    res.item.Total,
		"status":   res.item.Status,
	})

	s.save(ctx, snapshot)
	s.listeners.Broadcast(snapshot)
	return res.item
}

// Resources returns a copy of the inventory, newest rows first.
func (s *Service) Resources() []models.ResourceItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Service) Subscribe(fn func([]models.ResourceItem)) (unsubscribe func()) {
	remove := s.listeners.Subscribe(fn)
	gauge := metrics.Subscribers.WithLabelValues("resources")
	gauge.Inc()

	var once sync.Once
	return func() {
		once.Do(func() {
			remove()
			gauge.Dec()
		})
	}
}

// Load restores the inventory. Unreadable state is logged and replaced
// with an empty list.
func (s *Service) Load(ctx context.Context) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	var stored []models.ResourceItem
	if _, err := storage.LoadJSON(ctx, s.store, s.cfg.Key, &stored); err != nil {
		s.logger.Warn("discarding stored resources", map[string]interface{}{
			"error": apperrors.NewStateCorruptError(s.cfg.Key, err),
		})
		stored = nil
	}

	s.mu.Lock()
	s.items = append([]models.ResourceItem{}, stored...)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.listeners.Broadcast(snapshot)
}

func (s *Service) save(ctx context.Context, items []models.ResourceItem) {
	if err := storage.SaveJSON(context.WithoutCancel(ctx), s.store, s.cfg.Key, items); err != nil {
		metrics.PersistenceFailures.WithLabelValues(s.cfg.Key).Inc()
		s.logger.Error("failed to persist resources", map[string]interface{}{
			"error": apperrors.NewPersistenceFailedError(s.cfg.Key, err),
		})
	}
}

func (s *Service) snapshotLocked() []models.ResourceItem {
	out := make([]models.ResourceItem, len(s.items))
	copy(out, s.items)
	return out
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
