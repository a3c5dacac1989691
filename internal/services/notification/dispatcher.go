package notification

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "hospital-ops/internal/common/errors"
	"hospital-ops/internal/common/logger"
	"hospital-ops/internal/common/metrics"
	"hospital-ops/internal/common/observability"
	"hospital-ops/internal/models"
	"hospital-ops/internal/services/notification/channels"
)

const (
	modePooled   = "pooled"
	modeOverflow = "overflow"
)

type task struct {
	n        models.Notification
	channels []models.Channel
}

// Dispatcher fans notifications out to channel sinks on a bounded worker
// pool. Dispatch never blocks: when the queue is full the task runs on its
// own goroutine. Send errors are logged and counted, never returned.
type Dispatcher struct {
	sinks   channels.Set
	timeout time.Duration
	logger  logger.Logger
	obs     *observability.Observability

	queue    chan task
	workers  sync.WaitGroup
	overflow sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(sinks channels.Set, workers, queueSize int, timeout time.Duration, log logger.Logger, obs *observability.Observability) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	d := &Dispatcher{
		sinks:   sinks,
		timeout: timeout,
		logger:  logger.ForComponent(log, "dispatcher"),
		obs:     obs,
		queue:   make(chan task, queueSize),
	}

	d.workers.Add(workers)
	for i := 0; i < workers; i++ {
		go d.work()
	}
	return d
}

// Dispatch schedules delivery of n to chs and returns immediately.
func (d *Dispatcher) Dispatch(n models.Notification, chs []models.Channel) {
	if len(chs) == 0 {
		return
	}
	t := task{n: n, channels: append([]models.Channel(nil), chs...)}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.Warn("dispatcher closed, dropping delivery", map[string]interface{}{
			"notificationId": n.ID,
		})
		for _, ch := range chs {
			metrics.DeliveriesTotal.WithLabelValues(string(ch), metrics.StatusSkipped).Inc()
		}
		return
	}

	select {
	case d.queue <- t:
		metrics.DispatchQueueDepth.Inc()
	default:
		d.overflow.Add(1)
		go func() {
			defer d.overflow.Done()
			d.run(t, modeOverflow)
		}()
	}
}

func (d *Dispatcher) work() {
	defer d.workers.Done()
	for t := range d.queue {
		metrics.DispatchQueueDepth.Dec()
		d.run(t, modePooled)
	}
}

// run sends to every channel concurrently; one channel's failure does
// not affect the others.
func (d *Dispatcher) run(t task, mode string) {
	start := time.Now()
	var failed atomic.Int32
	var g errgroup.Group

	for _, ch := range t.channels {
		sink, ok := d.sinks[ch]
		if !ok {
			d.logger.Warn("no sink for channel", map[string]interface{}{
				"notificationId": t.n.ID,
				"error":          apperrors.NewChannelUnavailableError(string(ch)),
			})
			metrics.DeliveriesTotal.WithLabelValues(string(ch), metrics.StatusSkipped).Inc()
			continue
		}
		g.Go(func() error {
			if err := d.send(sink, t.n); err != nil {
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	d.obs.RecordTask(context.Background(), mode, len(t.channels), time.Since(start), int(failed.Load()))
}

func (d *Dispatcher) send(sink channels.Sink, n models.Notification) (err error) {
	ch := string(sink.Channel())
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink panic: %v", r)
		}
		metrics.DeliveryDuration.WithLabelValues(ch).Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.DeliveriesTotal.WithLabelValues(ch, metrics.StatusFailed).Inc()
			d.logger.Error("channel delivery failed", map[string]interface{}{
				"notificationId": n.ID,
				"error":          apperrors.NewDeliveryFailedError(ch, err),
			})
			return
		}
		metrics.DeliveriesTotal.WithLabelValues(ch, metrics.StatusSent).Inc()
	}()

	return sink.Send(ctx, n)
}

// Close stops accepting work and waits for queued and in-flight deliveries
// until ctx is done.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.workers.Wait()
		d.overflow.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain dispatcher: %w", ctx.Err())
	}
}
