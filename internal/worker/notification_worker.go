package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/reimbursement-service/internal/events"
	"github.com/spec-kit/reimbursement-service/internal/service"
)

const defaultQueueSize = 256

type job struct {
	handler events.EventHandler
	event   events.Event
}

// NotificationWorker runs notification handlers on a background goroutine so
// publishing never waits on delivery.
type NotificationWorker struct {
	queue   chan job
	logger  *zap.Logger
	wg      sync.WaitGroup
	mu      sync.RWMutex
	stopped bool
}

// NewNotificationWorker creates a worker with a bounded queue.
func NewNotificationWorker(logger *zap.Logger, queueSize int) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &NotificationWorker{queue: make(chan job, queueSize), logger: logger}
}

// Wrap returns a handler that enqueues the event for h. When the queue is full,
// or the worker has been stopped, the event is dropped and logged.
func (w *NotificationWorker) Wrap(h events.EventHandler) events.EventHandler {
	return func(_ context.Context, event events.Event) error {
		w.mu.RLock()
		defer w.mu.RUnlock()
		if w.stopped {
			w.logger.Warn("notification worker stopped; dropping event",
				zap.String("event_type", string(event.Type)),
				zap.String("event_id", event.ID))
			return nil
		}
		select {
		case w.queue <- job{handler: h, event: event}:
		default:
			w.logger.Warn("notification queue full; dropping event",
				zap.String("event_type", string(event.Type)),
				zap.String("event_id", event.ID))
		}
		return nil
	}
}

// Start processes queued events until Stop is called.
func (w *NotificationWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for j := range w.queue {
			if err := j.handler(ctx, j.event); err != nil {
				w.logger.Warn("notification handler failed",
					zap.String("event_type", string(j.event.Type)),
					zap.Error(err))
			}
		}
	}()
}

// Stop closes the queue and waits for queued events to be handled. Events
// published through wrapped handlers afterwards are dropped.
func (w *NotificationWorker) Stop() {
	w.mu.Lock()
	if !w.stopped {
		w.stopped = true
		close(w.queue)
	}
	w.mu.Unlock()
	w.wg.Wait()
}

// StartNotificationWorker registers notification handlers behind a running worker.
func StartNotificationWorker(ctx context.Context, notificationService *service.NotificationService, logger *zap.Logger) *NotificationWorker {
	w := NewNotificationWorker(logger, defaultQueueSize)
	if notificationService == nil {
		return w
	}
	notificationService.RegisterHandlers(w.Wrap)
	w.Start(ctx)
	return w
}
