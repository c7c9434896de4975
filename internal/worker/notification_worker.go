package worker

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/nexiq/storefront-api/internal/events"
)

// ErrQueueFull is returned by Publish when the buffer has no room left.
var ErrQueueFull = errors.New("notification queue full")

// ErrStopped is returned by Publish after Stop.
var ErrStopped = errors.New("notification worker stopped")

type queuedEvent struct {
	ctx   context.Context
	event events.Event
}

// NotificationWorker moves event delivery off the request goroutine. It
// implements events.Dispatcher: Publish enqueues and a single goroutine
// delivers to the wrapped dispatcher in publish order.
type NotificationWorker struct {
	inner  events.Dispatcher
	logger *zap.Logger
	queue  chan queuedEvent

	mu      sync.RWMutex
	stopped bool
	done    chan struct{}
	start   sync.Once
}

// NewNotificationWorker wraps inner with a queue of the given size.
func NewNotificationWorker(inner events.Dispatcher, logger *zap.Logger, buffer int) *NotificationWorker {
	if buffer <= 0 {
		buffer = 256
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationWorker{
		inner:  inner,
		logger: logger,
		queue:  make(chan queuedEvent, buffer),
		done:   make(chan struct{}),
	}
}

// Subscribe registers handler on the wrapped dispatcher.
func (w *NotificationWorker) Subscribe(eventType events.EventType, handler events.EventHandler) {
	w.inner.Subscribe(eventType, handler)
}

// Publish enqueues event without waiting for its handlers.
func (w *NotificationWorker) Publish(ctx context.Context, event events.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return ErrStopped
	}
	select {
	case w.queue <- queuedEvent{ctx: context.WithoutCancel(ctx), event: event}:
		return nil
	default:
		w.logger.Warn("dropping event, queue full", zap.String("event_type", string(event.Type)), zap.String("subject", event.Subject))
		return ErrQueueFull
	}
}

// Start launches the delivery goroutine. Calling it more than once is a no-op.
func (w *NotificationWorker) Start() {
	w.start.Do(func() {
		go w.run()
	})
}

func (w *NotificationWorker) run() {
	defer close(w.done)
	for item := range w.queue {
		if err := w.inner.Publish(item.ctx, item.event); err != nil {
			w.logger.Warn("notification handler failed",
				zap.String("event_type", string(item.event.Type)),
				zap.String("subject", item.event.Subject),
				zap.Error(err))
		}
	}
}

// Stop rejects new events and waits until queued ones are delivered or ctx ends.
func (w *NotificationWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.stopped {
		w.stopped = true
		close(w.queue)
	}
	w.mu.Unlock()

	w.Start()
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
