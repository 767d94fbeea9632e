package outbox

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"

	domoutbox "github.com/nillpakhi2003-droid/habib-furniture/internal/domain/outbox"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/observability"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/observability/logctx"
)

const componentOutbox = "outbox"

// ErrStopped is returned by Publish after Stop.
var ErrStopped = errors.New("outbox: bus stopped")

// Bus is an in-memory event bus used for fire-and-forget fanout: checkout
// publishes order events, the notifier consumes them. It is not durable; a
// true outbox would persist events and dispatch from a worker.
type Bus struct {
	mu        sync.RWMutex
	subs      map[string][]domoutbox.Handler
	stopped   bool
	queue     chan domoutbox.Event
	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	log       observability.Logger
}

func NewBus(logger observability.Logger) *Bus {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Bus{
		subs:  make(map[string][]domoutbox.Handler),
		queue: make(chan domoutbox.Event, 1024),
		log:   logger.With(observability.F("component", componentOutbox)),
	}
}

func (b *Bus) Subscribe(eventName string, h domoutbox.Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[eventName] = append(b.subs[eventName], h)
}

func (b *Bus) Start(ctx context.Context) {
	b.startOnce.Do(func() {
		bg, cancel := context.WithCancel(ctx)
		b.cancel = cancel
		go b.dispatchLoop(bg)
		b.log.Info("event_bus_started")
	})
}

// Stop flips the bus into a stopped state and cancels the dispatch loop.
// The queue is never closed: a Publish racing with Stop drops the event
// instead of panicking on a closed channel.
func (b *Bus) Stop(ctx context.Context) {
	b.stopOnce.Do(func() {
		b.mu.Lock()
		b.stopped = true
		b.mu.Unlock()
		if b.cancel != nil {
			b.cancel()
		}
		logctx.FromOr(ctx, b.log).Info("event_bus_stopped")
	})
}

func (b *Bus) Publish(ctx context.Context, e domoutbox.Event) error {
	if e == nil {
		return nil
	}
	b.mu.RLock()
	stopped := b.stopped
	b.mu.RUnlock()
	if stopped {
		return ErrStopped
	}
	select {
	case b.queue <- e:
		return nil
	case <-ctx.Done():
		b.log.Warn("event_enqueue_aborted",
			observability.F("event", e.EventName()),
			observability.F("error", ctx.Err()),
		)
		return ctx.Err()
	}
}

func (b *Bus) dispatchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-b.queue:
			b.fanout(ctx, e)
		}
	}
}

func (b *Bus) fanout(ctx context.Context, e domoutbox.Event) {
	name := e.EventName()

	b.mu.RLock()
	handlers := append([]domoutbox.Handler(nil), b.subs[name]...)
	b.mu.RUnlock()

	if len(handlers) == 0 {
		b.log.Debug("event_dropped_no_subscriber", observability.F("event", name))
		return
	}

	// Handlers must not be cancelled by the publisher's request ending.
	ctx = context.WithoutCancel(ctx)

	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.log.Error("event_handler_panic",
						observability.F("event", name),
						observability.F("panic", r),
						observability.F("stack", string(debug.Stack())),
					)
				}
			}()
			if err := h(ctx, e); err != nil {
				b.log.Warn("event_handler_error",
					observability.F("event", name),
					observability.F("error", err.Error()),
				)
			}
		}()
	}
}
