package notify

import (
	"context"
	"fmt"

	domorder "github.com/nillpakhi2003-droid/habib-furniture/internal/domain/order"
	domoutbox "github.com/nillpakhi2003-droid/habib-furniture/internal/domain/outbox"
)

// Worker bridges order events from the bus to a Notifier.
type Worker struct {
	subscriber domoutbox.Subscriber
	notifier   Notifier
}

func NewWorker(subscriber domoutbox.Subscriber, notifier Notifier) *Worker {
	return &Worker{subscriber: subscriber, notifier: notifier}
}

func (w *Worker) Start() {
	if w.subscriber == nil || w.notifier == nil {
		return
	}
	w.subscriber.Subscribe(domorder.OrderPlacedEvent{}.EventName(), w.handleOrderPlaced)
	w.subscriber.Subscribe(domorder.OrderConfirmedEvent{}.EventName(), w.handleOrderConfirmed)
}

func (w *Worker) handleOrderPlaced(ctx context.Context, e domoutbox.Event) error {
	evt, ok := e.(domorder.OrderPlacedEvent)
	if !ok {
		return nil
	}
	if err := w.notifier.OrderPlaced(ctx, evt); err != nil {
		return fmt.Errorf("notify worker: order placed: %w", err)
	}
	return nil
}

func (w *Worker) handleOrderConfirmed(ctx context.Context, e domoutbox.Event) error {
	evt, ok := e.(domorder.OrderConfirmedEvent)
	if !ok {
		return nil
	}
	if err := w.notifier.OrderConfirmed(ctx, evt); err != nil {
		return fmt.Errorf("notify worker: order confirmed: %w", err)
	}
	return nil
}
