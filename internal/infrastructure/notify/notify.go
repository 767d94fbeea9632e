package notify

import (
	"context"

	domorder "github.com/nillpakhi2003-droid/habib-furniture/internal/domain/order"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/observability"
)

// Notifier is the external collaborator that tells the shop owner about new
// orders. Implementations must be safe to fail: delivery failures never roll
// back an order.
type Notifier interface {
	OrderPlaced(ctx context.Context, e domorder.OrderPlacedEvent) error
	OrderConfirmed(ctx context.Context, e domorder.OrderConfirmedEvent) error
}

// LogNotifier records notifications in the structured log. It stands in for
// the real email/SMS integration in deployments that have none configured.
type LogNotifier struct {
	log observability.Logger
}

func NewLogNotifier(logger observability.Logger) *LogNotifier {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &LogNotifier{log: logger.With(observability.F("component", "notify"))}
}

func (n *LogNotifier) OrderPlaced(_ context.Context, e domorder.OrderPlacedEvent) error {
	n.log.Info("order_placed_notification",
		observability.F("order_id", e.OrderID),
		observability.F("customer", e.CustomerName),
		observability.F("total", e.TotalAmount),
	)
	return nil
}

func (n *LogNotifier) OrderConfirmed(_ context.Context, e domorder.OrderConfirmedEvent) error {
	n.log.Info("order_confirmed_notification", observability.F("order_id", e.OrderID))
	return nil
}
