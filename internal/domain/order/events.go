package order

import "time"

// OrderPlacedEvent is emitted after a checkout commits. It feeds the
// notifier; delivery is best-effort and never affects the order itself.
type OrderPlacedEvent struct {
	OrderID      string
	CustomerName string
	Phone        string
	TotalAmount  string
	OccurredAt   time.Time
}

func (OrderPlacedEvent) EventName() string { return "order.placed" }

func NewOrderPlacedEvent(o *Order) OrderPlacedEvent {
	return OrderPlacedEvent{
		OrderID:      o.ID,
		CustomerName: o.CustomerName,
		Phone:        o.Phone,
		TotalAmount:  o.TotalAmount.String(),
		OccurredAt:   time.Now().UTC(),
	}
}

// OrderConfirmedEvent is emitted when an admin confirms an order.
type OrderConfirmedEvent struct {
	OrderID    string
	OccurredAt time.Time
}

func (OrderConfirmedEvent) EventName() string { return "order.confirmed" }

func NewOrderConfirmedEvent(o *Order) OrderConfirmedEvent {
	return OrderConfirmedEvent{
		OrderID:    o.ID,
		OccurredAt: time.Now().UTC(),
	}
}
