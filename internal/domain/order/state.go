package order

// orderState implements the state pattern for order lifecycle transitions.
type orderState interface {
	OnConfirm() (Status, error)
	OnDeliver() (Status, error)
	OnCancel() (Status, error)
}

func stateFor(s Status) orderState {
	switch s {
	case StatusConfirmed:
		return confirmedState{}
	case StatusDelivered:
		return deliveredState{}
	case StatusCancelled:
		return cancelledState{}
	default:
		return pendingState{}
	}
}

type pendingState struct{}

func (pendingState) OnConfirm() (Status, error) { return StatusConfirmed, nil }
func (pendingState) OnDeliver() (Status, error) { return "", ErrInvalidStateTransition }
func (pendingState) OnCancel() (Status, error)  { return StatusCancelled, nil }

type confirmedState struct{}

// OnConfirm returns the current status unchanged: confirmation is idempotent.
func (confirmedState) OnConfirm() (Status, error) { return StatusConfirmed, nil }
func (confirmedState) OnDeliver() (Status, error) { return StatusDelivered, nil }
func (confirmedState) OnCancel() (Status, error)  { return StatusCancelled, nil }

type deliveredState struct{}

func (deliveredState) OnConfirm() (Status, error) { return "", ErrInvalidStateTransition }
func (deliveredState) OnDeliver() (Status, error) { return StatusDelivered, nil }
func (deliveredState) OnCancel() (Status, error)  { return "", ErrInvalidStateTransition }

type cancelledState struct{}

func (cancelledState) OnConfirm() (Status, error) { return "", ErrInvalidStateTransition }
func (cancelledState) OnDeliver() (Status, error) { return "", ErrInvalidStateTransition }

// OnCancel rejects a repeat cancellation: the first one already returned the
// reserved stock, so running it again would restore stock twice.
func (cancelledState) OnCancel() (Status, error) { return "", ErrInvalidStateTransition }
