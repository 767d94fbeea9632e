package payment

import "errors"

var (
	ErrUnknownMethod = errors.New("payment: unknown method")
	ErrUnknownStatus = errors.New("payment: unknown status")
)

// Method is how the customer pays for an order.
type Method string

const (
	MethodCashOnDelivery Method = "CASH_ON_DELIVERY"
	MethodBkash          Method = "BKASH"
	MethodNagad          Method = "NAGAD"
)

// Status tracks whether the order has been paid for.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusPaid    Status = "PAID"
	StatusFailed  Status = "FAILED"
)

// ParseMethod validates a wire value. An empty value defaults to cash on
// delivery, matching the storefront checkout form.
func ParseMethod(v string) (Method, error) {
	switch Method(v) {
	case MethodCashOnDelivery, MethodBkash, MethodNagad:
		return Method(v), nil
	case "":
		return MethodCashOnDelivery, nil
	default:
		return "", ErrUnknownMethod
	}
}

// RequiresWalletPhone reports whether the method needs the customer's mobile
// wallet number alongside the order.
func (m Method) RequiresWalletPhone() bool {
	return m == MethodBkash || m == MethodNagad
}

// ValidStatus reports whether v is a known payment status.
func ValidStatus(v string) bool {
	switch Status(v) {
	case StatusPending, StatusPaid, StatusFailed:
		return true
	default:
		return false
	}
}
