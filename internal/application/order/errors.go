package order

import (
	"errors"
	"fmt"

	"github.com/nillpakhi2003-droid/habib-furniture/internal/domain/catalog"
	domain "github.com/nillpakhi2003-droid/habib-furniture/internal/domain/order"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/domain/payment"
)

var (
	ErrProductNotFound   = errors.New("order: product not found")
	ErrOutOfStock        = errors.New("order: out of stock")
	ErrInsufficientStock = errors.New("order: not enough stock")
	ErrInvalidPrice      = errors.New("order: invalid price")
	ErrRateLimited       = errors.New("order: rate limited")
	// ErrTransactionFailed is the generic fallback for unexpected storage
	// errors; the detail is logged, never surfaced.
	ErrTransactionFailed = errors.New("order: transaction failed")
)

// RateLimitedError carries the retry-after hint alongside ErrRateLimited.
type RateLimitedError struct {
	RetryAfter int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("order: rate limited, retry in %ds", e.RetryAfter)
}

func (e *RateLimitedError) Is(target error) bool { return target == ErrRateLimited }

// Error codes returned across the external boundary.
const (
	CodeProductNotFound      = "PRODUCT_NOT_FOUND"
	CodeOutOfStock           = "OUT_OF_STOCK"
	CodeInsufficientStock    = "INSUFFICIENT_STOCK"
	CodeInvalidInput         = "INVALID_INPUT"
	CodeInvalidPrice         = "INVALID_PRICE"
	CodePaymentPhoneRequired = "PAYMENT_PHONE_REQUIRED"
	CodeRateLimited          = "RATE_LIMITED"
	CodeTransactionFailed    = "TRANSACTION_FAILED"
)

// Code collapses an error into the external taxonomy. Anything unrecognized
// maps to TRANSACTION_FAILED.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrProductNotFound), errors.Is(err, catalog.ErrNotFound):
		return CodeProductNotFound
	case errors.Is(err, ErrOutOfStock):
		return CodeOutOfStock
	case errors.Is(err, ErrInsufficientStock), errors.Is(err, catalog.ErrInsufficientStock):
		return CodeInsufficientStock
	case errors.Is(err, ErrInvalidPrice):
		return CodeInvalidPrice
	case errors.Is(err, domain.ErrPaymentPhoneRequired):
		return CodePaymentPhoneRequired
	case errors.Is(err, ErrRateLimited):
		return CodeRateLimited
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidCustomerName),
		errors.Is(err, domain.ErrInvalidPhone),
		errors.Is(err, domain.ErrInvalidAddress),
		errors.Is(err, domain.ErrInvalidDeliveryCharge),
		errors.Is(err, payment.ErrUnknownMethod),
		errors.Is(err, payment.ErrUnknownStatus):
		return CodeInvalidInput
	default:
		return CodeTransactionFailed
	}
}
