package order

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nillpakhi2003-droid/habib-furniture/internal/domain/payment"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound               = errors.New("order: not found")
	ErrInvalidQuantity        = errors.New("order: quantity must be between 1 and 1000")
	ErrInvalidCustomerName    = errors.New("order: customer name must be 2-100 characters")
	ErrInvalidPhone           = errors.New("order: phone must be a valid 01XXXXXXXXX number")
	ErrInvalidAddress         = errors.New("order: address must be 10-500 characters")
	ErrInvalidDeliveryCharge  = errors.New("order: delivery charge cannot be negative")
	ErrPaymentPhoneRequired   = errors.New("order: wallet payments require a payment phone")
	ErrInvalidStateTransition = errors.New("order: invalid status transition")
)

const (
	MinQuantity = 1
	MaxQuantity = 1000
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

// ValidStatus reports whether v is a known order status.
func ValidStatus(v string) bool {
	switch Status(v) {
	case StatusPending, StatusConfirmed, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// Item is one order line. PriceSnapshot is the unit price at order time and
// never follows later catalog price edits.
type Item struct {
	ID            string
	OrderID       string
	ProductID     string
	Quantity      int
	PriceSnapshot decimal.Decimal
}

type Order struct {
	ID             string
	CustomerName   string
	Phone          string
	Address        string
	PaymentMethod  payment.Method
	PaymentStatus  payment.Status
	PaymentPhone   string
	TransactionID  string
	DeliveryCharge decimal.Decimal
	TotalAmount    decimal.Decimal
	Status         Status
	Items          []Item
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewInput carries the validated checkout fields into the order constructor.
type NewInput struct {
	ID             string
	CustomerName   string
	Phone          string
	Address        string
	PaymentMethod  payment.Method
	PaymentPhone   string
	TransactionID  string
	DeliveryCharge decimal.Decimal
	Items          []Item
}

var phonePattern = regexp.MustCompile(`^01[0-9]{9}$`)
var nonDigits = regexp.MustCompile(`[^0-9]`)

// NormalizePhone strips everything but digits from a phone value.
func NormalizePhone(phone string) string {
	return nonDigits.ReplaceAllString(phone, "")
}

// ValidPhone reports whether phone (after normalization) is an 11-digit local
// mobile number with the 01 prefix.
func ValidPhone(phone string) bool {
	return phonePattern.MatchString(NormalizePhone(phone))
}

// New validates the order invariants and builds a pending order. TotalAmount
// is fixed here as the sum of item snapshots plus the delivery charge and is
// never recomputed afterwards.
func New(in NewInput) (*Order, error) {
	name := strings.TrimSpace(in.CustomerName)
	if n := utf8.RuneCountInString(name); n < 2 || n > 100 {
		return nil, ErrInvalidCustomerName
	}
	phone := NormalizePhone(in.Phone)
	if !phonePattern.MatchString(phone) {
		return nil, ErrInvalidPhone
	}
	address := strings.TrimSpace(in.Address)
	if n := utf8.RuneCountInString(address); n < 10 || n > 500 {
		return nil, ErrInvalidAddress
	}
	if in.DeliveryCharge.IsNegative() {
		return nil, ErrInvalidDeliveryCharge
	}
	if in.PaymentMethod.RequiresWalletPhone() && strings.TrimSpace(in.PaymentPhone) == "" {
		return nil, ErrPaymentPhoneRequired
	}
	if len(in.Items) == 0 {
		return nil, ErrInvalidQuantity
	}

	total := in.DeliveryCharge
	for _, item := range in.Items {
		if item.Quantity < MinQuantity || item.Quantity > MaxQuantity {
			return nil, ErrInvalidQuantity
		}
		total = total.Add(item.PriceSnapshot.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	now := time.Now().UTC()
	return &Order{
		ID:             in.ID,
		CustomerName:   name,
		Phone:          phone,
		Address:        address,
		PaymentMethod:  in.PaymentMethod,
		PaymentStatus:  payment.StatusPending,
		PaymentPhone:   strings.TrimSpace(in.PaymentPhone),
		TransactionID:  strings.TrimSpace(in.TransactionID),
		DeliveryCharge: in.DeliveryCharge,
		TotalAmount:    total,
		Status:         StatusPending,
		Items:          in.Items,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Confirm moves a pending order to confirmed. Confirming an already confirmed
// order is a no-op so that repeated admin clicks stay harmless.
func (o *Order) Confirm() (changed bool, err error) {
	next, err := stateFor(o.Status).OnConfirm()
	if err != nil {
		return false, err
	}
	if next == o.Status {
		return false, nil
	}
	o.Status = next
	o.touch()
	return true, nil
}

// Deliver moves a confirmed order to delivered.
func (o *Order) Deliver() error {
	next, err := stateFor(o.Status).OnDeliver()
	if err != nil {
		return err
	}
	o.Status = next
	o.touch()
	return nil
}

// Cancel moves a pending or confirmed order to cancelled.
func (o *Order) Cancel() error {
	next, err := stateFor(o.Status).OnCancel()
	if err != nil {
		return err
	}
	o.Status = next
	o.touch()
	return nil
}

// SetPaymentStatus records the admin's payment-state update.
func (o *Order) SetPaymentStatus(s payment.Status) {
	o.PaymentStatus = s
	o.touch()
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now().UTC()
}
