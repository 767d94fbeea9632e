package order

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nillpakhi2003-droid/habib-furniture/internal/domain/catalog"
	domain "github.com/nillpakhi2003-droid/habib-furniture/internal/domain/order"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/domain/payment"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/observability"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/observability/logctx"
	"github.com/shopspring/decimal"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	useCasePlaceOrder = "order.place"
	spanPrefix        = "UC."
)

type PlaceOrderInput struct {
	ProductID      string
	Quantity       int
	CustomerName   string
	Phone          string
	Address        string
	PaymentMethod  payment.Method
	DeliveryCharge decimal.Decimal
	PaymentPhone   string
	TransactionID  string
	// ClientKey identifies the caller for rate limiting, typically the
	// client IP. Empty skips the limiter.
	ClientKey string
}

type PlaceOrderResult struct {
	OrderID     string
	TotalAmount decimal.Decimal
}

// PlaceOrder converts a checkout submission into a durable order. Stock
// check, stock decrement and order insert happen inside one storage
// transaction: concurrent placements against the same product are serialized
// by the store and can never combine to oversell.
func (s *Service) PlaceOrder(ctx context.Context, in PlaceOrderInput) (_ *PlaceOrderResult, err error) {
	logger := logctx.FromOr(ctx, s.log).With(observability.F("use_case", useCasePlaceOrder))

	ctx, span := s.tel.Tracer().Start(ctx, spanPrefix+"PlaceOrder",
		attribute.String("use_case", useCasePlaceOrder),
		attribute.String("order.product_id", in.ProductID),
		attribute.Int("order.quantity", in.Quantity),
	)
	start := time.Now()
	outcome := "success"

	defer func() {
		lat := time.Since(start).Seconds()

		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, Code(err))
		} else {
			span.SetStatus(codes.Ok, "OK")
		}
		span.End()

		s.reqCounter.Add(1,
			observability.L("use_case", useCasePlaceOrder),
			observability.L("outcome", outcome),
		)
		s.durHistogram.Observe(lat, observability.L("use_case", useCasePlaceOrder))

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("latency_seconds", lat),
		}
		if err != nil {
			fields = append(fields, observability.F("error_code", Code(err)))
		}
		logger.Info("use_case_done", fields...)
	}()

	if err := validatePlaceOrderInput(in); err != nil {
		return nil, err
	}

	if s.limiter != nil && in.ClientKey != "" {
		decision := s.limiter.Allow(ctx, "order:"+in.ClientKey)
		if !decision.Allowed {
			return nil, &RateLimitedError{RetryAfter: decision.RetryAfter}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var placed *domain.Order
	txErr := s.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		product, err := tx.ProductForUpdate(ctx, in.ProductID)
		if err != nil {
			if isNotFound(err) {
				return ErrProductNotFound
			}
			return err
		}
		if !product.IsActive {
			return ErrProductNotFound
		}
		if product.Stock <= 0 {
			return ErrOutOfStock
		}
		if product.Stock < in.Quantity {
			return ErrInsufficientStock
		}

		unitPrice := product.UnitPrice()
		if !unitPrice.IsPositive() {
			return ErrInvalidPrice
		}

		entity, err := domain.New(domain.NewInput{
			ID:             s.idGen.NewID(),
			CustomerName:   in.CustomerName,
			Phone:          in.Phone,
			Address:        in.Address,
			PaymentMethod:  in.PaymentMethod,
			PaymentPhone:   in.PaymentPhone,
			TransactionID:  in.TransactionID,
			DeliveryCharge: in.DeliveryCharge,
			Items: []domain.Item{{
				ID:            s.idGen.NewID(),
				ProductID:     product.ID,
				Quantity:      in.Quantity,
				PriceSnapshot: unitPrice,
			}},
		})
		if err != nil {
			return err
		}

		if err := tx.DecrementStock(ctx, product.ID, in.Quantity); err != nil {
			return err
		}
		if err := tx.InsertOrder(ctx, entity); err != nil {
			return err
		}

		placed = entity
		return nil
	})
	if txErr != nil {
		return nil, wrapStoreError(txErr)
	}

	s.placed.Add(1, observability.L("payment_method", string(placed.PaymentMethod)))
	s.decremented.Add(float64(in.Quantity))
	span.SetAttributes(attribute.String("order.id", placed.ID))

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 300*time.Millisecond)
	defer cancel()
	s.publish(pubCtx, domain.NewOrderPlacedEvent(placed))

	logger.Info("order_placed",
		observability.F("order_id", placed.ID),
		observability.F("product_id", in.ProductID),
		observability.F("quantity", in.Quantity),
		observability.F("total", placed.TotalAmount.String()),
	)

	return &PlaceOrderResult{OrderID: placed.ID, TotalAmount: placed.TotalAmount}, nil
}

// validatePlaceOrderInput rejects bad submissions before touching the
// limiter or storage. The domain constructor re-checks the same rules.
func validatePlaceOrderInput(in PlaceOrderInput) error {
	if strings.TrimSpace(in.ProductID) == "" {
		return ErrProductNotFound
	}
	if in.Quantity < domain.MinQuantity || in.Quantity > domain.MaxQuantity {
		return domain.ErrInvalidQuantity
	}
	name := strings.TrimSpace(in.CustomerName)
	if n := utf8.RuneCountInString(name); n < 2 || n > 100 {
		return domain.ErrInvalidCustomerName
	}
	if !domain.ValidPhone(in.Phone) {
		return domain.ErrInvalidPhone
	}
	address := strings.TrimSpace(in.Address)
	if n := utf8.RuneCountInString(address); n < 10 || n > 500 {
		return domain.ErrInvalidAddress
	}
	if in.DeliveryCharge.IsNegative() {
		return domain.ErrInvalidDeliveryCharge
	}
	if in.PaymentMethod.RequiresWalletPhone() && strings.TrimSpace(in.PaymentPhone) == "" {
		return domain.ErrPaymentPhoneRequired
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, catalog.ErrNotFound)
}
