package order

import (
	"context"
	"time"

	domain "github.com/nillpakhi2003-droid/habib-furniture/internal/domain/order"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/domain/payment"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/observability"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const useCaseConfirmOrder = "order.confirm"

type ConfirmOrderResult struct {
	OrderID string
	Status  domain.Status
	// Changed is false when the order was already confirmed; the call is a
	// no-op in that case and safe to retry.
	Changed bool
}

// ConfirmOrder moves a pending order to CONFIRMED. Stock was already
// reserved at placement, so confirmation only flips the status. Confirming
// an already-confirmed order succeeds without touching storage.
func (s *Service) ConfirmOrder(ctx context.Context, orderID string) (_ *ConfirmOrderResult, err error) {
	logger := logctx.FromOr(ctx, s.log).With(
		observability.F("use_case", useCaseConfirmOrder),
		observability.F("order_id", orderID),
	)

	ctx, span := s.tel.Tracer().Start(ctx, spanPrefix+"ConfirmOrder",
		attribute.String("use_case", useCaseConfirmOrder),
		attribute.String("order.id", orderID),
	)
	start := time.Now()

	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, Code(err))
		} else {
			span.SetStatus(codes.Ok, "OK")
		}
		span.End()

		s.reqCounter.Add(1,
			observability.L("use_case", useCaseConfirmOrder),
			observability.L("outcome", outcome),
		)
		s.durHistogram.Observe(time.Since(start).Seconds(),
			observability.L("use_case", useCaseConfirmOrder))
	}()

	if orderID == "" {
		return nil, domain.ErrNotFound
	}

	var (
		confirmed *domain.Order
		changed   bool
	)
	txErr := s.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		o, err := tx.OrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		changed, err = o.Confirm()
		if err != nil {
			return err
		}
		if changed {
			if err := tx.UpdateOrder(ctx, o); err != nil {
				return err
			}
		}
		confirmed = o
		return nil
	})
	if txErr != nil {
		return nil, wrapStoreError(txErr)
	}

	if changed {
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 300*time.Millisecond)
		defer cancel()
		s.publish(pubCtx, domain.NewOrderConfirmedEvent(confirmed))
		logger.Info("order_confirmed")
	} else {
		logger.Info("order_confirm_noop")
	}

	return &ConfirmOrderResult{
		OrderID: confirmed.ID,
		Status:  confirmed.Status,
		Changed: changed,
	}, nil
}

// UpdateStatus applies an admin status change. Cancelling an order returns
// its reserved stock to the catalog in the same transaction.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, next domain.Status) (*domain.Order, error) {
	if orderID == "" {
		return nil, domain.ErrNotFound
	}
	if next == domain.StatusConfirmed {
		res, err := s.ConfirmOrder(ctx, orderID)
		if err != nil {
			return nil, err
		}
		return s.store.GetOrder(ctx, res.OrderID)
	}

	var updated *domain.Order
	txErr := s.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		o, err := tx.OrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		switch next {
		case domain.StatusDelivered:
			if err := o.Deliver(); err != nil {
				return err
			}
		case domain.StatusCancelled:
			if err := o.Cancel(); err != nil {
				return err
			}
			for _, it := range o.Items {
				if err := tx.RestoreStock(ctx, it.ProductID, it.Quantity); err != nil {
					return err
				}
			}
		default:
			return domain.ErrInvalidStateTransition
		}
		if err := tx.UpdateOrder(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if txErr != nil {
		return nil, wrapStoreError(txErr)
	}

	s.log.Info("order_status_updated",
		observability.F("order_id", orderID),
		observability.F("status", string(updated.Status)),
	)
	return updated, nil
}

// UpdatePaymentStatus records the payment outcome for an order.
func (s *Service) UpdatePaymentStatus(ctx context.Context, orderID string, next payment.Status) (*domain.Order, error) {
	if orderID == "" {
		return nil, domain.ErrNotFound
	}
	if !payment.ValidStatus(string(next)) {
		return nil, payment.ErrUnknownStatus
	}

	var updated *domain.Order
	txErr := s.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		o, err := tx.OrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		o.SetPaymentStatus(next)
		if err := tx.UpdateOrder(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if txErr != nil {
		return nil, wrapStoreError(txErr)
	}
	return updated, nil
}
