package order

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/nillpakhi2003-droid/habib-furniture/internal/domain/order"
	domoutbox "github.com/nillpakhi2003-droid/habib-furniture/internal/domain/outbox"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/observability"
)

const serviceName = "order-service"

// Service implements checkout and the admin order actions on top of the
// transactional order store.
type Service struct {
	store     Store
	limiter   RateLimiter
	idGen     IDGenerator
	publisher domoutbox.Publisher
	tel       observability.Observability

	log          observability.Logger
	reqCounter   observability.Counter
	durHistogram observability.Histogram
	placed       observability.Counter
	decremented  observability.Counter
}

func NewService(
	store Store,
	limiter RateLimiter,
	idGen IDGenerator,
	publisher domoutbox.Publisher,
	tel observability.Observability,
) *Service {
	if tel == nil {
		tel = observability.Nop()
	}
	log := tel.Logger().With(observability.F("service", serviceName))
	metrics := tel.Metrics()

	return &Service{
		store:        store,
		limiter:      limiter,
		idGen:        idGen,
		publisher:    publisher,
		tel:          tel,
		log:          log,
		reqCounter:   metrics.Counter(observability.MUsecaseRequests),
		durHistogram: metrics.Histogram(observability.MUsecaseDuration),
		placed:       metrics.Counter(observability.MOrdersPlaced),
		decremented:  metrics.Counter(observability.MStockDecremented),
	}
}

// Get loads a single order with its items.
func (s *Service) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	if orderID == "" {
		return nil, domain.ErrNotFound
	}
	return s.store.GetOrder(ctx, orderID)
}

// List returns a page of orders plus the unpaged total.
func (s *Service) List(ctx context.Context, f ListFilter) ([]*domain.Order, int, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 || f.PerPage > 100 {
		f.PerPage = 20
	}
	return s.store.ListOrders(ctx, f)
}

func (s *Service) publish(ctx context.Context, e domoutbox.Event) {
	if s.publisher == nil {
		return
	}
	// Fire and forget: a notifier outage must not affect the order.
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.log.Warn("order_event_publish_failed",
			observability.F("event", e.EventName()),
			observability.F("error", err.Error()),
		)
	}
}

func wrapStoreError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return domain.ErrNotFound
	case errors.Is(err, domain.ErrInvalidStateTransition):
		return err
	case isTaxonomyError(err):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
}

func isTaxonomyError(err error) bool {
	return Code(err) != CodeTransactionFailed
}
