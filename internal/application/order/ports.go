package order

import (
	"context"

	"github.com/nillpakhi2003-droid/habib-furniture/internal/domain/catalog"
	domain "github.com/nillpakhi2003-droid/habib-furniture/internal/domain/order"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/infrastructure/ratelimit"
)

// IDGenerator mints order and line-item identifiers.
type IDGenerator interface {
	NewID() string
}

// RateLimiter guards checkout. Backend failures are already absorbed into a
// policy decision by the implementation.
type RateLimiter interface {
	Allow(ctx context.Context, key string) ratelimit.Decision
}

// Tx is the set of operations available inside one atomic storage
// transaction. Implementations guarantee that everything done through a Tx
// commits or rolls back as a unit, and that ProductForUpdate holds the
// product against concurrent writers until the transaction ends.
type Tx interface {
	ProductForUpdate(ctx context.Context, productID string) (*catalog.Product, error)
	DecrementStock(ctx context.Context, productID string, quantity int) error
	RestoreStock(ctx context.Context, productID string, quantity int) error
	InsertOrder(ctx context.Context, o *domain.Order) error
	OrderForUpdate(ctx context.Context, orderID string) (*domain.Order, error)
	UpdateOrder(ctx context.Context, o *domain.Order) error
}

// ListFilter narrows and pages the admin order list.
type ListFilter struct {
	Status  domain.Status
	Page    int
	PerPage int
}

// Store is the order storage port. InTx runs fn inside a transaction; any
// error from fn rolls the whole transaction back.
type Store interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	ListOrders(ctx context.Context, f ListFilter) ([]*domain.Order, int, error)
}
