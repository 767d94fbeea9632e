// Package memory implements every storage port in process memory. It backs
// tests and local development; the transactional guarantees match the
// postgres implementation because all mutation happens under one lock.
package memory

import (
	"sync"
	"time"

	catdomain "github.com/nillpakhi2003-droid/habib-furniture/internal/domain/catalog"
	orddomain "github.com/nillpakhi2003-droid/habib-furniture/internal/domain/order"
	setdomain "github.com/nillpakhi2003-droid/habib-furniture/internal/domain/settings"
	userdomain "github.com/nillpakhi2003-droid/habib-furniture/internal/domain/user"
)

type pageviewKey struct {
	Path string
	Day  time.Time
}

// Store is the shared in-memory state. A single mutex covers all entities so
// that a transaction sees and leaves a consistent world.
type Store struct {
	mu sync.Mutex

	products map[string]*catdomain.Product
	orders   map[string]*orddomain.Order
	users    map[string]*userdomain.User // keyed by phone
	settings *setdomain.Settings
	views    map[pageviewKey]int
}

func NewStore() *Store {
	return &Store{
		products: make(map[string]*catdomain.Product),
		orders:   make(map[string]*orddomain.Order),
		users:    make(map[string]*userdomain.User),
		views:    make(map[pageviewKey]int),
	}
}

func cloneProduct(p *catdomain.Product) *catdomain.Product {
	cp := *p
	if p.DiscountPrice != nil {
		d := *p.DiscountPrice
		cp.DiscountPrice = &d
	}
	cp.Images = append([]catdomain.ProductImage(nil), p.Images...)
	return &cp
}

func cloneOrder(o *orddomain.Order) *orddomain.Order {
	co := *o
	co.Items = append([]orddomain.Item(nil), o.Items...)
	return &co
}
