package memory

import (
	"context"
	"sort"

	apporder "github.com/nillpakhi2003-droid/habib-furniture/internal/application/order"
	catdomain "github.com/nillpakhi2003-droid/habib-furniture/internal/domain/catalog"
	orddomain "github.com/nillpakhi2003-droid/habib-furniture/internal/domain/order"
)

var _ apporder.Store = (*Store)(nil)

// tx stages every mutation on clones and writes nothing back until the
// function passed to InTx returns nil. The store lock is held for the whole
// transaction, which serializes concurrent placements the same way row locks
// do in postgres.
type tx struct {
	store    *Store
	products map[string]*catdomain.Product
	orders   map[string]*orddomain.Order
}

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx apporder.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	t := &tx{
		store:    s,
		products: make(map[string]*catdomain.Product),
		orders:   make(map[string]*orddomain.Order),
	}
	if err := fn(ctx, t); err != nil {
		return err
	}

	for id, p := range t.products {
		s.products[id] = p
	}
	for id, o := range t.orders {
		s.orders[id] = o
	}
	return nil
}

func (t *tx) ProductForUpdate(ctx context.Context, productID string) (*catdomain.Product, error) {
	if p, ok := t.products[productID]; ok {
		return p, nil
	}
	p, ok := t.store.products[productID]
	if !ok {
		return nil, catdomain.ErrNotFound
	}
	staged := cloneProduct(p)
	t.products[productID] = staged
	return staged, nil
}

func (t *tx) DecrementStock(ctx context.Context, productID string, quantity int) error {
	p, err := t.ProductForUpdate(ctx, productID)
	if err != nil {
		return err
	}
	return p.Deduct(quantity)
}

func (t *tx) RestoreStock(ctx context.Context, productID string, quantity int) error {
	p, err := t.ProductForUpdate(ctx, productID)
	if err != nil {
		return err
	}
	p.AdjustStock(quantity)
	return nil
}

func (t *tx) InsertOrder(ctx context.Context, o *orddomain.Order) error {
	if _, staged := t.orders[o.ID]; staged {
		return orddomain.ErrInvalidStateTransition
	}
	t.orders[o.ID] = cloneOrder(o)
	return nil
}

func (t *tx) OrderForUpdate(ctx context.Context, orderID string) (*orddomain.Order, error) {
	if o, ok := t.orders[orderID]; ok {
		return o, nil
	}
	o, ok := t.store.orders[orderID]
	if !ok {
		return nil, orddomain.ErrNotFound
	}
	staged := cloneOrder(o)
	t.orders[orderID] = staged
	return staged, nil
}

func (t *tx) UpdateOrder(ctx context.Context, o *orddomain.Order) error {
	if _, ok := t.orders[o.ID]; !ok {
		if _, ok := t.store.orders[o.ID]; !ok {
			return orddomain.ErrNotFound
		}
	}
	t.orders[o.ID] = cloneOrder(o)
	return nil
}

func (s *Store) GetOrder(ctx context.Context, orderID string) (*orddomain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, orddomain.ErrNotFound
	}
	return cloneOrder(o), nil
}

func (s *Store) ListOrders(ctx context.Context, f apporder.ListFilter) ([]*orddomain.Order, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*orddomain.Order
	for _, o := range s.orders {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		matched = append(matched, o)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (f.Page - 1) * f.PerPage
	if start >= total {
		return nil, total, nil
	}
	end := start + f.PerPage
	if end > total {
		end = total
	}

	page := make([]*orddomain.Order, 0, end-start)
	for _, o := range matched[start:end] {
		page = append(page, cloneOrder(o))
	}
	return page, total, nil
}
