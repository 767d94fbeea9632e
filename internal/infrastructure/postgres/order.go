package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	apporder "github.com/nillpakhi2003-droid/habib-furniture/internal/application/order"
	catdomain "github.com/nillpakhi2003-droid/habib-furniture/internal/domain/catalog"
	orddomain "github.com/nillpakhi2003-droid/habib-furniture/internal/domain/order"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/domain/payment"
	"github.com/shopspring/decimal"
)

type OrderStore struct {
	db *sql.DB
}

var _ apporder.Store = (*OrderStore)(nil)

func NewOrderStore(db *sql.DB) *OrderStore {
	return &OrderStore{db: db}
}

func (s *OrderStore) InTx(ctx context.Context, fn func(ctx context.Context, tx apporder.Tx) error) error {
	return inTx(ctx, s.db, func(sqlTx *sql.Tx) error {
		return fn(ctx, &orderTx{tx: sqlTx})
	})
}

// orderTx runs the checkout queries on one sql.Tx. ProductForUpdate takes a
// row lock, so two placements against the same product serialize and the
// second one sees the decremented stock.
type orderTx struct {
	tx *sql.Tx
}

func (t *orderTx) ProductForUpdate(ctx context.Context, productID string) (*catdomain.Product, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, productID)
	return scanProduct(row)
}

func (t *orderTx) DecrementStock(ctx context.Context, productID string, quantity int) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE products
		SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1 AND stock >= $2`,
		productID, quantity)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return catdomain.ErrInsufficientStock
	}
	return nil
}

func (t *orderTx) RestoreStock(ctx context.Context, productID string, quantity int) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE products
		SET stock = stock + $2, updated_at = NOW()
		WHERE id = $1`,
		productID, quantity)
	if err != nil {
		return fmt.Errorf("restore stock: %w", err)
	}
	return nil
}

func (t *orderTx) InsertOrder(ctx context.Context, o *orddomain.Order) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO orders (id, customer_name, phone, address, payment_method,
			payment_status, payment_phone, transaction_id, delivery_charge,
			total_amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		o.ID, o.CustomerName, o.Phone, o.Address, string(o.PaymentMethod),
		string(o.PaymentStatus), o.PaymentPhone, o.TransactionID,
		o.DeliveryCharge.String(), o.TotalAmount.String(), string(o.Status),
		o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	for _, it := range o.Items {
		if _, err := t.tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, price_snapshot)
			VALUES ($1, $2, $3, $4, $5)`,
			it.ID, o.ID, it.ProductID, it.Quantity, it.PriceSnapshot.String(),
		); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func (t *orderTx) OrderForUpdate(ctx context.Context, orderID string) (*orddomain.Order, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, orderID)
	o, err := scanOrder(row)
	if err != nil {
		return nil, err
	}
	if err := loadItems(ctx, t.tx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (t *orderTx) UpdateOrder(ctx context.Context, o *orddomain.Order) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE orders
		SET payment_status = $2, status = $3, updated_at = $4
		WHERE id = $1`,
		o.ID, string(o.PaymentStatus), string(o.Status), o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return orddomain.ErrNotFound
	}
	return nil
}

const orderColumns = `id, customer_name, phone, address, payment_method,
	payment_status, payment_phone, transaction_id, delivery_charge,
	total_amount, status, created_at, updated_at`

func (s *OrderStore) GetOrder(ctx context.Context, orderID string) (*orddomain.Order, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID)
	o, err := scanOrder(row)
	if err != nil {
		return nil, err
	}
	if err := loadItems(ctx, s.db, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *OrderStore) ListOrders(ctx context.Context, f apporder.ListFilter) ([]*orddomain.Order, int, error) {
	where := []string{"TRUE"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Status != "" {
		where = append(where, "status = "+arg(string(f.Status)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE `+cond, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	query := `SELECT ` + orderColumns + ` FROM orders WHERE ` + cond +
		` ORDER BY created_at DESC, id LIMIT ` + arg(f.PerPage) +
		` OFFSET ` + arg((f.Page-1)*f.PerPage)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []*orddomain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for _, o := range orders {
		if err := loadItems(ctx, s.db, o); err != nil {
			return nil, 0, err
		}
	}
	return orders, total, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func loadItems(ctx context.Context, q querier, o *orddomain.Order) error {
	rows, err := q.QueryContext(ctx, `
		SELECT id, order_id, product_id, quantity, price_snapshot
		FROM order_items WHERE order_id = $1 ORDER BY id`, o.ID)
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			it    orddomain.Item
			price string
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &price); err != nil {
			return err
		}
		it.PriceSnapshot, err = decimal.NewFromString(price)
		if err != nil {
			return fmt.Errorf("parse price snapshot: %w", err)
		}
		o.Items = append(o.Items, it)
	}
	return rows.Err()
}

func scanOrder(row rowScanner) (*orddomain.Order, error) {
	var (
		o              orddomain.Order
		method, status string
		payStatus      string
		charge, total  string
	)
	err := row.Scan(
		&o.ID, &o.CustomerName, &o.Phone, &o.Address, &method,
		&payStatus, &o.PaymentPhone, &o.TransactionID, &charge,
		&total, &status, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, orddomain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan order: %w", err)
	}

	o.PaymentMethod = payment.Method(method)
	o.PaymentStatus = payment.Status(payStatus)
	o.Status = orddomain.Status(status)
	if o.DeliveryCharge, err = decimal.NewFromString(charge); err != nil {
		return nil, fmt.Errorf("parse delivery charge: %w", err)
	}
	if o.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("parse total amount: %w", err)
	}
	return &o, nil
}
