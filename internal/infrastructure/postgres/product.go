package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	appcatalog "github.com/nillpakhi2003-droid/habib-furniture/internal/application/catalog"
	catdomain "github.com/nillpakhi2003-droid/habib-furniture/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

type ProductRepo struct {
	db *sql.DB
}

var _ appcatalog.Repository = (*ProductRepo)(nil)

func NewProductRepo(db *sql.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

const productColumns = `id, name, slug, description, category, price, discount_price,
	stock, is_active, is_featured, created_at, updated_at`

func (r *ProductRepo) Insert(ctx context.Context, p *catdomain.Product) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO products (`+productColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			p.ID, p.Name, p.Slug, p.Description, p.Category,
			p.Price.String(), nullDecimal(p.DiscountPrice),
			p.Stock, p.IsActive, p.IsFeatured, p.CreatedAt, p.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return catdomain.ErrSlugTaken
			}
			return fmt.Errorf("insert product: %w", err)
		}
		return insertImages(ctx, tx, p)
	})
}

func (r *ProductRepo) Update(ctx context.Context, p *catdomain.Product) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE products
			SET name = $2, slug = $3, description = $4, category = $5,
			    price = $6, discount_price = $7, stock = $8,
			    is_active = $9, is_featured = $10, updated_at = $11
			WHERE id = $1`,
			p.ID, p.Name, p.Slug, p.Description, p.Category,
			p.Price.String(), nullDecimal(p.DiscountPrice),
			p.Stock, p.IsActive, p.IsFeatured, p.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return catdomain.ErrSlugTaken
			}
			return fmt.Errorf("update product: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return catdomain.ErrNotFound
		}

		// Images are few per product; replace wholesale.
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM product_images WHERE product_id = $1`, p.ID); err != nil {
			return fmt.Errorf("clear product images: %w", err)
		}
		return insertImages(ctx, tx, p)
	})
}

func insertImages(ctx context.Context, tx *sql.Tx, p *catdomain.Product) error {
	for _, img := range p.Images {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO product_images (id, product_id, path, is_primary)
			VALUES ($1, $2, $3, $4)`,
			img.ID, p.ID, img.Path, img.IsPrimary,
		); err != nil {
			return fmt.Errorf("insert product image: %w", err)
		}
	}
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return catdomain.ErrNotFound
	}
	return nil
}

func (r *ProductRepo) Get(ctx context.Context, id string) (*catdomain.Product, error) {
	return r.getBy(ctx, "id", id)
}

func (r *ProductRepo) GetBySlug(ctx context.Context, slug string) (*catdomain.Product, error) {
	return r.getBy(ctx, "slug", slug)
}

func (r *ProductRepo) getBy(ctx context.Context, column, value string) (*catdomain.Product, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE `+column+` = $1`, value)
	p, err := scanProduct(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadImages(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProductRepo) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE slug = $1 AND id <> $2)`,
		slug, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return exists, nil
}

func (r *ProductRepo) List(ctx context.Context, f appcatalog.ListFilter) ([]*catdomain.Product, int, error) {
	where := []string{"TRUE"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.ActiveOnly {
		where = append(where, "is_active")
	}
	if f.FeaturedOnly {
		where = append(where, "is_featured")
	}
	if f.Category != "" {
		where = append(where, "LOWER(category) = LOWER("+arg(f.Category)+")")
	}
	if f.Search != "" {
		where = append(where, "name ILIKE "+arg("%"+f.Search+"%"))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE `+cond, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE ` + cond +
		` ORDER BY created_at DESC, id LIMIT ` + arg(f.PerPage) +
		` OFFSET ` + arg((f.Page-1)*f.PerPage)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []*catdomain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for _, p := range products {
		if err := r.loadImages(ctx, p); err != nil {
			return nil, 0, err
		}
	}
	return products, total, nil
}

func (r *ProductRepo) loadImages(ctx context.Context, p *catdomain.Product) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, path, is_primary FROM product_images
		WHERE product_id = $1
		ORDER BY is_primary DESC, id`, p.ID)
	if err != nil {
		return fmt.Errorf("load product images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var img catdomain.ProductImage
		if err := rows.Scan(&img.ID, &img.Path, &img.IsPrimary); err != nil {
			return err
		}
		p.Images = append(p.Images, img)
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*catdomain.Product, error) {
	var (
		p        catdomain.Product
		price    string
		discount sql.NullString
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.Category,
		&price, &discount, &p.Stock, &p.IsActive, &p.IsFeatured,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, catdomain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan product: %w", err)
	}

	p.Price, err = decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse price: %w", err)
	}
	if discount.Valid {
		d, err := decimal.NewFromString(discount.String)
		if err != nil {
			return nil, fmt.Errorf("parse discount price: %w", err)
		}
		p.DiscountPrice = &d
	}
	return &p, nil
}

func nullDecimal(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
