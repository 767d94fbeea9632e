package catalog

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("catalog: product not found")
	ErrSlugTaken         = errors.New("catalog: slug already in use")
	ErrInvalidName       = errors.New("catalog: product name is required")
	ErrInvalidSlug       = errors.New("catalog: slug must be a non-empty url-safe string")
	ErrInvalidPrice      = errors.New("catalog: price must be greater than zero")
	ErrInvalidDiscount   = errors.New("catalog: discount price must be greater than zero")
	ErrNegativeStock     = errors.New("catalog: stock cannot be negative")
	ErrImageNotFound     = errors.New("catalog: image not found")
	ErrInsufficientStock = errors.New("catalog: insufficient stock")
)

type ProductImage struct {
	ID        string
	Path      string
	IsPrimary bool
}

type Product struct {
	ID            string
	Name          string
	Slug          string
	Description   string
	Category      string
	Price         decimal.Decimal
	DiscountPrice *decimal.Decimal
	Stock         int
	IsActive      bool
	IsFeatured    bool
	Images        []ProductImage
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// New validates the catalog invariants and builds a product. The first image,
// if any, becomes the primary one.
func New(id, name, slug string, price decimal.Decimal, discountPrice *decimal.Decimal, stock int) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}
	slug = SanitizeSlug(slug)
	if slug == "" {
		return nil, ErrInvalidSlug
	}
	if !price.IsPositive() {
		return nil, ErrInvalidPrice
	}
	if discountPrice != nil && !discountPrice.IsPositive() {
		return nil, ErrInvalidDiscount
	}
	if stock < 0 {
		return nil, ErrNegativeStock
	}

	now := time.Now().UTC()
	return &Product{
		ID:            id,
		Name:          name,
		Slug:          slug,
		Price:         price,
		DiscountPrice: discountPrice,
		Stock:         stock,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// UnitPrice resolves the effective selling price: the discount price when one
// is set, the list price otherwise.
func (p *Product) UnitPrice() decimal.Decimal {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}

// Deduct removes quantity units of stock.
func (p *Product) Deduct(quantity int) error {
	if quantity <= 0 {
		return ErrNegativeStock
	}
	if quantity > p.Stock {
		return ErrInsufficientStock
	}
	p.Stock -= quantity
	p.touch()
	return nil
}

// AdjustStock applies a delta, clamping the result at zero.
func (p *Product) AdjustStock(delta int) {
	p.Stock += delta
	if p.Stock < 0 {
		p.Stock = 0
	}
	p.touch()
}

// AddImage appends an image. The first image of a product becomes primary.
func (p *Product) AddImage(img ProductImage) {
	if len(p.Images) == 0 {
		img.IsPrimary = true
	} else if img.IsPrimary {
		p.clearPrimary()
	}
	p.Images = append(p.Images, img)
	p.touch()
}

// SetPrimaryImage marks the given image primary and clears the flag on every
// other image, keeping at most one primary per product.
func (p *Product) SetPrimaryImage(imageID string) error {
	found := false
	for i := range p.Images {
		if p.Images[i].ID == imageID {
			found = true
			break
		}
	}
	if !found {
		return ErrImageNotFound
	}
	for i := range p.Images {
		p.Images[i].IsPrimary = p.Images[i].ID == imageID
	}
	p.touch()
	return nil
}

// RemoveImage deletes an image. If the primary image is removed, the first
// remaining image is promoted.
func (p *Product) RemoveImage(imageID string) error {
	idx := -1
	for i := range p.Images {
		if p.Images[i].ID == imageID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrImageNotFound
	}
	wasPrimary := p.Images[idx].IsPrimary
	p.Images = append(p.Images[:idx], p.Images[idx+1:]...)
	if wasPrimary && len(p.Images) > 0 {
		p.Images[0].IsPrimary = true
	}
	p.touch()
	return nil
}

// PrimaryImage returns the primary image, or nil when the product has none.
func (p *Product) PrimaryImage() *ProductImage {
	for i := range p.Images {
		if p.Images[i].IsPrimary {
			return &p.Images[i]
		}
	}
	return nil
}

func (p *Product) clearPrimary() {
	for i := range p.Images {
		p.Images[i].IsPrimary = false
	}
}

func (p *Product) touch() {
	p.UpdatedAt = time.Now().UTC()
}

var slugStrip = regexp.MustCompile(`[^a-z0-9-]`)
var slugSqueeze = regexp.MustCompile(`-+`)

// SanitizeSlug lowercases and strips a slug down to [a-z0-9-], collapsing
// runs of dashes and trimming them from the ends. Result capped at 100 chars.
func SanitizeSlug(slug string) string {
	s := strings.ToLower(strings.TrimSpace(slug))
	s = slugStrip.ReplaceAllString(s, "-")
	s = slugSqueeze.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}
