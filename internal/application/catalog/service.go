package catalog

import (
	"context"
	"strings"

	domain "github.com/nillpakhi2003-droid/habib-furniture/internal/domain/catalog"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/observability"
	"github.com/shopspring/decimal"
)

// IDGenerator mints identifiers for products and images.
type IDGenerator interface {
	NewID() string
}

// ListFilter narrows a product listing. Zero values mean "no constraint".
type ListFilter struct {
	Category     string
	ActiveOnly   bool
	FeaturedOnly bool
	Search       string
	Page         int
	PerPage      int
}

// Repository is the catalog storage port.
type Repository interface {
	Insert(ctx context.Context, p *domain.Product) error
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	List(ctx context.Context, f ListFilter) ([]*domain.Product, int, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
}

type Service struct {
	repo  Repository
	idGen IDGenerator
	log   observability.Logger
}

func NewService(repo Repository, idGen IDGenerator, tel observability.Observability) *Service {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Service{
		repo:  repo,
		idGen: idGen,
		log:   tel.Logger().With(observability.F("service", "catalog-service")),
	}
}

type CreateProductInput struct {
	Name          string
	Slug          string
	Description   string
	Category      string
	Price         decimal.Decimal
	DiscountPrice *decimal.Decimal
	Stock         int
	IsFeatured    bool
	ImagePaths    []string
}

func (s *Service) Create(ctx context.Context, in CreateProductInput) (*domain.Product, error) {
	slug := in.Slug
	if strings.TrimSpace(slug) == "" {
		slug = in.Name
	}
	p, err := domain.New(s.idGen.NewID(), in.Name, slug, in.Price, in.DiscountPrice, in.Stock)
	if err != nil {
		return nil, err
	}
	p.Description = strings.TrimSpace(in.Description)
	p.Category = strings.TrimSpace(in.Category)
	p.IsFeatured = in.IsFeatured
	for _, path := range in.ImagePaths {
		p.AddImage(domain.ProductImage{ID: s.idGen.NewID(), Path: path})
	}

	taken, err := s.repo.SlugExists(ctx, p.Slug, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrSlugTaken
	}
	if err := s.repo.Insert(ctx, p); err != nil {
		return nil, err
	}

	s.log.Info("product_created",
		observability.F("product_id", p.ID),
		observability.F("slug", p.Slug),
	)
	return p, nil
}

type UpdateProductInput struct {
	Name          *string
	Slug          *string
	Description   *string
	Category      *string
	Price         *decimal.Decimal
	DiscountPrice *decimal.Decimal
	// ClearDiscount removes the discount price; it wins over DiscountPrice.
	ClearDiscount bool
	IsActive      *bool
	IsFeatured    *bool
}

func (s *Service) Update(ctx context.Context, id string, in UpdateProductInput) (*domain.Product, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		p.Name = name
	}
	if in.Slug != nil {
		slug := domain.SanitizeSlug(*in.Slug)
		if slug == "" {
			return nil, domain.ErrInvalidSlug
		}
		if slug != p.Slug {
			taken, err := s.repo.SlugExists(ctx, slug, p.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, domain.ErrSlugTaken
			}
			p.Slug = slug
		}
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Category != nil {
		p.Category = strings.TrimSpace(*in.Category)
	}
	if in.Price != nil {
		if !in.Price.IsPositive() {
			return nil, domain.ErrInvalidPrice
		}
		p.Price = *in.Price
	}
	switch {
	case in.ClearDiscount:
		p.DiscountPrice = nil
	case in.DiscountPrice != nil:
		if !in.DiscountPrice.IsPositive() {
			return nil, domain.ErrInvalidDiscount
		}
		d := *in.DiscountPrice
		p.DiscountPrice = &d
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if in.IsFeatured != nil {
		p.IsFeatured = *in.IsFeatured
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// AdjustStock applies an admin stock delta, clamping at zero.
func (s *Service) AdjustStock(ctx context.Context, id string, delta int) (*domain.Product, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.AdjustStock(delta)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info("stock_adjusted",
		observability.F("product_id", id),
		observability.F("delta", delta),
		observability.F("stock", p.Stock),
	)
	return p, nil
}

func (s *Service) AddImage(ctx context.Context, id, path string, primary bool) (*domain.Product, error) {
	if strings.TrimSpace(path) == "" {
		return nil, domain.ErrImageNotFound
	}
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.AddImage(domain.ProductImage{ID: s.idGen.NewID(), Path: path, IsPrimary: primary})
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) SetPrimaryImage(ctx context.Context, id, imageID string) (*domain.Product, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.SetPrimaryImage(imageID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) RemoveImage(ctx context.Context, id, imageID string) (*domain.Product, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.RemoveImage(imageID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("product_deleted", observability.F("product_id", id))
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.Get(ctx, id)
}

// GetBySlug resolves a storefront product page. Inactive products are hidden
// from customers.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	p, err := s.repo.GetBySlug(ctx, domain.SanitizeSlug(slug))
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]*domain.Product, int, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 || f.PerPage > 100 {
		f.PerPage = 20
	}
	return s.repo.List(ctx, f)
}
