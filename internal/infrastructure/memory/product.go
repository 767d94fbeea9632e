package memory

import (
	"context"
	"sort"
	"strings"

	appcatalog "github.com/nillpakhi2003-droid/habib-furniture/internal/application/catalog"
	catdomain "github.com/nillpakhi2003-droid/habib-furniture/internal/domain/catalog"
)

var _ appcatalog.Repository = (*Store)(nil)

func (s *Store) Insert(ctx context.Context, p *catdomain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.products {
		if existing.Slug == p.Slug {
			return catdomain.ErrSlugTaken
		}
	}
	s.products[p.ID] = cloneProduct(p)
	return nil
}

func (s *Store) Update(ctx context.Context, p *catdomain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; !ok {
		return catdomain.ErrNotFound
	}
	s.products[p.ID] = cloneProduct(p)
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return catdomain.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*catdomain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, catdomain.ErrNotFound
	}
	return cloneProduct(p), nil
}

func (s *Store) GetBySlug(ctx context.Context, slug string) (*catdomain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.Slug == slug {
			return cloneProduct(p), nil
		}
	}
	return nil, catdomain.ErrNotFound
}

func (s *Store) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.Slug == slug && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) List(ctx context.Context, f appcatalog.ListFilter) ([]*catdomain.Product, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*catdomain.Product
	for _, p := range s.products {
		if f.ActiveOnly && !p.IsActive {
			continue
		}
		if f.FeaturedOnly && !p.IsFeatured {
			continue
		}
		if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
			continue
		}
		matched = append(matched, p)
	}

	// Newest first, matching the storefront listing.
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

	page := make([]*catdomain.Product, 0, end-start)
	for _, p := range matched[start:end] {
		page = append(page, cloneProduct(p))
	}
	return page, total, nil
}
