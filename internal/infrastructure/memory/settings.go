package memory

import (
	"context"

	appsettings "github.com/nillpakhi2003-droid/habib-furniture/internal/application/settings"
	setdomain "github.com/nillpakhi2003-droid/habib-furniture/internal/domain/settings"
)

var _ appsettings.Repository = (*Store)(nil)

func (s *Store) Load(ctx context.Context) (*setdomain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings == nil {
		return nil, appsettings.ErrNotSaved
	}
	cp := *s.settings
	return &cp, nil
}

func (s *Store) Save(ctx context.Context, cfg *setdomain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *cfg
	s.settings = &cp
	return nil
}
