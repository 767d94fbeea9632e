package settings

import (
	"context"
	"errors"
	"strings"

	domain "github.com/nillpakhi2003-droid/habib-furniture/internal/domain/settings"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/observability"
	"github.com/shopspring/decimal"
)

// ErrNotSaved marks a store with nothing persisted yet; Get falls back to
// defaults when it sees this.
var ErrNotSaved = errors.New("settings: not saved")

var ErrNegativeCharge = errors.New("settings: delivery charge cannot be negative")

// Repository is the settings storage port. Load returns ErrNotSaved when no
// row exists yet.
type Repository interface {
	Load(ctx context.Context) (*domain.Settings, error)
	Save(ctx context.Context, s *domain.Settings) error
}

type Service struct {
	repo Repository
	log  observability.Logger
}

func NewService(repo Repository, tel observability.Observability) *Service {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Service{
		repo: repo,
		log:  tel.Logger().With(observability.F("service", "settings-service")),
	}
}

// Get returns the stored settings, or the defaults when nothing has been
// saved yet.
func (s *Service) Get(ctx context.Context) (domain.Settings, error) {
	stored, err := s.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrNotSaved) {
			return domain.Default(), nil
		}
		return domain.Settings{}, err
	}
	return *stored, nil
}

// DeliveryCharge resolves the charge for a zone. Any value other than
// "dhaka" counts as outside Dhaka.
func (s *Service) DeliveryCharge(ctx context.Context, zone string) (decimal.Decimal, error) {
	cfg, err := s.Get(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if strings.EqualFold(strings.TrimSpace(zone), "dhaka") {
		return cfg.DeliveryChargeDhaka, nil
	}
	return cfg.DeliveryChargeOutside, nil
}

type UpdateInput struct {
	DeliveryChargeDhaka   *decimal.Decimal
	DeliveryChargeOutside *decimal.Decimal
	BkashNumber           *string
	NagadNumber           *string
	FacebookPixelID       *string
}

// Update overlays the given fields on the current settings and persists the
// result.
func (s *Service) Update(ctx context.Context, in UpdateInput) (domain.Settings, error) {
	cfg, err := s.Get(ctx)
	if err != nil {
		return domain.Settings{}, err
	}

	if in.DeliveryChargeDhaka != nil {
		if in.DeliveryChargeDhaka.IsNegative() {
			return domain.Settings{}, ErrNegativeCharge
		}
		cfg.DeliveryChargeDhaka = *in.DeliveryChargeDhaka
	}
	if in.DeliveryChargeOutside != nil {
		if in.DeliveryChargeOutside.IsNegative() {
			return domain.Settings{}, ErrNegativeCharge
		}
		cfg.DeliveryChargeOutside = *in.DeliveryChargeOutside
	}
	if in.BkashNumber != nil {
		cfg.BkashNumber = strings.TrimSpace(*in.BkashNumber)
	}
	if in.NagadNumber != nil {
		cfg.NagadNumber = strings.TrimSpace(*in.NagadNumber)
	}
	if in.FacebookPixelID != nil {
		cfg.FacebookPixelID = strings.TrimSpace(*in.FacebookPixelID)
	}

	if err := s.repo.Save(ctx, &cfg); err != nil {
		return domain.Settings{}, err
	}
	s.log.Info("settings_updated")
	return cfg, nil
}
