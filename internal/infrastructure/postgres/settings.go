package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	appsettings "github.com/nillpakhi2003-droid/habib-furniture/internal/application/settings"
	setdomain "github.com/nillpakhi2003-droid/habib-furniture/internal/domain/settings"
	"github.com/shopspring/decimal"
)

// SettingsRepo stores the storefront settings as a single row with a fixed
// id, written with an upsert.
type SettingsRepo struct {
	db *sql.DB
}

var _ appsettings.Repository = (*SettingsRepo)(nil)

func NewSettingsRepo(db *sql.DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

const settingsRowID = 1

func (r *SettingsRepo) Load(ctx context.Context) (*setdomain.Settings, error) {
	var (
		cfg            setdomain.Settings
		dhaka, outside string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT delivery_charge_dhaka, delivery_charge_outside,
		       bkash_number, nagad_number, facebook_pixel_id
		FROM settings WHERE id = $1`, settingsRowID,
	).Scan(&dhaka, &outside, &cfg.BkashNumber, &cfg.NagadNumber, &cfg.FacebookPixelID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appsettings.ErrNotSaved
	}
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	if cfg.DeliveryChargeDhaka, err = decimal.NewFromString(dhaka); err != nil {
		return nil, fmt.Errorf("parse dhaka charge: %w", err)
	}
	if cfg.DeliveryChargeOutside, err = decimal.NewFromString(outside); err != nil {
		return nil, fmt.Errorf("parse outside charge: %w", err)
	}
	return &cfg, nil
}

func (r *SettingsRepo) Save(ctx context.Context, cfg *setdomain.Settings) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (id, delivery_charge_dhaka, delivery_charge_outside,
			bkash_number, nagad_number, facebook_pixel_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			delivery_charge_dhaka = EXCLUDED.delivery_charge_dhaka,
			delivery_charge_outside = EXCLUDED.delivery_charge_outside,
			bkash_number = EXCLUDED.bkash_number,
			nagad_number = EXCLUDED.nagad_number,
			facebook_pixel_id = EXCLUDED.facebook_pixel_id`,
		settingsRowID,
		cfg.DeliveryChargeDhaka.String(), cfg.DeliveryChargeOutside.String(),
		cfg.BkashNumber, cfg.NagadNumber, cfg.FacebookPixelID,
	)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
