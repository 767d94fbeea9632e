package settings_test

import (
	"context"
	"testing"

	appsettings "github.com/nillpakhi2003-droid/habib-furniture/internal/application/settings"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/infrastructure/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetReturnsDefaultsWhenUnset(t *testing.T) {
	svc := appsettings.NewService(memory.NewStore(), nil)

	cfg, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, cfg.DeliveryChargeDhaka.Equal(decimal.NewFromInt(60)))
	assert.True(t, cfg.DeliveryChargeOutside.Equal(decimal.NewFromInt(120)))
}

func TestUpdateOverlaysFields(t *testing.T) {
	svc := appsettings.NewService(memory.NewStore(), nil)

	dhaka := decimal.NewFromInt(80)
	bkash := "01811111111"
	cfg, err := svc.Update(context.Background(), appsettings.UpdateInput{
		DeliveryChargeDhaka: &dhaka,
		BkashNumber:         &bkash,
	})
	require.NoError(t, err)
	assert.True(t, cfg.DeliveryChargeDhaka.Equal(dhaka))
	assert.Equal(t, bkash, cfg.BkashNumber)
	// Untouched fields keep the default.
	assert.True(t, cfg.DeliveryChargeOutside.Equal(decimal.NewFromInt(120)))

	// Persisted: a fresh read sees the update.
	got, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, got.DeliveryChargeDhaka.Equal(dhaka))
}

func TestUpdateRejectsNegativeCharge(t *testing.T) {
	svc := appsettings.NewService(memory.NewStore(), nil)

	negative := decimal.NewFromInt(-5)
	_, err := svc.Update(context.Background(), appsettings.UpdateInput{
		DeliveryChargeOutside: &negative,
	})
	assert.ErrorIs(t, err, appsettings.ErrNegativeCharge)
}

func TestDeliveryChargeByZone(t *testing.T) {
	svc := appsettings.NewService(memory.NewStore(), nil)

	charge, err := svc.DeliveryCharge(context.Background(), "Dhaka")
	require.NoError(t, err)
	assert.True(t, charge.Equal(decimal.NewFromInt(60)))

	charge, err = svc.DeliveryCharge(context.Background(), "chittagong")
	require.NoError(t, err)
	assert.True(t, charge.Equal(decimal.NewFromInt(120)))

	charge, err = svc.DeliveryCharge(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, charge.Equal(decimal.NewFromInt(120)))
}
