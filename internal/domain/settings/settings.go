package settings

import (
	"github.com/shopspring/decimal"
)

// Settings holds the storefront's operational knobs: delivery charges per
// zone, the mobile-wallet receiving numbers shown at checkout, and the
// Facebook pixel id injected into pages.
type Settings struct {
	DeliveryChargeDhaka   decimal.Decimal
	DeliveryChargeOutside decimal.Decimal
	BkashNumber           string
	NagadNumber           string
	FacebookPixelID       string
}

// Default returns the values used before an admin saves anything.
func Default() Settings {
	return Settings{
		DeliveryChargeDhaka:   decimal.NewFromInt(60),
		DeliveryChargeOutside: decimal.NewFromInt(120),
		BkashNumber:           "01XXXXXXXXX",
		NagadNumber:           "01XXXXXXXXX",
	}
}
