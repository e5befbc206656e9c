package services

import (
	"context"

	"github.com/shopspring/decimal"
)

// Quote is the tax and shipping charged on top of an order subtotal.
type Quote struct {
	Tax      decimal.Decimal
	Shipping decimal.Decimal
}

// PricingPolicy computes tax and shipping for a subtotal. It may be backed by
// an external tax service; FlatRatePolicy is the built-in implementation.
type PricingPolicy interface {
	Quote(ctx context.Context, subtotal decimal.Decimal) (Quote, error)
}

// FlatRatePolicy applies one tax rate and one shipping charge. Shipping is
// waived once the subtotal reaches FreeShippingThreshold, when set.
type FlatRatePolicy struct {
	TaxRate               decimal.Decimal
	ShippingFlat          decimal.Decimal
	FreeShippingThreshold *decimal.Decimal
}

func (p FlatRatePolicy) Quote(_ context.Context, subtotal decimal.Decimal) (Quote, error) {
	shipping := p.ShippingFlat
	if p.FreeShippingThreshold != nil && subtotal.GreaterThanOrEqual(*p.FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	return Quote{
		Tax:      RoundMoney(subtotal.Mul(p.TaxRate)),
		Shipping: RoundMoney(shipping),
	}, nil
}

// RoundMoney rounds to cents, half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
