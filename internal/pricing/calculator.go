// Package pricing turns a cart snapshot into the money amounts an order is
// created with. All arithmetic happens in integer cents; the only fractional
// step (promo percent) goes through decimal with half-up rounding.
package pricing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sellora/sellora-backend/internal/promos"
	"github.com/sellora/sellora-backend/pkg/config"
	pkgerrors "github.com/sellora/sellora-backend/pkg/errors"
	"github.com/sellora/sellora-backend/pkg/types"
)

// LineInput is the priced view of one cart line.
type LineInput struct {
	UnitPriceCents int64
	Quantity       int
}

// Quote is the complete price breakdown offered to the buyer. The same
// breakdown is frozen onto the order at placement.
type Quote struct {
	SubtotalCents int64               `json:"subtotal_cents"`
	ShippingCents int64               `json:"shipping_cents"`
	DiscountCents int64               `json:"discount_cents"`
	TotalCents    int64               `json:"total_cents"`
	Promo         *types.AppliedPromo `json:"promo,omitempty"`
}

// Calculator prices cart snapshots against the shipping policy and the promo
// table.
type Calculator struct {
	promoRepo promos.Repository
	shipping  config.ShippingConfig
	now       func() time.Time
}

// NewCalculator wires a calculator. The promo repository may be nil when
// promos are not deployed.
func NewCalculator(promoRepo promos.Repository, shipping config.ShippingConfig) *Calculator {
	return &Calculator{
		promoRepo: promoRepo,
		shipping:  shipping,
		now:       time.Now,
	}
}

// Compute prices the lines. An empty snapshot yields an all-zero quote:
// shipping is only charged when there is something to ship. A promo code that
// cannot be applied fails the whole quote with the precise refusal reason.
func (c *Calculator) Compute(ctx context.Context, lines []LineInput, promoCode *string) (*Quote, error) {
	var subtotal int64
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be positive")
		}
		if line.UnitPriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line price must not be negative")
		}
		subtotal += line.UnitPriceCents * int64(line.Quantity)
	}

	quote := &Quote{SubtotalCents: subtotal}
	if subtotal > 0 {
		quote.ShippingCents = c.shipping.FlatRateCents
	}

	if promoCode != nil && *promoCode != "" {
		applied, err := c.applyPromo(ctx, *promoCode, subtotal)
		if err != nil {
			return nil, err
		}
		quote.Promo = applied
		quote.DiscountCents = applied.DiscountCents
	}

	total := quote.SubtotalCents + quote.ShippingCents - quote.DiscountCents
	if total < 0 {
		total = 0
	}
	quote.TotalCents = total
	return quote, nil
}

// Validate checks a promo code without pricing a cart. The returned promo
// carries a zero discount; the real amount depends on the cart it is applied
// to.
func (c *Calculator) Validate(ctx context.Context, code string) (*types.AppliedPromo, error) {
	return c.applyPromo(ctx, code, 0)
}

func (c *Calculator) applyPromo(ctx context.Context, code string, subtotalCents int64) (*types.AppliedPromo, error) {
	if c.promoRepo == nil {
		return nil, pkgerrors.PromoInvalidOrExpired(code, "is not a valid code")
	}
	promo, err := c.promoRepo.FindByCode(ctx, code)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.PromoInvalidOrExpired(code, "is not a valid code")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up promo code")
	}
	if !promo.Active {
		return nil, pkgerrors.PromoInvalidOrExpired(code, "is no longer active")
	}
	now := c.now()
	if promo.StartsAt != nil && now.Before(*promo.StartsAt) {
		return nil, pkgerrors.PromoInvalidOrExpired(code, "is not active yet")
	}
	if promo.EndsAt != nil && now.After(*promo.EndsAt) {
		return nil, pkgerrors.PromoInvalidOrExpired(code, "has expired")
	}
	if promo.Percent <= 0 || promo.Percent > 100 {
		return nil, pkgerrors.PromoInvalidOrExpired(code, "has an invalid discount")
	}

	discount := decimal.NewFromInt(subtotalCents).
		Mul(decimal.NewFromInt(int64(promo.Percent))).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
	if discount > subtotalCents {
		discount = subtotalCents
	}

	return &types.AppliedPromo{
		Code:          promo.Code,
		Percent:       promo.Percent,
		DiscountCents: discount,
	}, nil
}
