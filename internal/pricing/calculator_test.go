package pricing

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/sellora/sellora-backend/internal/promos"
	"github.com/sellora/sellora-backend/pkg/config"
	"github.com/sellora/sellora-backend/pkg/db/models"
	pkgerrors "github.com/sellora/sellora-backend/pkg/errors"
)

type stubPromoRepo struct {
	promo *models.Promo
	err   error
}

func (s *stubPromoRepo) WithTx(tx *gorm.DB) promos.Repository { return s }

func (s *stubPromoRepo) FindByCode(ctx context.Context, code string) (*models.Promo, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.promo, nil
}

func strPtr(v string) *string { return &v }

func TestComputeWithoutPromo(t *testing.T) {
	t.Parallel()

	calc := NewCalculator(nil, config.ShippingConfig{FlatRateCents: 5000})
	quote, err := calc.Compute(context.Background(), []LineInput{
		{UnitPriceCents: 1500, Quantity: 2},
		{UnitPriceCents: 700, Quantity: 1},
	}, nil)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	if quote.SubtotalCents != 3700 {
		t.Fatalf("expected subtotal 3700, got %d", quote.SubtotalCents)
	}
	if quote.ShippingCents != 5000 {
		t.Fatalf("expected shipping 5000, got %d", quote.ShippingCents)
	}
	if quote.DiscountCents != 0 || quote.Promo != nil {
		t.Fatalf("expected no discount, got %+v", quote)
	}
	if quote.TotalCents != 8700 {
		t.Fatalf("expected total 8700, got %d", quote.TotalCents)
	}
}

func TestComputeWithPercentPromo(t *testing.T) {
	t.Parallel()

	repo := &stubPromoRepo{promo: &models.Promo{Code: "SAVE10", Percent: 10, Active: true}}
	calc := NewCalculator(repo, config.ShippingConfig{FlatRateCents: 5000})

	// 200.00 subtotal, 10% discount, 50.00 shipping -> 230.00 total.
	quote, err := calc.Compute(context.Background(), []LineInput{
		{UnitPriceCents: 10000, Quantity: 2},
	}, strPtr("SAVE10"))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	if quote.SubtotalCents != 20000 {
		t.Fatalf("expected subtotal 20000, got %d", quote.SubtotalCents)
	}
	if quote.DiscountCents != 2000 {
		t.Fatalf("expected discount 2000, got %d", quote.DiscountCents)
	}
	if quote.TotalCents != 23000 {
		t.Fatalf("expected total 23000, got %d", quote.TotalCents)
	}
	if quote.Promo == nil || quote.Promo.Code != "SAVE10" || quote.Promo.Percent != 10 {
		t.Fatalf("unexpected promo snapshot: %+v", quote.Promo)
	}
}

func TestComputeRoundsDiscountHalfUp(t *testing.T) {
	t.Parallel()

	repo := &stubPromoRepo{promo: &models.Promo{Code: "ODD", Percent: 3, Active: true}}
	calc := NewCalculator(repo, config.ShippingConfig{FlatRateCents: 0})

	// 3% of 1050 = 31.5 cents, rounds to 32.
	quote, err := calc.Compute(context.Background(), []LineInput{
		{UnitPriceCents: 1050, Quantity: 1},
	}, strPtr("ODD"))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if quote.DiscountCents != 32 {
		t.Fatalf("expected discount 32, got %d", quote.DiscountCents)
	}
}

func TestComputePromoRefusals(t *testing.T) {
	t.Parallel()

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	cases := []struct {
		name   string
		promo  *models.Promo
		err    error
		reason string
	}{
		{"unknown code", nil, gorm.ErrRecordNotFound, "is not a valid code"},
		{"inactive", &models.Promo{Code: "X", Percent: 10, Active: false}, nil, "is no longer active"},
		{"not started", &models.Promo{Code: "X", Percent: 10, Active: true, StartsAt: &future}, nil, "is not active yet"},
		{"expired", &models.Promo{Code: "X", Percent: 10, Active: true, EndsAt: &past}, nil, "has expired"},
		{"bad percent", &models.Promo{Code: "X", Percent: 0, Active: true}, nil, "has an invalid discount"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			calc := NewCalculator(&stubPromoRepo{promo: tc.promo, err: tc.err}, config.ShippingConfig{FlatRateCents: 100})
			_, err := calc.Compute(context.Background(), []LineInput{{UnitPriceCents: 100, Quantity: 1}}, strPtr("X"))
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
			details, ok := typed.Details().(map[string]any)
			if !ok || details["reason"] != tc.reason {
				t.Fatalf("expected reason %q, got %v", tc.reason, typed.Details())
			}
		})
	}
}

func TestComputeEmptySnapshot(t *testing.T) {
	t.Parallel()

	calc := NewCalculator(nil, config.ShippingConfig{FlatRateCents: 5000})
	quote, err := calc.Compute(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if quote.SubtotalCents != 0 || quote.ShippingCents != 0 || quote.TotalCents != 0 {
		t.Fatalf("expected zero quote for empty snapshot, got %+v", quote)
	}
}

func TestComputeTotalNeverNegative(t *testing.T) {
	t.Parallel()

	repo := &stubPromoRepo{promo: &models.Promo{Code: "ALL", Percent: 100, Active: true}}
	calc := NewCalculator(repo, config.ShippingConfig{FlatRateCents: 0})

	quote, err := calc.Compute(context.Background(), []LineInput{
		{UnitPriceCents: 500, Quantity: 1},
	}, strPtr("ALL"))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if quote.TotalCents != 0 {
		t.Fatalf("expected total clamped at 0, got %d", quote.TotalCents)
	}
	if quote.TotalCents < 0 {
		t.Fatalf("total must never be negative, got %d", quote.TotalCents)
	}
}
