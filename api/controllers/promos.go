package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sellora/sellora-backend/api/responses"
	"github.com/sellora/sellora-backend/internal/pricing"
	pkgerrors "github.com/sellora/sellora-backend/pkg/errors"
	"github.com/sellora/sellora-backend/pkg/logger"
)

// PromoPreview validates a promo code without a cart, so storefronts can
// show eligibility before checkout.
func PromoPreview(calc *pricing.Calculator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		if code == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "promo code required"))
			return
		}

		applied, err := calc.Validate(r.Context(), code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"code":    applied.Code,
			"percent": applied.Percent,
			"valid":   true,
		})
	}
}
