package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/sellora/sellora-backend/api/middleware"
	"github.com/sellora/sellora-backend/api/responses"
	"github.com/sellora/sellora-backend/api/validators"
	cartsvc "github.com/sellora/sellora-backend/internal/cart"
	"github.com/sellora/sellora-backend/internal/pricing"
	"github.com/sellora/sellora-backend/pkg/auth/session"
	pkgerrors "github.com/sellora/sellora-backend/pkg/errors"
	"github.com/sellora/sellora-backend/pkg/logger"
	"github.com/sellora/sellora-backend/pkg/types"
)

type assetResolver interface {
	PublicURL(path string) string
}

type cartLineResponse struct {
	ProductID      uuid.UUID `json:"product_id"`
	SellerID       uuid.UUID `json:"seller_id"`
	SKU            string    `json:"sku"`
	Title          string    `json:"title"`
	Category       string    `json:"category,omitempty"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	Quantity       int       `json:"quantity"`
	LineTotalCents int64     `json:"line_total_cents"`
	Stock          int       `json:"stock"`
	ImageURL       string    `json:"image_url,omitempty"`
}

type cartResponse struct {
	Lines              []cartLineResponse `json:"lines"`
	ExcludedProductIDs []uuid.UUID        `json:"excluded_product_ids,omitempty"`
}

func newCartResponse(snapshot *cartsvc.Snapshot, assets assetResolver) cartResponse {
	out := cartResponse{
		Lines:              make([]cartLineResponse, 0, len(snapshot.Lines)),
		ExcludedProductIDs: snapshot.ExcludedProductIDs,
	}
	for _, line := range snapshot.Lines {
		resp := cartLineResponse{
			ProductID:      line.ProductID,
			SellerID:       line.SellerID,
			SKU:            line.SKU,
			Title:          line.Title,
			Category:       line.Category,
			UnitPriceCents: line.UnitPriceCents,
			Quantity:       line.Quantity,
			LineTotalCents: line.UnitPriceCents * int64(line.Quantity),
			Stock:          line.Stock,
		}
		if assets != nil && line.ImagePath != nil {
			resp.ImageURL = assets.PublicURL(*line.ImagePath)
		}
		out.Lines = append(out.Lines, resp)
	}
	return out
}

// CartGet returns the caller's cart with unavailable products split out.
func CartGet(svc cartsvc.Service, assets assetResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.ActorFromContext(r.Context())

		snapshot, err := svc.Snapshot(r.Context(), actor.OwnerKey)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(snapshot, assets))
	}
}

type addCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

// CartAdd adds a product or increments an existing line.
func CartAdd(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.ActorFromContext(r.Context())

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		line, err := svc.AddOrIncrement(r.Context(), actor.OwnerKey, payload.ProductID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"product_id": line.ProductID,
			"quantity":   line.Quantity,
		})
	}
}

type setCartQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// CartSetQuantity sets a line's quantity; zero removes the line.
func CartSetQuantity(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.ActorFromContext(r.Context())

		productID, err := validators.PathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setCartQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		line, err := svc.SetQuantity(r.Context(), actor.OwnerKey, productID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if line == nil {
			responses.WriteSuccess(w, map[string]any{"product_id": productID, "quantity": 0})
			return
		}
		responses.WriteSuccess(w, map[string]any{"product_id": line.ProductID, "quantity": line.Quantity})
	}
}

// CartRemove deletes a line; removing an absent line succeeds.
func CartRemove(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.ActorFromContext(r.Context())

		productID, err := validators.PathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Remove(r.Context(), actor.OwnerKey, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"removed": true})
	}
}

// CartCount returns the line count shown on the cart badge.
func CartCount(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.ActorFromContext(r.Context())

		count, err := svc.Count(r.Context(), actor.OwnerKey)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"count": count})
	}
}

type cartQuoteRequest struct {
	PromoCode *string `json:"promo_code,omitempty"`
}

// CartQuote prices the current cart, optionally with a promo code. The
// preview uses the same calculator checkout does, so the numbers match.
func CartQuote(svc cartsvc.Service, calc *pricing.Calculator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.ActorFromContext(r.Context())

		var payload cartQuoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := svc.Snapshot(r.Context(), actor.OwnerKey)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines := make([]pricing.LineInput, 0, len(snapshot.Lines))
		for _, line := range snapshot.Lines {
			lines = append(lines, pricing.LineInput{
				UnitPriceCents: line.UnitPriceCents,
				Quantity:       line.Quantity,
			})
		}

		quote, err := calc.Compute(r.Context(), lines, payload.PromoCode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

type cartMergeRequest struct {
	SessionToken string `json:"session_token" validate:"required"`
}

type cartMergeResponse struct {
	MergedLines int                `json:"merged_lines"`
	Warnings    types.CartWarnings `json:"warnings,omitempty"`
}

// CartMerge folds an anonymous session cart into the signed-in caller's
// cart. Run once at sign-in.
func CartMerge(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.ActorFromContext(r.Context())

		var payload cartMergeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !session.IsToken(payload.SessionToken) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "session_token is not a session token"))
			return
		}

		result, err := svc.MergeInto(r.Context(), payload.SessionToken, actor.OwnerKey)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartMergeResponse{
			MergedLines: result.MergedLines,
			Warnings:    result.Warnings,
		})
	}
}
