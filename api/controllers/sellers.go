package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sellora/sellora-backend/api/middleware"
	"github.com/sellora/sellora-backend/api/responses"
	"github.com/sellora/sellora-backend/api/validators"
	productsvc "github.com/sellora/sellora-backend/internal/products"
	sellersvc "github.com/sellora/sellora-backend/internal/sellers"
	"github.com/sellora/sellora-backend/pkg/logger"
	"github.com/sellora/sellora-backend/pkg/types"
)

type sellerProfileRequest struct {
	Name        string         `json:"name" validate:"required"`
	Slug        string         `json:"slug,omitempty"`
	Description *string        `json:"description,omitempty"`
	Email       *string        `json:"email,omitempty" validate:"omitempty,email"`
	Phone       *string        `json:"phone,omitempty"`
	Address     *types.Address `json:"address,omitempty"`
	LogoPath    *string        `json:"logo_path,omitempty"`
}

// SellerProfileCreate registers the caller's seller profile.
func SellerProfileCreate(svc sellersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.ActorFromContext(r.Context())

		var payload sellerProfileRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Register(r.Context(), sellersvc.RegisterInput{
			SellerID:    actor.UserID,
			Name:        payload.Name,
			Slug:        payload.Slug,
			Description: payload.Description,
			Email:       payload.Email,
			Phone:       payload.Phone,
			Address:     payload.Address,
			LogoPath:    payload.LogoPath,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

type sellerProfileUpdateRequest struct {
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	Email       *string        `json:"email,omitempty" validate:"omitempty,email"`
	Phone       *string        `json:"phone,omitempty"`
	Address     *types.Address `json:"address,omitempty"`
	LogoPath    *string        `json:"logo_path,omitempty"`
}

// SellerProfileUpdate applies a partial update to the caller's profile.
func SellerProfileUpdate(svc sellersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.ActorFromContext(r.Context())

		var payload sellerProfileUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Update(r.Context(), actor.UserID, sellersvc.UpdateInput{
			Name:        payload.Name,
			Description: payload.Description,
			Email:       payload.Email,
			Phone:       payload.Phone,
			Address:     payload.Address,
			LogoPath:    payload.LogoPath,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// SellerProfileGet returns the caller's own profile.
func SellerProfileGet(svc sellersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.ActorFromContext(r.Context())

		view, err := svc.Get(r.Context(), actor.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// SellerPublicGet resolves a storefront by slug.
func SellerPublicGet(svc sellersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type createProductRequest struct {
	SKU                string   `json:"sku" validate:"required"`
	Title              string   `json:"title" validate:"required"`
	Category           string   `json:"category,omitempty"`
	Description        *string  `json:"description,omitempty"`
	GalleryKeys        []string `json:"gallery_keys,omitempty"`
	PriceCents         int64    `json:"price_cents" validate:"gte=0"`
	OriginalPriceCents *int64   `json:"original_price_cents,omitempty" validate:"omitempty,gte=0"`
	Stock              int      `json:"stock" validate:"gte=0"`
	ImagePath          *string  `json:"image_path,omitempty"`
}

// SellerProductCreate lists a new product for the caller.
func SellerProductCreate(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.ActorFromContext(r.Context())

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Create(r.Context(), productsvc.CreateProductInput{
			SellerID:           actor.UserID,
			SKU:                payload.SKU,
			Title:              payload.Title,
			Category:           payload.Category,
			Description:        payload.Description,
			GalleryKeys:        payload.GalleryKeys,
			PriceCents:         payload.PriceCents,
			OriginalPriceCents: payload.OriginalPriceCents,
			Stock:              payload.Stock,
			ImagePath:          payload.ImagePath,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

type updateProductRequest struct {
	Title              *string  `json:"title,omitempty"`
	Category           *string  `json:"category,omitempty"`
	Description        *string  `json:"description,omitempty"`
	GalleryKeys        []string `json:"gallery_keys,omitempty"`
	PriceCents         *int64   `json:"price_cents,omitempty" validate:"omitempty,gte=0"`
	OriginalPriceCents *int64   `json:"original_price_cents,omitempty" validate:"omitempty,gte=0"`
	ImagePath          *string  `json:"image_path,omitempty"`
}

// SellerProductUpdate applies a partial update to one of the caller's
// listings. Stock is not updatable here; replenishment goes through restock.
func SellerProductUpdate(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.ActorFromContext(r.Context())

		productID, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Update(r.Context(), actor.UserID, productID, productsvc.UpdateProductInput{
			Title:              payload.Title,
			Category:           payload.Category,
			Description:        payload.Description,
			GalleryKeys:        payload.GalleryKeys,
			PriceCents:         payload.PriceCents,
			OriginalPriceCents: payload.OriginalPriceCents,
			ImagePath:          payload.ImagePath,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type restockRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// SellerProductRestock adds stock through the ledger, reactivating the
// listing.
func SellerProductRestock(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.ActorFromContext(r.Context())

		productID, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload restockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Restock(r.Context(), actor.UserID, productID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// SellerProductHold pulls a listing from sale without touching stock.
func SellerProductHold(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.ActorFromContext(r.Context())

		productID, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Hold(r.Context(), actor.UserID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"held": true})
	}
}

// SellerProductDelete soft-deletes a listing and pulls it from every cart.
func SellerProductDelete(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.ActorFromContext(r.Context())

		productID, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SoftDelete(r.Context(), actor.UserID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"deleted": true})
	}
}

// SellerProductsList returns the caller's listings, held and out-of-stock
// included.
func SellerProductsList(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.ActorFromContext(r.Context())

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListForSeller(r.Context(), actor.UserID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, productPageResponse{Products: page.Products, NextCursor: page.NextCursor})
	}
}
