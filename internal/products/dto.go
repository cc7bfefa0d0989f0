package products

import (
	"time"

	"github.com/google/uuid"

	"github.com/sellora/sellora-backend/pkg/db/models"
	"github.com/sellora/sellora-backend/pkg/enums"
)

// CreateProductInput carries a new listing from the seller surface.
type CreateProductInput struct {
	SellerID           uuid.UUID
	SKU                string
	Title              string
	Category           string
	Description        *string
	GalleryKeys        []string
	PriceCents         int64
	OriginalPriceCents *int64
	Stock              int
	ImagePath          *string
}

// UpdateProductInput carries a partial listing update. Nil fields are left
// untouched. Stock is deliberately absent: replenishment goes through
// Restock so the ledger rules apply.
type UpdateProductInput struct {
	Title              *string
	Category           *string
	Description        *string
	GalleryKeys        []string
	PriceCents         *int64
	OriginalPriceCents *int64
	ImagePath          *string
}

// ProductView is the public read model with resolved asset URLs.
type ProductView struct {
	ID                 uuid.UUID           `json:"id"`
	SellerID           uuid.UUID           `json:"seller_id"`
	SKU                string              `json:"sku"`
	Title              string              `json:"title"`
	Category           string              `json:"category,omitempty"`
	Description        *string             `json:"description,omitempty"`
	PriceCents         int64               `json:"price_cents"`
	OriginalPriceCents *int64              `json:"original_price_cents,omitempty"`
	Stock              int                 `json:"stock"`
	Status             enums.ProductStatus `json:"status"`
	ImageURL           string              `json:"image_url,omitempty"`
	GalleryURLs        []string            `json:"gallery_urls,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
}

type assetResolver interface {
	PublicURL(path string) string
}

func toView(product *models.Product, assets assetResolver) ProductView {
	view := ProductView{
		ID:                 product.ID,
		SellerID:           product.SellerID,
		SKU:                product.SKU,
		Title:              product.Title,
		Category:           product.Category,
		Description:        product.Description,
		PriceCents:         product.PriceCents,
		OriginalPriceCents: product.OriginalPriceCents,
		Stock:              product.Stock,
		Status:             product.Status,
		CreatedAt:          product.CreatedAt,
	}
	if assets != nil {
		if product.ImagePath != nil {
			view.ImageURL = assets.PublicURL(*product.ImagePath)
		}
		for _, key := range product.GalleryKeys {
			view.GalleryURLs = append(view.GalleryURLs, assets.PublicURL(key))
		}
	}
	return view
}
