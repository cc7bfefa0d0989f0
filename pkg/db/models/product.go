package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/sellora/sellora-backend/pkg/enums"
)

// Product represents a seller listing. Stock is the authoritative on-hand
// count; every decrement goes through a guarded UPDATE so it can never go
// negative. OriginalPriceCents is the optional pre-discount list price shown
// struck through next to the selling price.
type Product struct {
	ID                 uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	SellerID           uuid.UUID             `gorm:"column:seller_id;type:uuid;not null;index;uniqueIndex:ux_products_seller_sku"`
	SKU                string                `gorm:"column:sku;not null;uniqueIndex:ux_products_seller_sku"`
	Title              string                `gorm:"column:title;not null"`
	Category           string                `gorm:"column:category"`
	Description        *string               `gorm:"column:description"`
	GalleryKeys        pq.StringArray        `gorm:"column:gallery_keys;type:text[]"`
	PriceCents         int64                 `gorm:"column:price_cents;not null"`
	OriginalPriceCents *int64                `gorm:"column:original_price_cents"`
	Stock              int                   `gorm:"column:stock;not null;default:0"`
	Status             enums.ProductStatus   `gorm:"column:status;type:product_status;not null;default:'active'"`
	InactiveReason     *enums.InactiveReason `gorm:"column:inactive_reason;type:inactive_reason"`
	ImagePath          *string               `gorm:"column:image_path"`
	CreatedAt          time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
