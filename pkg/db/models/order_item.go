package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem snapshots a purchased line at placement time so the order stays
// readable after the product changes or disappears.
type OrderItem struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OrderID           uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID         uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	SellerID          uuid.UUID `gorm:"column:seller_id;type:uuid;not null"`
	SKU               string    `gorm:"column:sku;not null"`
	Title             string    `gorm:"column:title;not null"`
	UnitPriceCents    int64     `gorm:"column:unit_price_cents;not null"`
	Quantity          int       `gorm:"column:quantity;not null"`
	LineSubtotalCents int64     `gorm:"column:line_subtotal_cents;not null"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
}
