package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sellora/sellora-backend/pkg/enums"
	"github.com/sellora/sellora-backend/pkg/types"
)

// Order is the immutable record produced at checkout. Monetary fields are a
// snapshot of the quote the buyer accepted; later price or promo changes never
// touch a placed order.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OwnerKey        string              `gorm:"column:owner_key;not null;index"`
	SellerID        *uuid.UUID          `gorm:"column:seller_id;type:uuid;index"`
	Status          enums.OrderStatus   `gorm:"column:status;type:order_status;not null;default:'pending'"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;type:payment_method;not null;default:'cash'"`
	SubtotalCents   int64               `gorm:"column:subtotal_cents;not null"`
	DiscountCents   int64               `gorm:"column:discount_cents;not null;default:0"`
	ShippingCents   int64               `gorm:"column:shipping_cents;not null;default:0"`
	TotalCents      int64               `gorm:"column:total_cents;not null"`
	Promo           *types.AppliedPromo `gorm:"column:promo;type:jsonb;serializer:json"`
	ShippingAddress *types.Address      `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	Notes           *string             `gorm:"column:notes"`
	Items           []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ConfirmedAt     *time.Time          `gorm:"column:confirmed_at"`
	ShippedAt       *time.Time          `gorm:"column:shipped_at"`
	CanceledAt      *time.Time          `gorm:"column:canceled_at"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
