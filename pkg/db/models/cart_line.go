package models

import (
	"time"

	"github.com/google/uuid"
)

// CartLine is one product entry in an owner's cart. OwnerKey is either a
// session token for anonymous buyers or a stable identity key after sign-in.
// Price, name, category, and image are captured when the line is created;
// the priced cart view and the order freeze read these snapshot fields, not
// the live product row, so a catalog edit never reprices a cart behind the
// shopper's back.
type CartLine struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OwnerKey       string    `gorm:"column:owner_key;not null;uniqueIndex:idx_cart_owner_product"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_cart_owner_product"`
	SellerID       uuid.UUID `gorm:"column:seller_id;type:uuid;not null"`
	Quantity       int       `gorm:"column:quantity;not null"`
	UnitPriceCents int64     `gorm:"column:unit_price_cents;not null"`
	ProductName    string    `gorm:"column:product_name;not null"`
	Category       string    `gorm:"column:category"`
	ImagePath      *string   `gorm:"column:image_path"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
