package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/sellora/sellora-backend/pkg/enums"
)

// OrderPlacedEvent signals a new order committed at checkout.
type OrderPlacedEvent struct {
	OrderID    uuid.UUID  `json:"order_id"`
	OwnerKey   string     `json:"owner_key"`
	SellerID   *uuid.UUID `json:"seller_id,omitempty"`
	TotalCents int64      `json:"total_cents"`
	ItemCount  int        `json:"item_count"`
}

// OrderStateChangedEvent is emitted on every lifecycle transition.
type OrderStateChangedEvent struct {
	OrderID  uuid.UUID         `json:"order_id"`
	OwnerKey string            `json:"owner_key"`
	From     enums.OrderStatus `json:"from"`
	To       enums.OrderStatus `json:"to"`
	Reason   string            `json:"reason,omitempty"`
}

// OrderCanceledEvent records a cancellation with its stock compensation.
type OrderCanceledEvent struct {
	OrderID       uuid.UUID `json:"order_id"`
	OwnerKey      string    `json:"owner_key"`
	CanceledAt    time.Time `json:"canceled_at"`
	RestockedQtys int       `json:"restocked_qtys"`
	Reason        string    `json:"reason,omitempty"`
}

// ProductDeactivatedEvent is emitted when stock reaches zero or a seller
// pulls a listing.
type ProductDeactivatedEvent struct {
	ProductID uuid.UUID            `json:"product_id"`
	SellerID  uuid.UUID            `json:"seller_id"`
	Reason    enums.InactiveReason `json:"reason"`
}

// ProductRestockedEvent is emitted when a listing comes back in stock.
type ProductRestockedEvent struct {
	ProductID uuid.UUID `json:"product_id"`
	SellerID  uuid.UUID `json:"seller_id"`
	Stock     int       `json:"stock"`
}

// CartMergedEvent reports the outcome of folding a session cart into an
// identity cart.
type CartMergedEvent struct {
	SourceOwnerKey string `json:"source_owner_key"`
	TargetOwnerKey string `json:"target_owner_key"`
	MergedLines    int    `json:"merged_lines"`
	ClampedLines   int    `json:"clamped_lines"`
}

// NotificationRequestedEvent tells the worker to materialize an in-app
// notification (and send best-effort email).
type NotificationRequestedEvent struct {
	OwnerKey string                 `json:"owner_key"`
	OrderID  *uuid.UUID             `json:"order_id,omitempty"`
	Type     enums.NotificationType `json:"type"`
	Title    string                 `json:"title"`
	Message  string                 `json:"message"`
}
