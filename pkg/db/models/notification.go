package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sellora/sellora-backend/pkg/enums"
)

// Notification stores in-app notification payloads scoped to an owner key
// (buyer) or seller.
type Notification struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	OwnerKey  string                 `gorm:"column:owner_key;not null;index"`
	Type      enums.NotificationType `gorm:"column:type;type:notification_type;not null"`
	Title     string                 `gorm:"column:title;not null"`
	Message   string                 `gorm:"column:message;not null"`
	OrderID   *uuid.UUID             `gorm:"column:order_id;type:uuid"`
	ReadAt    *time.Time             `gorm:"column:read_at"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
}
