package models

import (
	"time"

	"github.com/google/uuid"
)

// Promo is a percentage discount code with a validity window.
type Promo struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Code      string     `gorm:"column:code;not null;uniqueIndex"`
	Percent   int        `gorm:"column:percent;not null"`
	Active    bool       `gorm:"column:active;not null;default:true"`
	StartsAt  *time.Time `gorm:"column:starts_at"`
	EndsAt    *time.Time `gorm:"column:ends_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
