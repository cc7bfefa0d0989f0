package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sellora/sellora-backend/pkg/types"
)

// Seller represents the canonical storefront tenant.
type Seller struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Name        string         `gorm:"column:name;not null"`
	Slug        string         `gorm:"column:slug;not null;uniqueIndex"`
	Description *string        `gorm:"column:description"`
	Email       *string        `gorm:"column:email"`
	Phone       *string        `gorm:"column:phone"`
	Address     *types.Address `gorm:"column:address;type:jsonb;serializer:json"`
	LogoPath    *string        `gorm:"column:logo_path"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
