// Package promos exposes read-only access to discount codes. Codes are
// provisioned out of band; the engine only looks them up.
package promos

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/sellora/sellora-backend/pkg/db/models"
)

// Repository looks up promo codes.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByCode(ctx context.Context, code string) (*models.Promo, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a promo repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// FindByCode matches codes case-insensitively. Returns gorm.ErrRecordNotFound
// when no promo exists for the code.
func (r *repository) FindByCode(ctx context.Context, code string) (*models.Promo, error) {
	var promo models.Promo
	err := r.db.WithContext(ctx).
		Where("lower(code) = ?", strings.ToLower(strings.TrimSpace(code))).
		First(&promo).Error
	if err != nil {
		return nil, err
	}
	return &promo, nil
}
