package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sellora/sellora-backend/pkg/db/models"
	"github.com/sellora/sellora-backend/pkg/enums"
)

// Repository persists cart lines keyed by owner.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindLine(ctx context.Context, ownerKey string, productID uuid.UUID) (*models.CartLine, error)
	ListLines(ctx context.Context, ownerKey string) ([]models.CartLine, error)
	Insert(ctx context.Context, line *models.CartLine) error
	UpdateQuantityGuarded(ctx context.Context, lineID uuid.UUID, fromQty, toQty int) (bool, error)
	DeleteLine(ctx context.Context, ownerKey string, productID uuid.UUID) error
	DeleteAllForOwner(ctx context.Context, ownerKey string) error
	PruneUnavailable(ctx context.Context, ownerKey string) (int64, error)
	Count(ctx context.Context, ownerKey string) (int64, error)
	SnapshotRows(ctx context.Context, ownerKey string) ([]SnapshotRow, error)
}

// SnapshotRow joins the add-time snapshot stored on a cart line (price,
// name, category, image) with the live product fields used only for
// availability checks (stock, status). Pricing and the order freeze must
// read the snapshot columns so catalog edits never leak into an open cart.
type SnapshotRow struct {
	ProductID      uuid.UUID
	SellerID       uuid.UUID
	SKU            string
	Title          string
	Category       string
	UnitPriceCents int64
	Quantity       int
	Stock          int
	Status         enums.ProductStatus
	ImagePath      *string
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a cart repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindLine(ctx context.Context, ownerKey string, productID uuid.UUID) (*models.CartLine, error) {
	var line models.CartLine
	err := r.db.WithContext(ctx).
		Where("owner_key = ? AND product_id = ?", ownerKey, productID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *repository) ListLines(ctx context.Context, ownerKey string) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := r.db.WithContext(ctx).
		Where("owner_key = ?", ownerKey).
		Order("created_at ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repository) Insert(ctx context.Context, line *models.CartLine) error {
	return r.db.WithContext(ctx).Create(line).Error
}

// UpdateQuantityGuarded only lands when the stored quantity still matches
// fromQty. Returns whether a row was updated.
func (r *repository) UpdateQuantityGuarded(ctx context.Context, lineID uuid.UUID, fromQty, toQty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.CartLine{}).
		Where("id = ? AND quantity = ?", lineID, fromQty).
		Update("quantity", toQty)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) DeleteLine(ctx context.Context, ownerKey string, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("owner_key = ? AND product_id = ?", ownerKey, productID).
		Delete(&models.CartLine{}).Error
}

func (r *repository) DeleteAllForOwner(ctx context.Context, ownerKey string) error {
	return r.db.WithContext(ctx).
		Where("owner_key = ?", ownerKey).
		Delete(&models.CartLine{}).Error
}

// PruneUnavailable drops the owner's lines whose product has been deleted or
// no longer exists. Inactive products are kept; they come back when restocked.
func (r *repository) PruneUnavailable(ctx context.Context, ownerKey string) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		DELETE FROM cart_lines
		WHERE owner_key = ?
		AND NOT EXISTS (
			SELECT 1 FROM products p
			WHERE p.id = cart_lines.product_id AND p.status != 'deleted'
		)
	`, ownerKey)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repository) Count(ctx context.Context, ownerKey string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CartLine{}).
		Where("owner_key = ?", ownerKey).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) SnapshotRows(ctx context.Context, ownerKey string) ([]SnapshotRow, error) {
	var rows []SnapshotRow
	err := r.db.WithContext(ctx).
		Table("cart_lines").
		Select(`cart_lines.product_id, cart_lines.quantity,
			cart_lines.unit_price_cents, cart_lines.product_name AS title,
			cart_lines.category, cart_lines.image_path,
			p.seller_id, p.sku, p.stock, p.status`).
		Joins("JOIN products p ON p.id = cart_lines.product_id").
		Where("cart_lines.owner_key = ?", ownerKey).
		Order("cart_lines.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
