// Package inventory owns every stock mutation. All writes are guarded
// single-statement UPDATEs so stock can never go negative, even under
// concurrent checkouts.
package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sellora/sellora-backend/pkg/enums"
	pkgerrors "github.com/sellora/sellora-backend/pkg/errors"
	"github.com/sellora/sellora-backend/pkg/metrics"
)

// Ledger performs stock reservations and releases inside a caller-owned
// transaction.
type Ledger struct {
	metrics *metrics.CheckoutMetrics
}

// NewLedger builds a ledger. Metrics may be nil.
func NewLedger(m *metrics.CheckoutMetrics) *Ledger {
	return &Ledger{metrics: m}
}

// Reserve decrements stock for a purchase. The decrement only lands when the
// product is active and has enough stock; a zero-row result is diagnosed by
// reloading the row so the caller gets a precise error. A reserve that drains
// the last unit flips the listing to inactive(out_of_stock) in the same
// transaction.
func (l *Ledger) Reserve(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock reservation")
	}
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "reservation quantity must be positive")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE products
		SET stock = stock - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = 'active' AND stock >= ?
	`, qty, productID, qty)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "reserve stock")
	}
	if res.RowsAffected == 0 {
		return l.diagnoseReserveFailure(ctx, tx, productID)
	}

	res = tx.WithContext(ctx).Exec(`
		UPDATE products
		SET status = 'inactive',
			inactive_reason = 'out_of_stock',
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND stock = 0 AND status = 'active'
	`, productID)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "deactivate drained product")
	}
	return nil
}

// Release returns stock after a reject, cancel, or rollback. A product that
// went inactive solely because it sold out comes back automatically once its
// stock is positive again; a seller hold is never overridden.
func (l *Ledger) Release(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock release")
	}
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if qty <= 0 {
		return nil
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE products
		SET stock = stock + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status != 'deleted'
	`, qty, productID)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "release stock")
	}
	if res.RowsAffected == 0 {
		// The product was deleted after the order was placed; the stock
		// has nowhere to go back to.
		return nil
	}

	res = tx.WithContext(ctx).Exec(`
		UPDATE products
		SET status = 'active',
			inactive_reason = NULL,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND stock > 0 AND status = 'inactive' AND inactive_reason = 'out_of_stock'
	`, productID)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "reactivate restocked product")
	}
	return nil
}

// DeactivateIfEmpty flips an active listing to inactive(out_of_stock) only
// when its stock is exactly zero. Returns whether the flip happened.
func (l *Ledger) DeactivateIfEmpty(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (bool, error) {
	if tx == nil {
		return false, pkgerrors.New(pkgerrors.CodeDependency, "transaction required")
	}
	if productID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE products
		SET status = 'inactive',
			inactive_reason = 'out_of_stock',
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND stock = 0 AND status = 'active'
	`, productID)
	if res.Error != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "deactivate empty product")
	}
	return res.RowsAffected > 0, nil
}

// Restock is the seller-facing replenishment path. It adds stock and
// force-reactivates the listing regardless of why it was inactive.
func (l *Ledger) Restock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for restock")
	}
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "restock quantity must be positive")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE products
		SET stock = stock + ?,
			status = 'active',
			inactive_reason = NULL,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status != 'deleted'
	`, qty, productID)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "restock product")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.NotFoundEntity("product")
	}
	return nil
}

func (l *Ledger) diagnoseReserveFailure(ctx context.Context, tx *gorm.DB, productID uuid.UUID) error {
	var row struct {
		Stock  int
		Status enums.ProductStatus
	}
	err := tx.WithContext(ctx).
		Table("products").
		Select("stock", "status").
		Where("id = ?", productID).
		Take(&row).Error
	if err == gorm.ErrRecordNotFound {
		return pkgerrors.NotFoundEntity("product")
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product for diagnosis")
	}
	if row.Status == enums.ProductStatusDeleted {
		return pkgerrors.NotFoundEntity("product")
	}
	l.metrics.IncStockConflict("reserve")
	if row.Status.Sellable() || row.Stock == 0 {
		return pkgerrors.InsufficientStock(row.Stock)
	}
	return pkgerrors.New(pkgerrors.CodeConflict, "product is not available for purchase")
}
