package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sellora/sellora-backend/pkg/db/models"
	"github.com/sellora/sellora-backend/pkg/enums"
	pkgerrors "github.com/sellora/sellora-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:ledger_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}); err != nil {
		t.Fatalf("migrate products: %v", err)
	}
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, stock int) uuid.UUID {
	t.Helper()
	product := models.Product{
		ID:         uuid.New(),
		SellerID:   uuid.New(),
		SKU:        "SKU-1",
		Title:      "Widget",
		PriceCents: 1500,
		Stock:      stock,
		Status:     enums.ProductStatusActive,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product.ID
}

func loadProduct(t *testing.T, db *gorm.DB, id uuid.UUID) models.Product {
	t.Helper()
	var product models.Product
	if err := db.First(&product, "id = ?", id).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	return product
}

func TestReserveDecrementsStock(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	ledger := NewLedger(nil)
	productID := seedProduct(t, db, 5)

	if err := ledger.Reserve(ctx, db, productID, 3); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	product := loadProduct(t, db, productID)
	if product.Stock != 2 {
		t.Fatalf("expected stock 2, got %d", product.Stock)
	}
	if product.Status != enums.ProductStatusActive {
		t.Fatalf("expected product to stay active, got %s", product.Status)
	}
}

func TestReserveDrainingStockDeactivates(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	ledger := NewLedger(nil)
	productID := seedProduct(t, db, 2)

	if err := ledger.Reserve(ctx, db, productID, 2); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	product := loadProduct(t, db, productID)
	if product.Stock != 0 {
		t.Fatalf("expected stock 0, got %d", product.Stock)
	}
	if product.Status != enums.ProductStatusInactive {
		t.Fatalf("expected inactive status, got %s", product.Status)
	}
	if product.InactiveReason == nil || *product.InactiveReason != enums.InactiveReasonOutOfStock {
		t.Fatalf("expected out_of_stock reason, got %v", product.InactiveReason)
	}
}

func TestReserveInsufficientStock(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	ledger := NewLedger(nil)
	productID := seedProduct(t, db, 1)

	err := ledger.Reserve(ctx, db, productID, 3)
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("unexpected error: %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", typed.Details())
	}
	if details["available"] != 1 {
		t.Fatalf("expected available 1, got %v", details["available"])
	}

	// No partial decrement.
	if product := loadProduct(t, db, productID); product.Stock != 1 {
		t.Fatalf("expected stock untouched at 1, got %d", product.Stock)
	}
}

func TestReserveUnknownProduct(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ledger := NewLedger(nil)

	err := ledger.Reserve(context.Background(), db, uuid.New(), 1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReserveSellerHoldProduct(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	ledger := NewLedger(nil)
	productID := seedProduct(t, db, 4)

	reason := enums.InactiveReasonSellerHold
	if err := db.Model(&models.Product{}).Where("id = ?", productID).
		Updates(map[string]any{"status": enums.ProductStatusInactive, "inactive_reason": reason}).Error; err != nil {
		t.Fatalf("hold product: %v", err)
	}

	err := ledger.Reserve(ctx, db, productID, 1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if product := loadProduct(t, db, productID); product.Stock != 4 {
		t.Fatalf("expected stock untouched at 4, got %d", product.Stock)
	}
}

func TestReleaseReactivatesSoldOutProduct(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	ledger := NewLedger(nil)
	productID := seedProduct(t, db, 1)

	if err := ledger.Reserve(ctx, db, productID, 1); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := ledger.Release(ctx, db, productID, 1); err != nil {
		t.Fatalf("release: %v", err)
	}

	product := loadProduct(t, db, productID)
	if product.Stock != 1 {
		t.Fatalf("expected stock 1, got %d", product.Stock)
	}
	if product.Status != enums.ProductStatusActive {
		t.Fatalf("expected reactivated product, got %s", product.Status)
	}
	if product.InactiveReason != nil {
		t.Fatalf("expected cleared inactive reason, got %v", *product.InactiveReason)
	}
}

func TestReleaseKeepsSellerHold(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	ledger := NewLedger(nil)
	productID := seedProduct(t, db, 0)

	reason := enums.InactiveReasonSellerHold
	if err := db.Model(&models.Product{}).Where("id = ?", productID).
		Updates(map[string]any{"status": enums.ProductStatusInactive, "inactive_reason": reason}).Error; err != nil {
		t.Fatalf("hold product: %v", err)
	}

	if err := ledger.Release(ctx, db, productID, 2); err != nil {
		t.Fatalf("release: %v", err)
	}

	product := loadProduct(t, db, productID)
	if product.Stock != 2 {
		t.Fatalf("expected stock 2, got %d", product.Stock)
	}
	if product.Status != enums.ProductStatusInactive {
		t.Fatalf("seller hold must survive a release, got %s", product.Status)
	}
}

func TestReleaseDeletedProductIsNoop(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	ledger := NewLedger(nil)
	productID := seedProduct(t, db, 0)

	if err := db.Model(&models.Product{}).Where("id = ?", productID).
		Update("status", enums.ProductStatusDeleted).Error; err != nil {
		t.Fatalf("delete product: %v", err)
	}

	if err := ledger.Release(ctx, db, productID, 3); err != nil {
		t.Fatalf("release after delete: %v", err)
	}
	if product := loadProduct(t, db, productID); product.Stock != 0 {
		t.Fatalf("deleted product stock must stay 0, got %d", product.Stock)
	}
}

func TestDeactivateIfEmpty(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	ledger := NewLedger(nil)

	withStock := seedProduct(t, db, 3)
	flipped, err := ledger.DeactivateIfEmpty(ctx, db, withStock)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if flipped {
		t.Fatal("product with stock must not be deactivated")
	}

	empty := seedProduct(t, db, 0)
	flipped, err = ledger.DeactivateIfEmpty(ctx, db, empty)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if !flipped {
		t.Fatal("expected empty product to be deactivated")
	}
	if product := loadProduct(t, db, empty); product.Status != enums.ProductStatusInactive {
		t.Fatalf("expected inactive, got %s", product.Status)
	}
}

func TestRestockForceReactivates(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	ledger := NewLedger(nil)
	productID := seedProduct(t, db, 0)

	reason := enums.InactiveReasonSellerHold
	if err := db.Model(&models.Product{}).Where("id = ?", productID).
		Updates(map[string]any{"status": enums.ProductStatusInactive, "inactive_reason": reason}).Error; err != nil {
		t.Fatalf("hold product: %v", err)
	}

	if err := ledger.Restock(ctx, db, productID, 10); err != nil {
		t.Fatalf("restock: %v", err)
	}

	product := loadProduct(t, db, productID)
	if product.Stock != 10 {
		t.Fatalf("expected stock 10, got %d", product.Stock)
	}
	if product.Status != enums.ProductStatusActive {
		t.Fatalf("restock must reactivate, got %s", product.Status)
	}
}

func TestRestockValidation(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ledger := NewLedger(nil)

	if err := ledger.Restock(context.Background(), db, uuid.New(), 0); err == nil {
		t.Fatal("expected validation error for zero quantity")
	}
	err := ledger.Restock(context.Background(), db, uuid.New(), 5)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestConcurrentReservesNeverOversell(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	ledger := NewLedger(nil)
	productID := seedProduct(t, db, 1)

	succeeded := 0
	for i := 0; i < 2; i++ {
		err := db.Transaction(func(tx *gorm.DB) error {
			return ledger.Reserve(ctx, tx, productID, 1)
		})
		if err == nil {
			succeeded++
			continue
		}
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if succeeded != 1 {
		t.Fatalf("expected exactly one reserve to succeed, got %d", succeeded)
	}
	if product := loadProduct(t, db, productID); product.Stock != 0 {
		t.Fatalf("expected stock 0, got %d", product.Stock)
	}
}
