package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sellora/sellora-backend/internal/inventory"
	dbpkg "github.com/sellora/sellora-backend/pkg/db"
	"github.com/sellora/sellora-backend/pkg/db/models"
	"github.com/sellora/sellora-backend/pkg/enums"
	pkgerrors "github.com/sellora/sellora-backend/pkg/errors"
	"github.com/sellora/sellora-backend/pkg/outbox"
	"github.com/sellora/sellora-backend/pkg/pagination"
)

type staticResolver struct{}

func (staticResolver) PublicURL(path string) string {
	return "https://assets.test/" + path
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:products_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.CartLine{}, &models.OutboxEvent{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(
		NewRepository(db),
		inventory.NewLedger(nil),
		dbpkg.NewFromConn(db),
		outbox.NewService(outbox.NewRepository(db), nil),
		staticResolver{},
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCreateProduct(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	svc := newTestService(t, db)
	sellerID := uuid.New()

	image := "products/widget.png"
	originalPrice := int64(2500)
	view, err := svc.Create(ctx, CreateProductInput{
		SellerID:           sellerID,
		SKU:                "WGT-1",
		Title:              "Widget",
		Category:           "Tools",
		GalleryKeys:        []string{"products/widget-side.png"},
		PriceCents:         1500,
		OriginalPriceCents: &originalPrice,
		Stock:              10,
		ImagePath:          &image,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if view.Status != enums.ProductStatusActive {
		t.Fatalf("expected active, got %s", view.Status)
	}
	if view.ImageURL != "https://assets.test/products/widget.png" {
		t.Fatalf("unexpected image url %q", view.ImageURL)
	}
	if view.Category != "Tools" {
		t.Fatalf("expected category round-trip, got %q", view.Category)
	}
	if view.OriginalPriceCents == nil || *view.OriginalPriceCents != 2500 {
		t.Fatalf("expected original price 2500, got %v", view.OriginalPriceCents)
	}
	if len(view.GalleryURLs) != 1 || view.GalleryURLs[0] != "https://assets.test/products/widget-side.png" {
		t.Fatalf("unexpected gallery urls %v", view.GalleryURLs)
	}

	// SKU is unique per seller.
	_, err = svc.Create(ctx, CreateProductInput{SellerID: sellerID, SKU: "WGT-1", Title: "Other", PriceCents: 100})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for duplicate sku, got %v", err)
	}
}

func TestCreateProductWithZeroStockStartsInactive(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)

	view, err := svc.Create(context.Background(), CreateProductInput{
		SellerID:   uuid.New(),
		SKU:        "EMPTY-1",
		Title:      "Backorder",
		PriceCents: 900,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if view.Status != enums.ProductStatusInactive {
		t.Fatalf("expected inactive, got %s", view.Status)
	}
}

func TestUpdateProductOwnership(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	svc := newTestService(t, db)
	sellerID := uuid.New()

	view, err := svc.Create(ctx, CreateProductInput{SellerID: sellerID, SKU: "A", Title: "A", PriceCents: 100, Stock: 1})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	title := "Renamed"
	updated, err := svc.Update(ctx, sellerID, view.ID, UpdateProductInput{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Renamed" {
		t.Fatalf("expected renamed title, got %q", updated.Title)
	}

	category := "Hardware"
	originalPrice := int64(900)
	updated, err = svc.Update(ctx, sellerID, view.ID, UpdateProductInput{Category: &category, OriginalPriceCents: &originalPrice})
	if err != nil {
		t.Fatalf("update pricing fields: %v", err)
	}
	if updated.Category != "Hardware" {
		t.Fatalf("expected updated category, got %q", updated.Category)
	}
	if updated.OriginalPriceCents == nil || *updated.OriginalPriceCents != 900 {
		t.Fatalf("expected original price 900, got %v", updated.OriginalPriceCents)
	}

	_, err = svc.Update(ctx, uuid.New(), view.ID, UpdateProductInput{Title: &title})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for foreign seller, got %v", err)
	}
}

func TestHoldAndRestock(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	svc := newTestService(t, db)
	sellerID := uuid.New()

	view, err := svc.Create(ctx, CreateProductInput{SellerID: sellerID, SKU: "H", Title: "H", PriceCents: 500, Stock: 4})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Hold(ctx, sellerID, view.ID); err != nil {
		t.Fatalf("hold: %v", err)
	}
	held, err := NewRepository(db).FindByID(ctx, view.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if held.Status != enums.ProductStatusInactive || held.InactiveReason == nil || *held.InactiveReason != enums.InactiveReasonSellerHold {
		t.Fatalf("expected seller hold, got %s/%v", held.Status, held.InactiveReason)
	}

	restocked, err := svc.Restock(ctx, sellerID, view.ID, 6)
	if err != nil {
		t.Fatalf("restock: %v", err)
	}
	if restocked.Stock != 10 {
		t.Fatalf("expected stock 10, got %d", restocked.Stock)
	}
	if restocked.Status != enums.ProductStatusActive {
		t.Fatalf("restock must reactivate, got %s", restocked.Status)
	}

	var events int64
	if err := db.Model(&models.OutboxEvent{}).
		Where("event_type IN ?", []enums.OutboxEventType{enums.EventProductDeactivated, enums.EventProductRestocked}).
		Count(&events).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	if events != 2 {
		t.Fatalf("expected hold and restock events, got %d", events)
	}
}

func TestSoftDeleteClearsCarts(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	svc := newTestService(t, db)
	sellerID := uuid.New()

	view, err := svc.Create(ctx, CreateProductInput{SellerID: sellerID, SKU: "D", Title: "D", PriceCents: 500, Stock: 4})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for _, owner := range []string{"sess_one", "sess_two", "user:three"} {
		line := models.CartLine{ID: uuid.New(), OwnerKey: owner, ProductID: view.ID, SellerID: sellerID, Quantity: 1}
		if err := db.Create(&line).Error; err != nil {
			t.Fatalf("seed cart line: %v", err)
		}
	}

	if err := svc.SoftDelete(ctx, sellerID, view.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	var lineCount int64
	if err := db.Model(&models.CartLine{}).Where("product_id = ?", view.ID).Count(&lineCount).Error; err != nil {
		t.Fatalf("count lines: %v", err)
	}
	if lineCount != 0 {
		t.Fatalf("expected all cart lines cleared, got %d", lineCount)
	}

	// The row survives for order item references.
	product, err := NewRepository(db).FindByID(ctx, view.ID)
	if err != nil {
		t.Fatalf("load deleted: %v", err)
	}
	if product.Status != enums.ProductStatusDeleted {
		t.Fatalf("expected deleted status, got %s", product.Status)
	}

	// Public reads treat it as gone.
	_, err = svc.Get(ctx, view.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListPublicOnlyActive(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	svc := newTestService(t, db)
	sellerID := uuid.New()

	active, err := svc.Create(ctx, CreateProductInput{SellerID: sellerID, SKU: "L1", Title: "L1", PriceCents: 100, Stock: 1})
	if err != nil {
		t.Fatalf("create active: %v", err)
	}
	held, err := svc.Create(ctx, CreateProductInput{SellerID: sellerID, SKU: "L2", Title: "L2", PriceCents: 100, Stock: 1})
	if err != nil {
		t.Fatalf("create held: %v", err)
	}
	if err := svc.Hold(ctx, sellerID, held.ID); err != nil {
		t.Fatalf("hold: %v", err)
	}

	page, err := svc.ListPublic(ctx, pagination.Params{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Products) != 1 || page.Products[0].ID != active.ID {
		t.Fatalf("expected only the active product, got %+v", page.Products)
	}

	sellerPage, err := svc.ListForSeller(ctx, sellerID, pagination.Params{})
	if err != nil {
		t.Fatalf("seller list: %v", err)
	}
	if len(sellerPage.Products) != 2 {
		t.Fatalf("seller must see held products too, got %d", len(sellerPage.Products))
	}
}
