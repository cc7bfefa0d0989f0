// Package products is the seller-facing catalog: create, update, hold,
// restock, soft-delete. Stock replenishment always goes through the ledger
// so the same activation rules apply everywhere.
package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	dbpkg "github.com/sellora/sellora-backend/pkg/db"
	"github.com/sellora/sellora-backend/pkg/db/models"
	"github.com/sellora/sellora-backend/pkg/enums"
	pkgerrors "github.com/sellora/sellora-backend/pkg/errors"
	"github.com/sellora/sellora-backend/pkg/outbox"
	"github.com/sellora/sellora-backend/pkg/outbox/payloads"
	"github.com/sellora/sellora-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type stockLedger interface {
	Restock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
}

// Page is one cursor page of product views.
type Page struct {
	Products   []ProductView
	NextCursor string
}

// Service defines catalog operations.
type Service interface {
	Create(ctx context.Context, input CreateProductInput) (*ProductView, error)
	Update(ctx context.Context, sellerID, productID uuid.UUID, input UpdateProductInput) (*ProductView, error)
	Hold(ctx context.Context, sellerID, productID uuid.UUID) error
	Restock(ctx context.Context, sellerID, productID uuid.UUID, qty int) (*ProductView, error)
	SoftDelete(ctx context.Context, sellerID, productID uuid.UUID) error
	Get(ctx context.Context, productID uuid.UUID) (*ProductView, error)
	ListPublic(ctx context.Context, params pagination.Params) (*Page, error)
	ListForSeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*Page, error)
}

type service struct {
	repo   Repository
	ledger stockLedger
	tx     txRunner
	outbox outboxPublisher
	assets assetResolver
}

// NewService wires the catalog service. The asset resolver may be nil.
func NewService(repo Repository, ledger stockLedger, tx txRunner, publisher outboxPublisher, assets assetResolver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, ledger: ledger, tx: tx, outbox: publisher, assets: assets}, nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*ProductView, error) {
	if input.SellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	if strings.TrimSpace(input.SKU) == "" || strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku and title are required")
	}
	if input.PriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock must not be negative")
	}
	if input.OriginalPriceCents != nil && *input.OriginalPriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "original price must not be negative")
	}

	product := &models.Product{
		ID:                 uuid.New(),
		SellerID:           input.SellerID,
		SKU:                strings.TrimSpace(input.SKU),
		Title:              strings.TrimSpace(input.Title),
		Category:           strings.TrimSpace(input.Category),
		Description:        input.Description,
		GalleryKeys:        pq.StringArray(input.GalleryKeys),
		PriceCents:         input.PriceCents,
		OriginalPriceCents: input.OriginalPriceCents,
		Stock:              input.Stock,
		Status:             enums.ProductStatusActive,
		ImagePath:          input.ImagePath,
	}
	if input.Stock == 0 {
		reason := enums.InactiveReasonOutOfStock
		product.Status = enums.ProductStatusInactive
		product.InactiveReason = &reason
	}

	if err := s.repo.Create(ctx, product); err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_products_seller_sku") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "sku already exists for this seller")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	view := toView(product, s.assets)
	return &view, nil
}

func (s *service) Update(ctx context.Context, sellerID, productID uuid.UUID, input UpdateProductInput) (*ProductView, error) {
	product, err := s.loadOwned(ctx, sellerID, productID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title must not be empty")
		}
		updates["title"] = strings.TrimSpace(*input.Title)
	}
	if input.Category != nil {
		updates["category"] = strings.TrimSpace(*input.Category)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.GalleryKeys != nil {
		updates["gallery_keys"] = pq.StringArray(input.GalleryKeys)
	}
	if input.PriceCents != nil {
		if *input.PriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
		}
		updates["price_cents"] = *input.PriceCents
	}
	if input.OriginalPriceCents != nil {
		if *input.OriginalPriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "original price must not be negative")
		}
		updates["original_price_cents"] = *input.OriginalPriceCents
	}
	if input.ImagePath != nil {
		updates["image_path"] = *input.ImagePath
	}
	if len(updates) == 0 {
		view := toView(product, s.assets)
		return &view, nil
	}

	if err := s.repo.Update(ctx, productID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return s.Get(ctx, productID)
}

// Hold takes a listing off the shelf without touching stock. Shoppers keep
// their cart lines; they are just excluded from snapshots until the hold
// lifts.
func (s *service) Hold(ctx context.Context, sellerID, productID uuid.UUID) error {
	product, err := s.loadOwned(ctx, sellerID, productID)
	if err != nil {
		return err
	}
	if product.Status == enums.ProductStatusInactive {
		return nil
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		reason := enums.InactiveReasonSellerHold
		err := s.repo.WithTx(tx).Update(ctx, productID, map[string]any{
			"status":          enums.ProductStatusInactive,
			"inactive_reason": reason,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "hold product")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventProductDeactivated,
			AggregateType: enums.AggregateProduct,
			AggregateID:   productID,
			Version:       1,
			Data: payloads.ProductDeactivatedEvent{
				ProductID: productID,
				SellerID:  sellerID,
				Reason:    reason,
			},
		})
	})
}

// Restock adds stock through the ledger, which also force-reactivates the
// listing.
func (s *service) Restock(ctx context.Context, sellerID, productID uuid.UUID, qty int) (*ProductView, error) {
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "restock quantity must be positive")
	}
	if _, err := s.loadOwned(ctx, sellerID, productID); err != nil {
		return nil, err
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.ledger.Restock(ctx, tx, productID, qty); err != nil {
			return err
		}
		product, err := s.repo.WithTx(tx).FindByID(ctx, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload product")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventProductRestocked,
			AggregateType: enums.AggregateProduct,
			AggregateID:   productID,
			Version:       1,
			Data: payloads.ProductRestockedEvent{
				ProductID: productID,
				SellerID:  sellerID,
				Stock:     product.Stock,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, productID)
}

// SoftDelete retires a listing and clears it from every cart in the same
// transaction. The row survives so placed orders keep a valid reference.
func (s *service) SoftDelete(ctx context.Context, sellerID, productID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, sellerID, productID); err != nil {
		return err
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		deleted, err := repo.MarkDeleted(ctx, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
		}
		if !deleted {
			return nil
		}
		if _, err := repo.ClearFromCarts(ctx, productID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear product from carts")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventProductDeleted,
			AggregateType: enums.AggregateProduct,
			AggregateID:   productID,
			Version:       1,
			Data: payloads.ProductDeactivatedEvent{
				ProductID: productID,
				SellerID:  sellerID,
			},
		})
	})
}

func (s *service) Get(ctx context.Context, productID uuid.UUID) (*ProductView, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.NotFoundEntity("product")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.Status == enums.ProductStatusDeleted {
		return nil, pkgerrors.NotFoundEntity("product")
	}
	view := toView(product, s.assets)
	return &view, nil
}

func (s *service) ListPublic(ctx context.Context, params pagination.Params) (*Page, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListActive(ctx, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return s.buildPage(rows, pagination.NormalizeLimit(params.Limit)), nil
}

func (s *service) ListForSeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*Page, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListBySeller(ctx, sellerID, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller products")
	}
	return s.buildPage(rows, pagination.NormalizeLimit(params.Limit)), nil
}

func (s *service) buildPage(rows []models.Product, limit int) *Page {
	page := &Page{}
	trimmed := rows
	if len(rows) > limit {
		trimmed = rows[:limit]
		last := trimmed[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	for i := range trimmed {
		page.Products = append(page.Products, toView(&trimmed[i], s.assets))
	}
	return page
}

func (s *service) loadOwned(ctx context.Context, sellerID, productID uuid.UUID) (*models.Product, error) {
	if sellerID == uuid.Nil || productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id and product id required")
	}
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.NotFoundEntity("product")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.Status == enums.ProductStatusDeleted {
		return nil, pkgerrors.NotFoundEntity("product")
	}
	if product.SellerID != sellerID {
		return nil, pkgerrors.OwnerMismatch()
	}
	return product, nil
}
