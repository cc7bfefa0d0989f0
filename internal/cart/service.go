// Package cart implements the owner-keyed cart store. An owner key is either
// an anonymous session token or a stable identity key; the store never cares
// which.
package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	dbpkg "github.com/sellora/sellora-backend/pkg/db"
	"github.com/sellora/sellora-backend/pkg/db/models"
	"github.com/sellora/sellora-backend/pkg/enums"
	pkgerrors "github.com/sellora/sellora-backend/pkg/errors"
	"github.com/sellora/sellora-backend/pkg/outbox"
	"github.com/sellora/sellora-backend/pkg/outbox/payloads"
	"github.com/sellora/sellora-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Snapshot is the buyer-facing view of a cart. Unavailable lines are kept in
// storage (the product may come back) but excluded from the priced view.
type Snapshot struct {
	Lines              []SnapshotRow
	ExcludedProductIDs []uuid.UUID
}

// MergeResult summarizes folding an anonymous cart into an identity cart.
type MergeResult struct {
	MergedLines int
	Warnings    types.CartWarnings
}

// Service defines the cart operations.
type Service interface {
	AddOrIncrement(ctx context.Context, ownerKey string, productID uuid.UUID, delta int) (*models.CartLine, error)
	SetQuantity(ctx context.Context, ownerKey string, productID uuid.UUID, qty int) (*models.CartLine, error)
	Remove(ctx context.Context, ownerKey string, productID uuid.UUID) error
	Snapshot(ctx context.Context, ownerKey string) (*Snapshot, error)
	MergeInto(ctx context.Context, anonKey, ownerKey string) (*MergeResult, error)
	Count(ctx context.Context, ownerKey string) (int64, error)
}

type service struct {
	repo     Repository
	products productLoader
	tx       txRunner
	outbox   outboxPublisher
}

// NewService wires the cart service.
func NewService(repo Repository, products productLoader, tx txRunner, publisher outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, products: products, tx: tx, outbox: publisher}, nil
}

// AddOrIncrement adds delta units of a product to the owner's cart, creating
// the line on first add. The first add freezes price, name, category, and
// image onto the line; later increments keep that snapshot. The ceiling check
// uses live stock and reports the exact quantity still addable. Lost races
// against a concurrent write on the same line are retried once before
// surfacing a conflict.
func (s *service) AddOrIncrement(ctx context.Context, ownerKey string, productID uuid.UUID, delta int) (*models.CartLine, error) {
	if err := validateOwnerAndProduct(ownerKey, productID); err != nil {
		return nil, err
	}
	if delta <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity to add must be positive")
	}

	if _, err := s.repo.PruneUnavailable(ctx, ownerKey); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "prune cart")
	}

	product, err := s.loadSellable(ctx, productID)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < 2; attempt++ {
		line, err := s.repo.FindLine(ctx, ownerKey, productID)
		if err != nil && err != gorm.ErrRecordNotFound {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
		}

		if line == nil {
			if delta > product.Stock {
				return nil, pkgerrors.ExceedsStock(product.Stock)
			}
			fresh := newLineFromProduct(ownerKey, product, delta)
			if err := s.repo.Insert(ctx, fresh); err != nil {
				if dbpkg.IsUniqueViolation(err, "idx_cart_owner_product") {
					// Another request created the line first; fold into it.
					continue
				}
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert cart line")
			}
			return fresh, nil
		}

		maxAddable := product.Stock - line.Quantity
		if maxAddable < 0 {
			maxAddable = 0
		}
		if delta > maxAddable {
			return nil, pkgerrors.ExceedsStock(maxAddable)
		}

		updated, err := s.repo.UpdateQuantityGuarded(ctx, line.ID, line.Quantity, line.Quantity+delta)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart line")
		}
		if updated {
			line.Quantity += delta
			return line, nil
		}
	}

	return nil, pkgerrors.PersistenceConflict("cart line")
}

// SetQuantity pins a line to an absolute quantity. Zero or negative removes
// the line.
func (s *service) SetQuantity(ctx context.Context, ownerKey string, productID uuid.UUID, qty int) (*models.CartLine, error) {
	if err := validateOwnerAndProduct(ownerKey, productID); err != nil {
		return nil, err
	}
	if qty <= 0 {
		if err := s.Remove(ctx, ownerKey, productID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	product, err := s.loadSellable(ctx, productID)
	if err != nil {
		return nil, err
	}
	if qty > product.Stock {
		return nil, pkgerrors.ExceedsStock(product.Stock)
	}

	for attempt := 0; attempt < 2; attempt++ {
		line, err := s.repo.FindLine(ctx, ownerKey, productID)
		if err != nil && err != gorm.ErrRecordNotFound {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
		}

		if line == nil {
			fresh := newLineFromProduct(ownerKey, product, qty)
			if err := s.repo.Insert(ctx, fresh); err != nil {
				if dbpkg.IsUniqueViolation(err, "idx_cart_owner_product") {
					continue
				}
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert cart line")
			}
			return fresh, nil
		}

		if line.Quantity == qty {
			return line, nil
		}
		updated, err := s.repo.UpdateQuantityGuarded(ctx, line.ID, line.Quantity, qty)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart line")
		}
		if updated {
			line.Quantity = qty
			return line, nil
		}
	}

	return nil, pkgerrors.PersistenceConflict("cart line")
}

// Remove deletes a line. Removing an absent line is not an error.
func (s *service) Remove(ctx context.Context, ownerKey string, productID uuid.UUID) error {
	if err := validateOwnerAndProduct(ownerKey, productID); err != nil {
		return err
	}
	if err := s.repo.DeleteLine(ctx, ownerKey, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart line")
	}
	return nil
}

// Snapshot returns the priced view of the cart. Lines whose product is no
// longer sellable are excluded but not deleted.
func (s *service) Snapshot(ctx context.Context, ownerKey string) (*Snapshot, error) {
	if ownerKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner key required")
	}
	rows, err := s.repo.SnapshotRows(ctx, ownerKey)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart snapshot")
	}

	snapshot := &Snapshot{}
	for _, row := range rows {
		if !row.Status.Sellable() {
			snapshot.ExcludedProductIDs = append(snapshot.ExcludedProductIDs, row.ProductID)
			continue
		}
		snapshot.Lines = append(snapshot.Lines, row)
	}
	return snapshot, nil
}

// MergeInto folds the anonymous cart into the identity cart at sign-in.
// Quantities sum and clamp to stock; unavailable products are dropped with a
// warning. Individual line failures are aggregated and reported but the merge
// always completes and the anonymous cart is always emptied.
func (s *service) MergeInto(ctx context.Context, anonKey, ownerKey string) (*MergeResult, error) {
	if anonKey == "" || ownerKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "both owner keys are required")
	}
	if anonKey == ownerKey {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot merge a cart into itself")
	}

	result := &MergeResult{}
	var lineErrs error

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		sourceRows, err := repo.SnapshotRows(ctx, anonKey)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load anonymous cart")
		}

		clamped := 0
		for _, row := range sourceRows {
			if !row.Status.Sellable() || row.Stock <= 0 {
				result.Warnings = append(result.Warnings, types.CartWarning{
					Type:      enums.CartWarningLineDropped,
					ProductID: row.ProductID.String(),
					Message:   fmt.Sprintf("%s is no longer available", row.Title),
				})
				continue
			}

			target, err := repo.FindLine(ctx, ownerKey, row.ProductID)
			if err != nil && err != gorm.ErrRecordNotFound {
				lineErrs = multierr.Append(lineErrs, fmt.Errorf("load target line for %s: %w", row.ProductID, err))
				continue
			}

			existing := 0
			if target != nil {
				existing = target.Quantity
			}
			desired := existing + row.Quantity
			final := desired
			if final > row.Stock {
				final = row.Stock
				clamped++
				result.Warnings = append(result.Warnings, types.CartWarning{
					Type:      enums.CartWarningQuantityClamped,
					ProductID: row.ProductID.String(),
					Message:   fmt.Sprintf("quantity of %s reduced to %d (stock limit)", row.Title, final),
				})
			}

			if target == nil {
				// The merged line inherits the anonymous cart's snapshot,
				// so the price the shopper saw survives sign-in.
				fresh := &models.CartLine{
					ID:             uuid.New(),
					OwnerKey:       ownerKey,
					ProductID:      row.ProductID,
					SellerID:       row.SellerID,
					Quantity:       final,
					UnitPriceCents: row.UnitPriceCents,
					ProductName:    row.Title,
					Category:       row.Category,
					ImagePath:      row.ImagePath,
				}
				if err := repo.Insert(ctx, fresh); err != nil {
					lineErrs = multierr.Append(lineErrs, fmt.Errorf("insert merged line for %s: %w", row.ProductID, err))
					continue
				}
			} else if final != existing {
				updated, err := repo.UpdateQuantityGuarded(ctx, target.ID, existing, final)
				if err != nil {
					lineErrs = multierr.Append(lineErrs, fmt.Errorf("update merged line for %s: %w", row.ProductID, err))
					continue
				}
				if !updated {
					lineErrs = multierr.Append(lineErrs, fmt.Errorf("merged line for %s changed concurrently", row.ProductID))
					continue
				}
			}
			result.MergedLines++
		}

		if err := repo.DeleteAllForOwner(ctx, anonKey); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear anonymous cart")
		}

		if len(sourceRows) == 0 {
			return nil
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCartMerged,
			AggregateType: enums.AggregateCart,
			AggregateID:   uuid.New(),
			Version:       1,
			Data: payloads.CartMergedEvent{
				SourceOwnerKey: anonKey,
				TargetOwnerKey: ownerKey,
				MergedLines:    result.MergedLines,
				ClampedLines:   clamped,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return result, lineErrs
}

func (s *service) Count(ctx context.Context, ownerKey string) (int64, error) {
	if ownerKey == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "owner key required")
	}
	count, err := s.repo.Count(ctx, ownerKey)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count cart lines")
	}
	return count, nil
}

func (s *service) loadSellable(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.NotFoundEntity("product")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.Status == enums.ProductStatusDeleted {
		return nil, pkgerrors.NotFoundEntity("product")
	}
	if !product.Status.Sellable() {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product is not available for purchase")
	}
	return product, nil
}

// newLineFromProduct creates a cart line carrying the product's current
// price/name/category/image as the line's frozen snapshot.
func newLineFromProduct(ownerKey string, product *models.Product, qty int) *models.CartLine {
	return &models.CartLine{
		ID:             uuid.New(),
		OwnerKey:       ownerKey,
		ProductID:      product.ID,
		SellerID:       product.SellerID,
		Quantity:       qty,
		UnitPriceCents: product.PriceCents,
		ProductName:    product.Title,
		Category:       product.Category,
		ImagePath:      product.ImagePath,
	}
}

func validateOwnerAndProduct(ownerKey string, productID uuid.UUID) error {
	if ownerKey == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "owner key required")
	}
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	return nil
}
