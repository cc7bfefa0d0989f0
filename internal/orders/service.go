// Package orders owns the order lifecycle: placement, the explicit state
// machine, and stock compensation. Every transition is a guarded status
// UPDATE inside one transaction, so concurrent duplicates fail cleanly
// instead of compensating twice.
package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sellora/sellora-backend/internal/cart"
	"github.com/sellora/sellora-backend/internal/pricing"
	"github.com/sellora/sellora-backend/pkg/db/models"
	"github.com/sellora/sellora-backend/pkg/enums"
	pkgerrors "github.com/sellora/sellora-backend/pkg/errors"
	"github.com/sellora/sellora-backend/pkg/metrics"
	"github.com/sellora/sellora-backend/pkg/outbox"
	"github.com/sellora/sellora-backend/pkg/outbox/payloads"
	"github.com/sellora/sellora-backend/pkg/pagination"
	"github.com/sellora/sellora-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type stockLedger interface {
	Reserve(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
	Release(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
}

type quoter interface {
	Compute(ctx context.Context, lines []pricing.LineInput, promoCode *string) (*pricing.Quote, error)
}

// Actor identifies who is driving a lifecycle call.
type Actor struct {
	OwnerKey string
	Operator bool
}

// PlaceOrderInput carries everything checkout needs beyond the cart itself.
type PlaceOrderInput struct {
	OwnerKey        string
	PaymentMethod   enums.PaymentMethod
	PromoCode       *string
	ShippingAddress *types.Address
	Notes           *string
}

// Page is one cursor page of orders.
type Page struct {
	Orders     []models.Order
	NextCursor string
}

// Service drives the order lifecycle.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error)
	Approve(ctx context.Context, orderID uuid.UUID, actor Actor) (*models.Order, error)
	Reject(ctx context.Context, orderID uuid.UUID, actor Actor, reason string) (*models.Order, error)
	Ship(ctx context.Context, orderID uuid.UUID, actor Actor) (*models.Order, error)
	Cancel(ctx context.Context, orderID uuid.UUID, actor Actor) (*models.Order, error)
	Rollback(ctx context.Context, orderID uuid.UUID, actor Actor) error
	Get(ctx context.Context, orderID uuid.UUID, actor Actor) (*models.Order, error)
	ListForOwner(ctx context.Context, ownerKey string, params pagination.Params) (*Page, error)
	ListByStatus(ctx context.Context, status enums.OrderStatus, params pagination.Params) (*Page, error)
}

type service struct {
	repo     Repository
	cartRepo cart.Repository
	pricing  quoter
	ledger   stockLedger
	tx       txRunner
	outbox   outboxPublisher
	metrics  *metrics.CheckoutMetrics
}

// NewService wires the order lifecycle manager.
func NewService(
	repo Repository,
	cartRepo cart.Repository,
	calc quoter,
	ledger stockLedger,
	tx txRunner,
	publisher outboxPublisher,
	m *metrics.CheckoutMetrics,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if calc == nil {
		return nil, fmt.Errorf("pricing calculator required")
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
	return &service{
		repo:     repo,
		cartRepo: cartRepo,
		pricing:  calc,
		ledger:   ledger,
		tx:       tx,
		outbox:   publisher,
		metrics:  m,
	}, nil
}

// PlaceOrder converts the owner's cart into an order in one transaction:
// snapshot, quote, create, reserve every line against live stock, clear the
// cart, queue the placed event. Any failure rolls the whole thing back, so
// no partial decrement or half-written order ever survives.
func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error) {
	if input.OwnerKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner key required")
	}
	if input.PaymentMethod == "" {
		input.PaymentMethod = enums.PaymentMethodCash
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if input.ShippingAddress != nil {
		if err := input.ShippingAddress.Validate(); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipping address")
		}
	}

	started := time.Now()
	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		ordersRepo := s.repo.WithTx(tx)

		if _, err := cartRepo.PruneUnavailable(ctx, input.OwnerKey); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "prune cart")
		}

		rows, err := cartRepo.SnapshotRows(ctx, input.OwnerKey)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart snapshot")
		}
		usable := rows[:0]
		for _, row := range rows {
			if row.Status.Sellable() {
				usable = append(usable, row)
			}
		}
		if len(usable) == 0 {
			return pkgerrors.EmptyCart()
		}

		lines := make([]pricing.LineInput, len(usable))
		for i, row := range usable {
			lines[i] = pricing.LineInput{UnitPriceCents: row.UnitPriceCents, Quantity: row.Quantity}
		}
		quote, err := s.pricing.Compute(ctx, lines, input.PromoCode)
		if err != nil {
			return err
		}

		order = &models.Order{
			ID:              uuid.New(),
			OwnerKey:        input.OwnerKey,
			SellerID:        singleSeller(usable),
			Status:          enums.OrderStatusPending,
			PaymentMethod:   input.PaymentMethod,
			SubtotalCents:   quote.SubtotalCents,
			DiscountCents:   quote.DiscountCents,
			ShippingCents:   quote.ShippingCents,
			TotalCents:      quote.TotalCents,
			Promo:           quote.Promo,
			ShippingAddress: input.ShippingAddress,
			Notes:           input.Notes,
		}
		for _, row := range usable {
			order.Items = append(order.Items, models.OrderItem{
				ID:                uuid.New(),
				OrderID:           order.ID,
				ProductID:         row.ProductID,
				SellerID:          row.SellerID,
				SKU:               row.SKU,
				Title:             row.Title,
				UnitPriceCents:    row.UnitPriceCents,
				Quantity:          row.Quantity,
				LineSubtotalCents: row.UnitPriceCents * int64(row.Quantity),
			})
		}
		if err := ordersRepo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		// Authoritative stock validation: the guarded decrement is the
		// only check that counts.
		for _, row := range usable {
			if err := s.ledger.Reserve(ctx, tx, row.ProductID, row.Quantity); err != nil {
				return err
			}
		}

		if err := cartRepo.DeleteAllForOwner(ctx, input.OwnerKey); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{OwnerKey: input.OwnerKey},
			Data: payloads.OrderPlacedEvent{
				OrderID:    order.ID,
				OwnerKey:   input.OwnerKey,
				SellerID:   order.SellerID,
				TotalCents: order.TotalCents,
				ItemCount:  len(order.Items),
			},
		})
	})
	if err != nil {
		s.metrics.ObservePlaceDuration("failure", time.Since(started))
		return nil, err
	}

	s.metrics.ObservePlaceDuration("success", time.Since(started))
	s.metrics.IncOrderPlaced(string(order.PaymentMethod))
	return order, nil
}

// Approve moves pending -> confirmed.
func (s *service) Approve(ctx context.Context, orderID uuid.UUID, actor Actor) (*models.Order, error) {
	return s.transition(ctx, orderID, actor, ActionApprove, "")
}

// Reject moves pending -> rejected and returns every reserved unit.
func (s *service) Reject(ctx context.Context, orderID uuid.UUID, actor Actor, reason string) (*models.Order, error) {
	return s.transition(ctx, orderID, actor, ActionReject, reason)
}

// Ship moves confirmed -> shipped.
func (s *service) Ship(ctx context.Context, orderID uuid.UUID, actor Actor) (*models.Order, error) {
	return s.transition(ctx, orderID, actor, ActionShip, "")
}

// Cancel is the buyer-facing exit from pending or confirmed. Non-owners get
// OwnerMismatch; operators may cancel on a buyer's behalf.
func (s *service) Cancel(ctx context.Context, orderID uuid.UUID, actor Actor) (*models.Order, error) {
	return s.transition(ctx, orderID, actor, ActionCancel, "")
}

func (s *service) transition(ctx context.Context, orderID uuid.UUID, actor Actor, action Action, reason string) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if action != ActionCancel && !actor.Operator {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "operator role required")
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		loaded, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.NotFoundEntity("order")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if action == ActionCancel && !actor.Operator && loaded.OwnerKey != actor.OwnerKey {
			return pkgerrors.OwnerMismatch()
		}

		from := loaded.Status
		to, err := NextStatus(from, action)
		if err != nil {
			return err
		}

		moved, err := repo.UpdateStatusGuarded(ctx, orderID, from, to)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if !moved {
			// A concurrent transition won the race; reload for an exact error.
			current, err := repo.FindByID(ctx, orderID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
			}
			return pkgerrors.InvalidTransition(string(current.Status), string(action))
		}

		restocked := 0
		if CompensatesStock(to) {
			for _, item := range loaded.Items {
				if err := s.ledger.Release(ctx, tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
				restocked += item.Quantity
			}
		}

		loaded.Status = to
		order = loaded

		event := outbox.DomainEvent{
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Version:       1,
			Actor:         &outbox.ActorRef{OwnerKey: actor.OwnerKey, Operator: actor.Operator},
		}
		if to == enums.OrderStatusCanceled {
			event.EventType = enums.EventOrderCanceled
			event.Data = payloads.OrderCanceledEvent{
				OrderID:       orderID,
				OwnerKey:      loaded.OwnerKey,
				CanceledAt:    time.Now(),
				RestockedQtys: restocked,
				Reason:        reason,
			}
		} else {
			event.EventType = eventForStatus(to)
			event.Data = payloads.OrderStateChangedEvent{
				OrderID:  orderID,
				OwnerKey: loaded.OwnerKey,
				From:     from,
				To:       to,
				Reason:   reason,
			}
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}

		s.metrics.IncTransition(string(from), string(to))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Rollback is the administrative escape hatch: it returns stock for
// non-terminal orders and removes the order entirely.
func (s *service) Rollback(ctx context.Context, orderID uuid.UUID, actor Actor) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !actor.Operator {
		return pkgerrors.New(pkgerrors.CodeForbidden, "operator role required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.NotFoundEntity("order")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if !order.Status.IsTerminal() {
			for _, item := range order.Items {
				if err := s.ledger.Release(ctx, tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}

		if err := repo.DeleteWithItems(ctx, orderID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderRolledBack,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Version:       1,
			Actor:         &outbox.ActorRef{OwnerKey: actor.OwnerKey, Operator: true},
			Data: payloads.OrderStateChangedEvent{
				OrderID:  orderID,
				OwnerKey: order.OwnerKey,
				From:     order.Status,
				To:       order.Status,
				Reason:   "administrative rollback",
			},
		})
	})
}

// Get loads an order with its items. Buyers can only see their own orders.
func (s *service) Get(ctx context.Context, orderID uuid.UUID, actor Actor) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.NotFoundEntity("order")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if !actor.Operator && order.OwnerKey != actor.OwnerKey {
		return nil, pkgerrors.OwnerMismatch()
	}
	return order, nil
}

func (s *service) ListForOwner(ctx context.Context, ownerKey string, params pagination.Params) (*Page, error) {
	if ownerKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner key required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListByOwner(ctx, ownerKey, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return buildPage(rows, pagination.NormalizeLimit(params.Limit)), nil
}

func (s *service) ListByStatus(ctx context.Context, status enums.OrderStatus, params pagination.Params) (*Page, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListByStatus(ctx, status, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return buildPage(rows, pagination.NormalizeLimit(params.Limit)), nil
}

func buildPage(rows []models.Order, limit int) *Page {
	page := &Page{Orders: rows}
	if len(rows) > limit {
		page.Orders = rows[:limit]
		last := page.Orders[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page
}

func eventForStatus(to enums.OrderStatus) enums.OutboxEventType {
	switch to {
	case enums.OrderStatusConfirmed:
		return enums.EventOrderConfirmed
	case enums.OrderStatusRejected:
		return enums.EventOrderRejected
	case enums.OrderStatusShipped:
		return enums.EventOrderShipped
	default:
		return enums.EventOrderCanceled
	}
}

func singleSeller(rows []cart.SnapshotRow) *uuid.UUID {
	if len(rows) == 0 {
		return nil
	}
	seller := rows[0].SellerID
	for _, row := range rows[1:] {
		if row.SellerID != seller {
			return nil
		}
	}
	return &seller
}
