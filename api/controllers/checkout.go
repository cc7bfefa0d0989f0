package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/sellora/sellora-backend/api/middleware"
	"github.com/sellora/sellora-backend/api/responses"
	"github.com/sellora/sellora-backend/api/validators"
	ordersvc "github.com/sellora/sellora-backend/internal/orders"
	"github.com/sellora/sellora-backend/pkg/db/models"
	"github.com/sellora/sellora-backend/pkg/enums"
	pkgerrors "github.com/sellora/sellora-backend/pkg/errors"
	"github.com/sellora/sellora-backend/pkg/logger"
	"github.com/sellora/sellora-backend/pkg/types"
)

type checkoutRequest struct {
	PaymentMethod   string         `json:"payment_method" validate:"required"`
	PromoCode       *string        `json:"promo_code,omitempty"`
	ShippingAddress *types.Address `json:"shipping_address,omitempty"`
	Notes           *string        `json:"notes,omitempty"`
}

type orderItemResponse struct {
	ProductID         uuid.UUID `json:"product_id"`
	SellerID          uuid.UUID `json:"seller_id"`
	SKU               string    `json:"sku"`
	Title             string    `json:"title"`
	UnitPriceCents    int64     `json:"unit_price_cents"`
	Quantity          int       `json:"quantity"`
	LineSubtotalCents int64     `json:"line_subtotal_cents"`
}

type orderResponse struct {
	ID              uuid.UUID           `json:"id"`
	Status          enums.OrderStatus   `json:"status"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`
	SellerID        *uuid.UUID          `json:"seller_id,omitempty"`
	SubtotalCents   int64               `json:"subtotal_cents"`
	DiscountCents   int64               `json:"discount_cents"`
	ShippingCents   int64               `json:"shipping_cents"`
	TotalCents      int64               `json:"total_cents"`
	Promo           *types.AppliedPromo `json:"promo,omitempty"`
	ShippingAddress *types.Address      `json:"shipping_address,omitempty"`
	Notes           *string             `json:"notes,omitempty"`
	Items           []orderItemResponse `json:"items,omitempty"`
	ConfirmedAt     *string             `json:"confirmed_at,omitempty"`
	ShippedAt       *string             `json:"shipped_at,omitempty"`
	CanceledAt      *string             `json:"canceled_at,omitempty"`
	CreatedAt       string              `json:"created_at"`
}

func newOrderResponse(order *models.Order) orderResponse {
	resp := orderResponse{
		ID:              order.ID,
		Status:          order.Status,
		PaymentMethod:   order.PaymentMethod,
		SellerID:        order.SellerID,
		SubtotalCents:   order.SubtotalCents,
		DiscountCents:   order.DiscountCents,
		ShippingCents:   order.ShippingCents,
		TotalCents:      order.TotalCents,
		Promo:           order.Promo,
		ShippingAddress: order.ShippingAddress,
		Notes:           order.Notes,
		CreatedAt:       order.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if order.ConfirmedAt != nil {
		value := order.ConfirmedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		resp.ConfirmedAt = &value
	}
	if order.ShippedAt != nil {
		value := order.ShippedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		resp.ShippedAt = &value
	}
	if order.CanceledAt != nil {
		value := order.CanceledAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		resp.CanceledAt = &value
	}
	for _, item := range order.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ProductID:         item.ProductID,
			SellerID:          item.SellerID,
			SKU:               item.SKU,
			Title:             item.Title,
			UnitPriceCents:    item.UnitPriceCents,
			Quantity:          item.Quantity,
			LineSubtotalCents: item.LineSubtotalCents,
		})
	}
	return resp
}

// Checkout places an order from the caller's cart in one transaction.
func Checkout(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.ActorFromContext(r.Context())

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(payload.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		order, err := svc.PlaceOrder(r.Context(), ordersvc.PlaceOrderInput{
			OwnerKey:        actor.OwnerKey,
			PaymentMethod:   method,
			PromoCode:       payload.PromoCode,
			ShippingAddress: payload.ShippingAddress,
			Notes:           payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(order))
	}
}
