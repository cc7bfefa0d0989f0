package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/sellora/sellora-backend/api/middleware"
	"github.com/sellora/sellora-backend/api/responses"
	"github.com/sellora/sellora-backend/api/validators"
	ordersvc "github.com/sellora/sellora-backend/internal/orders"
	"github.com/sellora/sellora-backend/pkg/enums"
	pkgerrors "github.com/sellora/sellora-backend/pkg/errors"
	"github.com/sellora/sellora-backend/pkg/logger"
)

// AdminOrdersList returns orders by status for back-office review. Defaults
// to the pending queue.
func AdminOrdersList(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := enums.OrderStatusPending
		if raw := r.URL.Query().Get("status"); raw != "" {
			parsed, err := enums.ParseOrderStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			status = parsed
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListByStatus(r.Context(), status, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderPageResponse(page))
	}
}

type rejectOrderRequest struct {
	Reason string `json:"reason,omitempty"`
}

// AdminOrderApprove moves a pending order to confirmed.
func AdminOrderApprove(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return adminTransition(logg, func(r *http.Request, orderID uuid.UUID, actor ordersvc.Actor) (any, error) {
		order, err := svc.Approve(r.Context(), orderID, actor)
		if err != nil {
			return nil, err
		}
		return newOrderResponse(order), nil
	})
}

// AdminOrderReject rejects a pending order and releases its stock.
func AdminOrderReject(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return adminTransition(logg, func(r *http.Request, orderID uuid.UUID, actor ordersvc.Actor) (any, error) {
		var payload rejectOrderRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				return nil, err
			}
		}
		order, err := svc.Reject(r.Context(), orderID, actor, payload.Reason)
		if err != nil {
			return nil, err
		}
		return newOrderResponse(order), nil
	})
}

// AdminOrderShip marks a confirmed order shipped.
func AdminOrderShip(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return adminTransition(logg, func(r *http.Request, orderID uuid.UUID, actor ordersvc.Actor) (any, error) {
		order, err := svc.Ship(r.Context(), orderID, actor)
		if err != nil {
			return nil, err
		}
		return newOrderResponse(order), nil
	})
}

// AdminOrderRollback hard-deletes an order, releasing stock for non-terminal
// states.
func AdminOrderRollback(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return adminTransition(logg, func(r *http.Request, orderID uuid.UUID, actor ordersvc.Actor) (any, error) {
		if err := svc.Rollback(r.Context(), orderID, actor); err != nil {
			return nil, err
		}
		return map[string]any{"rolled_back": true}, nil
	})
}

func adminTransition(logg *logger.Logger, apply func(*http.Request, uuid.UUID, ordersvc.Actor) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.ActorFromContext(r.Context())

		id, err := validators.PathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		data, err := apply(r, id, ordersvc.Actor{OwnerKey: actor.OwnerKey, Operator: actor.Operator})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, data)
	}
}
