package orders

import (
	"github.com/sellora/sellora-backend/pkg/enums"
	pkgerrors "github.com/sellora/sellora-backend/pkg/errors"
)

// Action is a lifecycle verb applied to an order.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionShip    Action = "ship"
	ActionCancel  Action = "cancel"
)

// transitions is the complete lifecycle graph. Anything not listed here is
// an invalid transition, with no exceptions or timeouts.
var transitions = map[enums.OrderStatus]map[Action]enums.OrderStatus{
	enums.OrderStatusPending: {
		ActionApprove: enums.OrderStatusConfirmed,
		ActionReject:  enums.OrderStatusRejected,
		ActionCancel:  enums.OrderStatusCanceled,
	},
	enums.OrderStatusConfirmed: {
		ActionShip:   enums.OrderStatusShipped,
		ActionCancel: enums.OrderStatusCanceled,
	},
}

// NextStatus resolves the target status for an action from the current
// status, or an InvalidTransition error.
func NextStatus(current enums.OrderStatus, action Action) (enums.OrderStatus, error) {
	if allowed, ok := transitions[current]; ok {
		if next, ok := allowed[action]; ok {
			return next, nil
		}
	}
	return "", pkgerrors.InvalidTransition(string(current), string(action))
}

// CompensatesStock reports whether reaching the status returns reserved
// stock to the shelf.
func CompensatesStock(to enums.OrderStatus) bool {
	return to == enums.OrderStatusRejected || to == enums.OrderStatusCanceled
}
