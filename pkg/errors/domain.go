package errors

import "fmt"

// The storefront error taxonomy. Every user-facing failure from the
// cart/checkout engine is built through one of these constructors so the
// caller always receives a precise, actionable reason.

// InsufficientStock reports a reservation that could not be satisfied, with
// the quantity still available.
func InsufficientStock(available int) *Error {
	return New(CodeConflict, fmt.Sprintf("insufficient stock: only %d available", available)).
		WithDetails(map[string]any{"available": available})
}

// ExceedsStock reports a cart mutation that would push a line past the
// product's stock, with the exact quantity the shopper can still add.
func ExceedsStock(maxAddable int) *Error {
	msg := "no more stock available for this product"
	if maxAddable > 0 {
		plural := "s"
		if maxAddable == 1 {
			plural = ""
		}
		msg = fmt.Sprintf("you can add %d more item%s to your cart", maxAddable, plural)
	}
	return New(CodeConflict, msg).
		WithDetails(map[string]any{"max_addable": maxAddable})
}

// InvalidTransition reports a lifecycle action attempted from a state that
// does not permit it.
func InvalidTransition(current, attempted string) *Error {
	return New(CodeStateConflict, fmt.Sprintf("cannot %s an order in state %q", attempted, current)).
		WithDetails(map[string]any{"current_state": current, "attempted": attempted})
}

// OwnerMismatch reports an operation on a resource the caller does not own.
func OwnerMismatch() *Error {
	return New(CodeForbidden, "resource does not belong to caller")
}

// PromoInvalidOrExpired reports a promo code that cannot be applied, with the
// reason it was refused.
func PromoInvalidOrExpired(code, reason string) *Error {
	return New(CodeValidation, fmt.Sprintf("promo code %q %s", code, reason)).
		WithDetails(map[string]any{"promo_code": code, "reason": reason})
}

// EmptyCart reports a checkout attempted against a cart with no usable lines.
func EmptyCart() *Error {
	return New(CodeValidation, "cart contains no items")
}

// NotFoundEntity reports a missing row by entity name.
func NotFoundEntity(entity string) *Error {
	return New(CodeNotFound, entity+" not found")
}

// PersistenceConflict reports a write that lost a race with a concurrent
// update after the internal retry was exhausted.
func PersistenceConflict(entity string) *Error {
	return New(CodeConflict, "concurrent update on "+entity+", please retry")
}
