package enums

import "fmt"

// ProductStatus maps to the product_status enum in Postgres.
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
	ProductStatusDeleted  ProductStatus = "deleted"
)

var validProductStatuses = []ProductStatus{
	ProductStatusActive,
	ProductStatusInactive,
	ProductStatusDeleted,
}

// String implements fmt.Stringer.
func (p ProductStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProductStatus.
func (p ProductStatus) IsValid() bool {
	for _, candidate := range validProductStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// Sellable reports whether a listing in this status may appear in carts
// and quotes.
func (p ProductStatus) Sellable() bool {
	return p == ProductStatusActive
}

// ParseProductStatus converts raw input into a ProductStatus.
func ParseProductStatus(value string) (ProductStatus, error) {
	for _, candidate := range validProductStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product status %q", value)
}

// InactiveReason records why a listing went inactive.
type InactiveReason string

const (
	InactiveReasonOutOfStock InactiveReason = "out_of_stock"
	InactiveReasonSellerHold InactiveReason = "seller_hold"
)

var validInactiveReasons = []InactiveReason{
	InactiveReasonOutOfStock,
	InactiveReasonSellerHold,
}

// IsValid reports whether the value is a known InactiveReason.
func (r InactiveReason) IsValid() bool {
	for _, candidate := range validInactiveReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseInactiveReason converts raw input into an InactiveReason.
func ParseInactiveReason(value string) (InactiveReason, error) {
	for _, candidate := range validInactiveReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid inactive reason %q", value)
}
