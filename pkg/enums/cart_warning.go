package enums

import "fmt"

// CartWarningType classifies non-fatal adjustments surfaced to the buyer
// after a merge or snapshot revalidation.
type CartWarningType string

const (
	CartWarningQuantityClamped CartWarningType = "quantity_clamped"
	CartWarningLineDropped     CartWarningType = "line_dropped"
)

var validCartWarningTypes = []CartWarningType{
	CartWarningQuantityClamped,
	CartWarningLineDropped,
}

// IsValid reports whether the value is a known CartWarningType.
func (c CartWarningType) IsValid() bool {
	for _, candidate := range validCartWarningTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCartWarningType converts raw input into a CartWarningType.
func ParseCartWarningType(value string) (CartWarningType, error) {
	for _, candidate := range validCartWarningTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart warning type %q", value)
}
