package types

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/sellora/sellora-backend/pkg/enums"
)

// CartWarning captures a non-fatal adjustment made to a cart line.
type CartWarning struct {
	Type      enums.CartWarningType `json:"type"`
	ProductID string                `json:"product_id"`
	Message   string                `json:"message"`
}

// CartWarnings is a slice marshaled as JSONB.
type CartWarnings []CartWarning

// Value serializes the warnings to JSON.
func (c CartWarnings) Value() (driver.Value, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c)
}

// Scan decodes JSONB into the warning slice.
func (c *CartWarnings) Scan(value interface{}) error {
	if value == nil {
		*c = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded CartWarnings
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*c = decoded
	return nil
}

// AppliedPromo is the promo snapshot persisted on an order.
type AppliedPromo struct {
	Code          string `json:"code"`
	Percent       int    `json:"percent"`
	DiscountCents int64  `json:"discount_cents"`
}

// Value serializes the promo object to JSON.
func (a *AppliedPromo) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

// Scan decodes JSONB into the promo struct.
func (a *AppliedPromo) Scan(value interface{}) error {
	if value == nil {
		*a = AppliedPromo{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, a)
}
