package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID   uuid.UUID
	Email    string
	Operator bool
	JTI      string
}

// AccessTokenClaims represents the typed JWT issued to signed-in buyers and
// back-office operators.
type AccessTokenClaims struct {
	UserID   uuid.UUID `json:"user_id"`
	Email    string    `json:"email,omitempty"`
	Operator bool      `json:"operator,omitempty"`
	jwt.RegisteredClaims
}

// OwnerKey returns the stable cart/order owner key for the subject.
func (c *AccessTokenClaims) OwnerKey() string {
	return "user:" + c.UserID.String()
}
