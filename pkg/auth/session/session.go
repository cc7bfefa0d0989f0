package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	tokenBytes  = 32
	tokenPrefix = "sess_"
)

// NewToken mints an opaque session token for an anonymous buyer. The token is
// the cart owner key until the buyer signs in and the cart is merged.
func NewToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating session token: %w", err)
	}
	return tokenPrefix + base64.RawURLEncoding.EncodeToString(buf), nil
}

// IsToken reports whether the value looks like a minted session token.
func IsToken(value string) bool {
	if !strings.HasPrefix(value, tokenPrefix) {
		return false
	}
	raw := strings.TrimPrefix(value, tokenPrefix)
	if raw == "" {
		return false
	}
	_, err := base64.RawURLEncoding.DecodeString(raw)
	return err == nil
}
