package auth

import (
	"time"
)

// SessionClaims represents the claims stored in a PASETO session token.
// These are encrypted in v4.local tokens, so they're not readable without the key.
type SessionClaims struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`

	// Standard PASETO claims
	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}

// SyncClaims represents the claims in a single-use sync token issued to the
// browser extension. The scope claim separates these from session tokens; a
// session token can never be redeemed as a sync token and vice versa.
type SyncClaims struct {
	Scope string `json:"scope"`

	// Standard PASETO claims
	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"` // user ID
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}
