package domain

import "time"

// SyncTokenScope is the fixed scope claim carried by sync tokens. Session
// tokens never carry it, so a session token can not be redeemed for an import.
const SyncTokenScope = "library:sync"

// SyncTokenTTL is how long a sync token stays redeemable.
const SyncTokenTTL = 15 * time.Minute

// SyncToken is the server-side record of an issued single-use sync token.
// The token itself is a signed PASETO; this row exists so redemption can be
// checked and marked used atomically.
type SyncToken struct {
	JTI       string    `json:"jti"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the token is past its expiry at the given time.
func (t *SyncToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// SyncHistory is an append-only record of one completed import.
type SyncHistory struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	LibraryCount  int       `json:"library_count"`
	WishlistCount int       `json:"wishlist_count"`
	Success       bool      `json:"success"`
	Warnings      []string  `json:"warnings,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
