// Package domain defines the core entities and validation rules for Shelfshare.
package domain

import "time"

// User represents an account created on first OAuth sign-in.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`

	// Username is the public profile slug. Empty until the user claims one;
	// share pages are unavailable until then.
	Username string `json:"username,omitempty"`

	// IsAdmin is set out-of-band (seed or direct DB edit), never through the
	// sign-in path.
	IsAdmin bool `json:"is_admin"`

	Provider        string `json:"-"` // OAuth provider, e.g. "google"
	ProviderSubject string `json:"-"` // Stable subject ID from the provider

	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	LastLoginAt time.Time `json:"last_login_at,omitzero"`
}

// HasUsername returns true once the user has claimed a public profile slug.
func (u *User) HasUsername() bool {
	return u.Username != ""
}
