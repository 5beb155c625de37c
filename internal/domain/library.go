package domain

import (
	"regexp"
	"time"

	"github.com/shelfshare/shelfshare-server/internal/errors"
)

// EntrySource distinguishes owned titles from wishlist titles.
type EntrySource string

const (
	SourceLibrary  EntrySource = "LIBRARY"
	SourceWishlist EntrySource = "WISHLIST"
)

// Valid returns true for a recognized source.
func (s EntrySource) Valid() bool {
	return s == SourceLibrary || s == SourceWishlist
}

// EntryStatus is the user's listening state for a title, as reported by the
// browser extension.
type EntryStatus string

const (
	StatusNotStarted EntryStatus = "NOT_STARTED"
	StatusInProgress EntryStatus = "IN_PROGRESS"
	StatusFinished   EntryStatus = "FINISHED"
)

// Valid returns true for a recognized status. Empty is allowed; the
// extension cannot always determine listening state.
func (s EntryStatus) Valid() bool {
	switch s {
	case "", StatusNotStarted, StatusInProgress, StatusFinished:
		return true
	}
	return false
}

// asinPattern: 10 uppercase alphanumeric characters.
var asinPattern = regexp.MustCompile(`^[A-Z0-9]{10}$`)

// ValidASIN reports whether s is a well-formed Audible catalog identifier.
func ValidASIN(s string) bool {
	return asinPattern.MatchString(s)
}

// LibraryEntry is a per-user reference to a title. Book metadata is never
// stored here; it is resolved on demand from the Audible catalog.
type LibraryEntry struct {
	ID     string      `json:"id"`
	UserID string      `json:"user_id"`
	ASIN   string      `json:"asin"`
	Source EntrySource `json:"source"`

	Status          EntryStatus `json:"status,omitempty"`
	ProgressPercent int         `json:"progress_percent"`
	Rating          int         `json:"rating,omitempty"` // 1-5 stars, 0 = unrated

	AddedAt time.Time `json:"added_at"`
}

// Validate checks an incoming entry from a sync import. Failures become
// per-row warnings, not batch errors.
func (e *LibraryEntry) Validate() error {
	if !ValidASIN(e.ASIN) {
		return errors.Validationf("invalid ASIN %q", e.ASIN)
	}
	if !e.Source.Valid() {
		return errors.Validationf("invalid source %q", e.Source)
	}
	if !e.Status.Valid() {
		return errors.Validationf("invalid status %q", e.Status)
	}
	if e.ProgressPercent < 0 || e.ProgressPercent > 100 {
		return errors.Validationf("progress %d out of range 0-100", e.ProgressPercent)
	}
	if e.Rating < 0 || e.Rating > 5 {
		return errors.Validationf("rating %d out of range 0-5", e.Rating)
	}
	return nil
}
