package domain

import (
	"testing"
	"time"
)

func TestLibraryEntry_Validate(t *testing.T) {
	valid := LibraryEntry{
		ID:              "ent-1",
		UserID:          "usr-1",
		ASIN:            "B002V0QK4C",
		Source:          SourceLibrary,
		Status:          StatusInProgress,
		ProgressPercent: 40,
		Rating:          5,
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("valid entry rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(e *LibraryEntry)
	}{
		{"bad asin", func(e *LibraryEntry) { e.ASIN = "short" }},
		{"lowercase asin", func(e *LibraryEntry) { e.ASIN = "b002v0qk4c" }},
		{"bad source", func(e *LibraryEntry) { e.Source = "PODCASTS" }},
		{"bad status", func(e *LibraryEntry) { e.Status = "PAUSED" }},
		{"negative progress", func(e *LibraryEntry) { e.ProgressPercent = -1 }},
		{"progress over 100", func(e *LibraryEntry) { e.ProgressPercent = 101 }},
		{"rating over 5", func(e *LibraryEntry) { e.Rating = 6 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			if err := e.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLibraryEntry_EmptyStatusAllowed(t *testing.T) {
	e := LibraryEntry{ASIN: "B002V0QK4C", Source: SourceWishlist}
	if err := e.Validate(); err != nil {
		t.Errorf("wishlist entry without status should pass: %v", err)
	}
}

func TestSyncToken_Expired(t *testing.T) {
	now := time.Now()
	tok := SyncToken{JTI: "jti-1", UserID: "usr-1", ExpiresAt: now.Add(SyncTokenTTL)}

	if tok.Expired(now) {
		t.Error("fresh token should not be expired")
	}
	if tok.Expired(now.Add(14 * time.Minute)) {
		t.Error("token should survive 14 minutes")
	}
	if !tok.Expired(now.Add(16 * time.Minute)) {
		t.Error("token should expire after 15 minutes")
	}
}
