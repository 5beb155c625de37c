package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shelfshare/shelfshare-server/internal/domain"
)

func entry(id, userID, asin string, source domain.EntrySource) *domain.LibraryEntry {
	return &domain.LibraryEntry{
		ID:      id,
		UserID:  userID,
		ASIN:    asin,
		Source:  source,
		AddedAt: time.Now(),
	}
}

func TestReplaceLibrary_FullReplace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "usr-1", "reader@example.com")

	first := []*domain.LibraryEntry{
		entry("ent-1", u.ID, "B002V0QK4C", domain.SourceLibrary),
		entry("ent-2", u.ID, "B004T8RS4E", domain.SourceWishlist),
	}
	warnings, err := s.ReplaceLibrary(ctx, u.ID, first)
	if err != nil {
		t.Fatalf("first import: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}

	// Second import replaces everything, including entries no longer present.
	second := []*domain.LibraryEntry{
		entry("ent-3", u.ID, "B017V4IM1G", domain.SourceLibrary),
	}
	if _, err := s.ReplaceLibrary(ctx, u.ID, second); err != nil {
		t.Fatalf("second import: %v", err)
	}

	entries, err := s.ListEntries(ctx, u.ID, "", 100, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1 after full replace", len(entries))
	}
	if entries[0].ASIN != "B017V4IM1G" {
		t.Errorf("surviving entry = %s", entries[0].ASIN)
	}
}

func TestReplaceLibrary_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "usr-1", "reader@example.com")

	// Same payload twice yields the same final state.
	for i := 0; i < 2; i++ {
		fresh := []*domain.LibraryEntry{
			entry(fmt.Sprintf("run%d-1", i), u.ID, "B002V0QK4C", domain.SourceLibrary),
			entry(fmt.Sprintf("run%d-2", i), u.ID, "B004T8RS4E", domain.SourceLibrary),
		}
		if _, err := s.ReplaceLibrary(ctx, u.ID, fresh); err != nil {
			t.Fatalf("import %d: %v", i, err)
		}
	}

	entries, err := s.ListEntries(ctx, u.ID, "", 100, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("got %d entries, want 2", len(entries))
	}
}

func TestReplaceLibrary_RowFailureBecomesWarning(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "usr-1", "reader@example.com")

	// Two rows share an ASIN; the second violates UNIQUE(user_id, asin) and
	// must be skipped, not abort the batch.
	batch := []*domain.LibraryEntry{
		entry("ent-1", u.ID, "B002V0QK4C", domain.SourceLibrary),
		entry("ent-2", u.ID, "B002V0QK4C", domain.SourceWishlist),
		entry("ent-3", u.ID, "B004T8RS4E", domain.SourceLibrary),
	}

	warnings, err := s.ReplaceLibrary(ctx, u.ID, batch)
	if err != nil {
		t.Fatalf("import should succeed despite row failure: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(warnings), warnings)
	}

	entries, err := s.ListEntries(ctx, u.ID, "", 100, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("got %d entries, want 2", len(entries))
	}
}

func TestListEntries_SourceFilterAndPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "usr-1", "reader@example.com")

	batch := []*domain.LibraryEntry{
		entry("ent-1", u.ID, "B000000001", domain.SourceLibrary),
		entry("ent-2", u.ID, "B000000002", domain.SourceLibrary),
		entry("ent-3", u.ID, "B000000003", domain.SourceWishlist),
	}
	if _, err := s.ReplaceLibrary(ctx, u.ID, batch); err != nil {
		t.Fatal(err)
	}

	library, err := s.ListEntries(ctx, u.ID, domain.SourceLibrary, 100, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(library) != 2 {
		t.Errorf("library filter: got %d, want 2", len(library))
	}

	page, err := s.ListEntries(ctx, u.ID, "", 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 2 {
		t.Errorf("page 1: got %d, want 2", len(page))
	}
	rest, err := s.ListEntries(ctx, u.ID, "", 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 1 {
		t.Errorf("page 2: got %d, want 1", len(rest))
	}
}

func TestDeleteEntry_ScopedToOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := seedUser(t, s, "usr-1", "one@example.com")
	other := seedUser(t, s, "usr-2", "two@example.com")

	if _, err := s.ReplaceLibrary(ctx, owner.ID, []*domain.LibraryEntry{
		entry("ent-1", owner.ID, "B002V0QK4C", domain.SourceLibrary),
	}); err != nil {
		t.Fatal(err)
	}

	// Another user cannot delete it; the scoped query misses.
	if err := s.DeleteEntry(ctx, other.ID, "ent-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for non-owner, got %v", err)
	}

	if err := s.DeleteEntry(ctx, owner.ID, "ent-1"); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
}

func TestGetLibraryStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "usr-1", "reader@example.com")

	batch := []*domain.LibraryEntry{
		entry("ent-1", u.ID, "B000000001", domain.SourceLibrary),
		entry("ent-2", u.ID, "B000000002", domain.SourceLibrary),
		entry("ent-3", u.ID, "B000000003", domain.SourceWishlist),
	}
	batch[0].Status = domain.StatusFinished
	if _, err := s.ReplaceLibrary(ctx, u.ID, batch); err != nil {
		t.Fatal(err)
	}

	stats, err := s.GetLibraryStats(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetLibraryStats: %v", err)
	}
	if stats.LibraryCount != 2 || stats.WishlistCount != 1 || stats.FinishedCount != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestSyncHistory_LastFive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "usr-1", "reader@example.com")

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 7; i++ {
		h := &domain.SyncHistory{
			ID:           fmt.Sprintf("hist-%d", i),
			UserID:       u.ID,
			LibraryCount: i,
			Success:      true,
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}
		if i == 3 {
			h.Warnings = []string{"skipped B000000001: bad row"}
		}
		if err := s.CreateSyncHistory(ctx, h); err != nil {
			t.Fatalf("CreateSyncHistory: %v", err)
		}
	}

	history, err := s.ListSyncHistory(ctx, u.ID, 5)
	if err != nil {
		t.Fatalf("ListSyncHistory: %v", err)
	}
	if len(history) != 5 {
		t.Fatalf("got %d records, want 5", len(history))
	}
	// Newest first.
	if history[0].ID != "hist-6" {
		t.Errorf("first record = %s, want hist-6", history[0].ID)
	}
	if history[len(history)-1].ID != "hist-2" {
		t.Errorf("last record = %s, want hist-2", history[len(history)-1].ID)
	}

	// Warnings round-trip through JSON.
	for _, h := range history {
		if h.ID == "hist-3" {
			if len(h.Warnings) != 1 {
				t.Errorf("warnings lost: %+v", h)
			}
		}
	}
}
