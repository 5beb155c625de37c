package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shelfshare/shelfshare-server/internal/errors"
)

func newSyncService(t *testing.T) (*SyncService, *LibraryService, string) {
	t.Helper()
	s := newTestStore(t)
	user := seedUser(t, s, "reader@example.com")
	return NewSyncService(s, newTestTokens(t), testLogger()),
		NewLibraryService(s, testLogger()),
		user.ID
}

func importPayload() ImportRequest {
	return ImportRequest{Entries: []ImportEntry{
		{ASIN: "B002UZZ9QC", Source: "LIBRARY", Status: "FINISHED", ProgressPercent: 100, Rating: 5},
		{ASIN: "B004P8K1CK", Source: "LIBRARY", Status: "IN_PROGRESS", ProgressPercent: 40},
		{ASIN: "B0036NZAXU", Source: "WISHLIST"},
	}}
}

func TestSyncService_ImportRoundTrip(t *testing.T) {
	sync, library, userID := newSyncService(t)
	ctx := context.Background()

	resp, err := sync.IssueToken(ctx, userID)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if ttl := time.Until(resp.ExpiresAt); ttl < 14*time.Minute || ttl > 16*time.Minute {
		t.Errorf("token ttl = %v, want ~15m", ttl)
	}
	if resp.AudibleURL != "https://www.audible.com/library/titles" {
		t.Errorf("audible url = %q", resp.AudibleURL)
	}
	if resp.HasSyncedBefore {
		t.Error("fresh account should not report a prior sync")
	}

	history, err := sync.Import(ctx, resp.Token, importPayload())
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	// A successful import always comes back with a recorded history row.
	if history == nil {
		t.Fatal("Import returned nil history without an error")
	}
	if history.ID == "" {
		t.Error("history row has no ID")
	}
	if history.LibraryCount != 2 || history.WishlistCount != 1 {
		t.Errorf("counts = %d/%d, want 2/1", history.LibraryCount, history.WishlistCount)
	}
	if !history.Success {
		t.Error("import should be recorded as success")
	}
	if len(history.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", history.Warnings)
	}

	entries, err := library.ListEntries(ctx, userID, "", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Errorf("entries = %d, want 3", len(entries))
	}

	// A later token reports that the account has synced before.
	again, err := sync.IssueToken(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}
	if !again.HasSyncedBefore {
		t.Error("account with an import should report a prior sync")
	}
}

func TestSyncService_TokenIsSingleUse(t *testing.T) {
	sync, _, userID := newSyncService(t)
	ctx := context.Background()

	resp, err := sync.IssueToken(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := sync.Import(ctx, resp.Token, importPayload()); err != nil {
		t.Fatalf("first import: %v", err)
	}

	// Replay fails with 401, not a new import.
	_, err = sync.Import(ctx, resp.Token, importPayload())
	if !errors.Is(err, errors.ErrUnauthorized) {
		t.Errorf("expected UNAUTHORIZED for replay, got %v", err)
	}
}

func TestSyncService_RejectsGarbageToken(t *testing.T) {
	sync, _, _ := newSyncService(t)

	_, err := sync.Import(context.Background(), "v4.local.not-a-real-token", importPayload())
	if !errors.Is(err, errors.ErrUnauthorized) {
		t.Errorf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestSyncService_InvalidRowsBecomeWarnings(t *testing.T) {
	sync, library, userID := newSyncService(t)
	ctx := context.Background()

	resp, err := sync.IssueToken(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}

	req := ImportRequest{Entries: []ImportEntry{
		{ASIN: "B002UZZ9QC", Source: "LIBRARY"},
		{ASIN: "not-an-asin", Source: "LIBRARY"},           // bad ASIN
		{ASIN: "B004P8K1CK", Source: "BORROWED"},           // bad source
		{ASIN: "B0036NZAXU", Source: "LIBRARY", Rating: 9}, // bad rating
	}}

	history, err := sync.Import(ctx, resp.Token, req)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(history.Warnings) != 3 {
		t.Fatalf("warnings = %d, want 3: %v", len(history.Warnings), history.Warnings)
	}
	if !strings.Contains(history.Warnings[0], "not-an-asin") {
		t.Errorf("warning should name the bad row: %q", history.Warnings[0])
	}
	if history.LibraryCount != 1 {
		t.Errorf("library count = %d, want 1", history.LibraryCount)
	}

	entries, err := library.ListEntries(ctx, userID, "", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("entries = %d, want 1", len(entries))
	}
}

func TestSyncService_ImportReplacesWholeLibrary(t *testing.T) {
	sync, library, userID := newSyncService(t)
	ctx := context.Background()

	resp, _ := sync.IssueToken(ctx, userID)
	if _, err := sync.Import(ctx, resp.Token, importPayload()); err != nil {
		t.Fatal(err)
	}

	// Second import with one entry replaces all three.
	resp, _ = sync.IssueToken(ctx, userID)
	_, err := sync.Import(ctx, resp.Token, ImportRequest{Entries: []ImportEntry{
		{ASIN: "B00APB8LOO", Source: "LIBRARY"},
	}})
	if err != nil {
		t.Fatal(err)
	}

	entries, err := library.ListEntries(ctx, userID, "", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].ASIN != "B00APB8LOO" {
		t.Errorf("import should fully replace; got %d entries", len(entries))
	}
}

func TestSyncService_History(t *testing.T) {
	sync, _, userID := newSyncService(t)
	ctx := context.Background()

	// Seven imports; history keeps the last five.
	for range 7 {
		resp, err := sync.IssueToken(ctx, userID)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := sync.Import(ctx, resp.Token, importPayload()); err != nil {
			t.Fatal(err)
		}
	}

	history, err := sync.History(ctx, userID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 5 {
		t.Errorf("history = %d entries, want 5", len(history))
	}
	for i := 1; i < len(history); i++ {
		if history[i].CreatedAt.After(history[i-1].CreatedAt) {
			t.Error("history should be newest first")
		}
	}
}

func TestSyncService_PruneExpiredTokens(t *testing.T) {
	sync, _, userID := newSyncService(t)
	ctx := context.Background()

	if _, err := sync.IssueToken(ctx, userID); err != nil {
		t.Fatal(err)
	}

	// Nothing expired yet.
	if err := sync.PruneExpiredTokens(ctx); err != nil {
		t.Fatalf("PruneExpiredTokens: %v", err)
	}
}
