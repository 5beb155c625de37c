package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shelfshare/shelfshare-server/internal/domain"
	domainerrors "github.com/shelfshare/shelfshare-server/internal/errors"
	"github.com/shelfshare/shelfshare-server/internal/store"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// LibraryService reads and prunes a user's imported library. Writes happen
// only through sync imports; see SyncService.
type LibraryService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewLibraryService creates a library service.
func NewLibraryService(st *store.Store, logger *slog.Logger) *LibraryService {
	return &LibraryService{store: st, logger: logger}
}

// ListEntries returns a page of the user's library, newest first. source
// filters to LIBRARY or WISHLIST; empty returns both.
func (s *LibraryService) ListEntries(ctx context.Context, userID, source string, limit, offset int) ([]*domain.LibraryEntry, error) {
	src := domain.EntrySource(source)
	if source != "" && !src.Valid() {
		return nil, domainerrors.Validationf("invalid source %q", source)
	}

	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := s.store.ListEntries(ctx, userID, src, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

// GetEntry returns one of the user's entries. Another user's entry is
// indistinguishable from a missing one.
func (s *LibraryService) GetEntry(ctx context.Context, userID, entryID string) (*domain.LibraryEntry, error) {
	entry, err := s.store.GetEntry(ctx, userID, entryID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("entry not found")
		}
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return entry, nil
}

// DeleteEntry removes one entry from the user's library. Deleting someone
// else's entry is Forbidden, not NotFound; the entry IDs are not secret. The
// next full import will bring the entry back if it is still in the Audible
// library.
func (s *LibraryService) DeleteEntry(ctx context.Context, userID, entryID string) error {
	entry, err := s.store.GetEntryByID(ctx, entryID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("entry not found")
		}
		return fmt.Errorf("get entry: %w", err)
	}
	if entry.UserID != userID {
		return domainerrors.Forbidden("entry belongs to another user")
	}

	if err := s.store.DeleteEntry(ctx, userID, entryID); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

// LibraryStats summarizes a user's library, including when it last synced.
type LibraryStats struct {
	TotalEntries  int       `json:"total_entries"`
	LibraryCount  int       `json:"library_count"`
	WishlistCount int       `json:"wishlist_count"`
	FinishedCount int       `json:"finished_count"`
	LastSyncAt    time.Time `json:"last_sync_at,omitzero"`
}

// Stats returns the user's library counts and last sync time.
func (s *LibraryService) Stats(ctx context.Context, userID string) (*LibraryStats, error) {
	counts, err := s.store.GetLibraryStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get library stats: %w", err)
	}

	stats := &LibraryStats{
		TotalEntries:  counts.LibraryCount + counts.WishlistCount,
		LibraryCount:  counts.LibraryCount,
		WishlistCount: counts.WishlistCount,
		FinishedCount: counts.FinishedCount,
	}

	history, err := s.store.ListSyncHistory(ctx, userID, 1)
	if err != nil {
		return nil, fmt.Errorf("get last sync: %w", err)
	}
	if len(history) > 0 {
		stats.LastSyncAt = history[0].CreatedAt
	}
	return stats, nil
}
