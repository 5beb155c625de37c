package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shelfshare/shelfshare-server/internal/auth"
	"github.com/shelfshare/shelfshare-server/internal/domain"
	domainerrors "github.com/shelfshare/shelfshare-server/internal/errors"
	"github.com/shelfshare/shelfshare-server/internal/id"
	"github.com/shelfshare/shelfshare-server/internal/store"
)

// syncHistoryLimit is how many past imports the history endpoint returns.
const syncHistoryLimit = 5

// SyncService issues single-use sync tokens to the browser extension and
// redeems them for full-replace library imports.
type SyncService struct {
	store        *store.Store
	tokenService *auth.TokenService
	logger       *slog.Logger
}

// NewSyncService creates a sync service.
func NewSyncService(st *store.Store, tokenService *auth.TokenService, logger *slog.Logger) *SyncService {
	return &SyncService{
		store:        st,
		tokenService: tokenService,
		logger:       logger,
	}
}

// audibleLibraryURL is the page the extension opens to scrape the user's
// library after receiving a token.
const audibleLibraryURL = "https://www.audible.com/library/titles"

// TokenResponse carries a freshly issued sync token to the extension.
type TokenResponse struct {
	Token           string    `json:"token"`
	AudibleURL      string    `json:"audible_url"`
	ExpiresAt       time.Time `json:"expires_at"`
	HasSyncedBefore bool      `json:"has_synced_before"`
}

// IssueToken mints a sync token for the signed-in user and records its jti
// so it can only be redeemed once.
func (s *SyncService) IssueToken(ctx context.Context, userID string) (*TokenResponse, error) {
	token, jti, expiresAt, err := s.tokenService.GenerateSyncToken(userID)
	if err != nil {
		return nil, fmt.Errorf("generate sync token: %w", err)
	}

	record := &domain.SyncToken{
		JTI:       jti,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateSyncToken(ctx, record); err != nil {
		return nil, fmt.Errorf("record sync token: %w", err)
	}

	history, err := s.store.ListSyncHistory(ctx, userID, 1)
	if err != nil {
		return nil, fmt.Errorf("check sync history: %w", err)
	}

	s.logger.Info("issued sync token",
		"user_id", userID,
		"jti", jti,
	)
	return &TokenResponse{
		Token:           token,
		AudibleURL:      audibleLibraryURL,
		ExpiresAt:       expiresAt,
		HasSyncedBefore: len(history) > 0,
	}, nil
}

// ImportEntry is one row of an extension import.
type ImportEntry struct {
	ASIN            string `json:"asin"`
	Source          string `json:"source"`
	Status          string `json:"status,omitempty"`
	ProgressPercent int    `json:"progress_percent,omitempty"`
	Rating          int    `json:"rating,omitempty"`
}

// ImportRequest is the full-replace payload sent by the extension.
type ImportRequest struct {
	Entries []ImportEntry `json:"entries"`
}

// Import redeems a sync token and replaces the user's entire library with
// the payload. Invalid rows are skipped and reported as warnings; only
// storage failures fail the import. The token is consumed even when the
// import later fails, so a replay can never succeed.
func (s *SyncService) Import(ctx context.Context, tokenString string, req ImportRequest) (*domain.SyncHistory, error) {
	claims, err := s.tokenService.VerifySyncToken(tokenString)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid sync token").WithCause(err)
	}

	if err := s.store.ConsumeSyncToken(ctx, claims.TokenID); err != nil {
		switch {
		case domainerrors.Is(err, store.ErrTokenUsed):
			return nil, domainerrors.Unauthorized("sync token already used")
		case domainerrors.Is(err, store.ErrNotFound):
			return nil, domainerrors.Unauthorized("unknown sync token")
		}
		return nil, fmt.Errorf("consume sync token: %w", err)
	}

	userID := claims.Subject
	now := time.Now()

	var warnings []string
	entries := make([]*domain.LibraryEntry, 0, len(req.Entries))
	for i, row := range req.Entries {
		entry := &domain.LibraryEntry{
			UserID:          userID,
			ASIN:            row.ASIN,
			Source:          domain.EntrySource(row.Source),
			Status:          domain.EntryStatus(row.Status),
			ProgressPercent: row.ProgressPercent,
			Rating:          row.Rating,
			AddedAt:         now,
		}
		if err := entry.Validate(); err != nil {
			warnings = append(warnings, fmt.Sprintf("row %d (%s): %v", i, row.ASIN, err))
			continue
		}

		entryID, err := id.Generate("ent")
		if err != nil {
			return nil, fmt.Errorf("generate entry ID: %w", err)
		}
		entry.ID = entryID
		entries = append(entries, entry)
	}

	storeWarnings, err := s.store.ReplaceLibrary(ctx, userID, entries)
	if err != nil {
		// Record the failed attempt; the token is already burned.
		if _, herr := s.recordHistory(ctx, userID, 0, 0, false, warnings); herr != nil {
			s.logger.Warn("failed to record failed import", "user_id", userID, "error", herr)
		}
		return nil, fmt.Errorf("replace library: %w", err)
	}
	warnings = append(warnings, storeWarnings...)

	var libraryCount, wishlistCount int
	for _, e := range entries {
		if e.Source == domain.SourceWishlist {
			wishlistCount++
		} else {
			libraryCount++
		}
	}

	history, err := s.recordHistory(ctx, userID, libraryCount, wishlistCount, true, warnings)
	if err != nil {
		return nil, err
	}

	s.logger.Info("library import complete",
		"user_id", userID,
		"library", libraryCount,
		"wishlist", wishlistCount,
		"warnings", len(warnings),
	)
	return history, nil
}

// History returns the user's most recent imports, newest first.
func (s *SyncService) History(ctx context.Context, userID string) ([]*domain.SyncHistory, error) {
	history, err := s.store.ListSyncHistory(ctx, userID, syncHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("list sync history: %w", err)
	}
	return history, nil
}

// PruneExpiredTokens deletes sync token records past their expiry. Called
// periodically from main.
func (s *SyncService) PruneExpiredTokens(ctx context.Context) error {
	n, err := s.store.DeleteExpiredSyncTokens(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("prune sync tokens: %w", err)
	}
	if n > 0 {
		s.logger.Debug("pruned expired sync tokens", "count", n)
	}
	return nil
}

func (s *SyncService) recordHistory(ctx context.Context, userID string, libraryCount, wishlistCount int, success bool, warnings []string) (*domain.SyncHistory, error) {
	historyID, err := id.Generate("sync")
	if err != nil {
		return nil, fmt.Errorf("generate history ID: %w", err)
	}

	history := &domain.SyncHistory{
		ID:            historyID,
		UserID:        userID,
		LibraryCount:  libraryCount,
		WishlistCount: wishlistCount,
		Success:       success,
		Warnings:      warnings,
		CreatedAt:     time.Now(),
	}
	if err := s.store.CreateSyncHistory(ctx, history); err != nil {
		// History is best-effort; the import itself already committed.
		s.logger.Warn("failed to record sync history",
			"user_id", userID,
			"error", err,
		)
	}
	return history, nil
}
