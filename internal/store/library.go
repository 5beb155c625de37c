package store

import (
	"context"
	"database/sql"
	"encoding/json/v2"
	"errors"
	"fmt"

	"github.com/shelfshare/shelfshare-server/internal/domain"
)

// entryColumns must match the scan order in scanEntry.
const entryColumns = `id, user_id, asin, source, status, progress_percent, rating, added_at`

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*domain.LibraryEntry, error) {
	var e domain.LibraryEntry
	var addedAt string

	err := scanner.Scan(
		&e.ID,
		&e.UserID,
		&e.ASIN,
		&e.Source,
		&e.Status,
		&e.ProgressPercent,
		&e.Rating,
		&addedAt,
	)
	if err != nil {
		return nil, err
	}

	e.AddedAt, err = parseTime(addedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ReplaceLibrary atomically replaces a user's library with the given entries.
// All existing rows for the user are deleted, then entries are inserted one
// by one; a row that fails to insert is skipped and reported as a warning.
// The batch fails only if the delete itself (or the commit) fails.
func (s *Store) ReplaceLibrary(ctx context.Context, userID string, entries []*domain.LibraryEntry) (warnings []string, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, ErrInvalidInput.WithMessage("failed to begin import").WithCause(err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM library_entries WHERE user_id = ?`, userID); err != nil {
		return nil, ErrInvalidInput.WithMessage("failed to clear library").WithCause(err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO library_entries (
			id, user_id, asin, source, status, progress_percent, rating, added_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, ErrInvalidInput.WithMessage("failed to prepare import").WithCause(err)
	}
	defer stmt.Close()

	for _, e := range entries {
		_, insErr := stmt.ExecContext(ctx,
			e.ID,
			userID,
			e.ASIN,
			string(e.Source),
			string(e.Status),
			e.ProgressPercent,
			e.Rating,
			formatTime(e.AddedAt),
		)
		if insErr != nil {
			warnings = append(warnings, fmt.Sprintf("skipped %s: %v", e.ASIN, insErr))
			s.logger.Warn("library import row skipped",
				"user_id", userID,
				"asin", e.ASIN,
				"error", insErr,
			)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, ErrInvalidInput.WithMessage("failed to commit import").WithCause(err)
	}
	return warnings, nil
}

// ListEntries returns a page of a user's library ordered by recency.
// source filters to LIBRARY or WISHLIST when non-empty.
func (s *Store) ListEntries(ctx context.Context, userID string, source domain.EntrySource, limit, offset int) ([]*domain.LibraryEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM library_entries WHERE user_id = ?`
	args := []any{userID}

	if source != "" {
		query += ` AND source = ?`
		args = append(args, string(source))
	}
	query += ` ORDER BY added_at DESC, id ASC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, ErrInvalidInput.WithMessage("failed to list entries").WithCause(err)
	}
	defer rows.Close()

	var entries []*domain.LibraryEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, ErrInvalidInput.WithMessage("failed to scan entry").WithCause(err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetEntryByASIN looks up one of the user's entries by ASIN.
func (s *Store) GetEntryByASIN(ctx context.Context, userID, asin string) (*domain.LibraryEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM library_entries WHERE user_id = ? AND asin = ?`,
		userID, asin)

	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound.WithMessage("entry not found")
		}
		return nil, ErrInvalidInput.WithMessage("failed to get entry").WithCause(err)
	}
	return e, nil
}

// GetEntryByID looks up an entry by ID alone. Callers are responsible for
// checking ownership; handlers need the owner to tell 403 from 404.
func (s *Store) GetEntryByID(ctx context.Context, entryID string) (*domain.LibraryEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM library_entries WHERE id = ?`, entryID)

	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound.WithMessage("entry not found")
		}
		return nil, ErrInvalidInput.WithMessage("failed to get entry").WithCause(err)
	}
	return e, nil
}

// GetEntry looks up an entry by ID, scoped to its owner.
func (s *Store) GetEntry(ctx context.Context, userID, entryID string) (*domain.LibraryEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM library_entries WHERE user_id = ? AND id = ?`,
		userID, entryID)

	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound.WithMessage("entry not found")
		}
		return nil, ErrInvalidInput.WithMessage("failed to get entry").WithCause(err)
	}
	return e, nil
}

// DeleteEntry removes a single entry, scoped to its owner.
func (s *Store) DeleteEntry(ctx context.Context, userID, entryID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM library_entries WHERE user_id = ? AND id = ?`, userID, entryID)
	if err != nil {
		return ErrInvalidInput.WithMessage("failed to delete entry").WithCause(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return ErrInvalidInput.WithCause(err)
	}
	if rows == 0 {
		return ErrNotFound.WithMessage("entry not found")
	}
	return nil
}

// LibraryStats summarizes a user's library.
type LibraryStats struct {
	LibraryCount  int `json:"library_count"`
	WishlistCount int `json:"wishlist_count"`
	FinishedCount int `json:"finished_count"`
}

// GetLibraryStats counts a user's entries by source and finished status.
func (s *Store) GetLibraryStats(ctx context.Context, userID string) (*LibraryStats, error) {
	var stats LibraryStats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(CASE WHEN source = 'LIBRARY' THEN 1 END),
			COUNT(CASE WHEN source = 'WISHLIST' THEN 1 END),
			COUNT(CASE WHEN status = 'FINISHED' THEN 1 END)
		FROM library_entries WHERE user_id = ?`, userID).
		Scan(&stats.LibraryCount, &stats.WishlistCount, &stats.FinishedCount)
	if err != nil {
		return nil, ErrInvalidInput.WithMessage("failed to get stats").WithCause(err)
	}
	return &stats, nil
}

// CreateSyncHistory appends a completed sync record.
func (s *Store) CreateSyncHistory(ctx context.Context, h *domain.SyncHistory) error {
	warnings := h.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	warningsJSON, err := json.Marshal(warnings)
	if err != nil {
		return ErrInvalidInput.WithMessage("failed to encode warnings").WithCause(err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sync_history (
			id, user_id, library_count, wishlist_count, success, warnings, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		h.ID,
		h.UserID,
		h.LibraryCount,
		h.WishlistCount,
		boolToInt(h.Success),
		string(warningsJSON),
		formatTime(h.CreatedAt),
	)
	if err != nil {
		return ErrInvalidInput.WithMessage("failed to record sync").WithCause(err)
	}
	return nil
}

// ListSyncHistory returns the user's most recent sync records, newest first.
func (s *Store) ListSyncHistory(ctx context.Context, userID string, limit int) ([]*domain.SyncHistory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, library_count, wishlist_count, success, warnings, created_at
		FROM sync_history WHERE user_id = ?
		ORDER BY created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, ErrInvalidInput.WithMessage("failed to list sync history").WithCause(err)
	}
	defer rows.Close()

	var history []*domain.SyncHistory
	for rows.Next() {
		var h domain.SyncHistory
		var success int
		var warningsJSON, createdAt string

		if err := rows.Scan(&h.ID, &h.UserID, &h.LibraryCount, &h.WishlistCount,
			&success, &warningsJSON, &createdAt); err != nil {
			return nil, ErrInvalidInput.WithMessage("failed to scan sync history").WithCause(err)
		}

		h.Success = success != 0
		if err := json.Unmarshal([]byte(warningsJSON), &h.Warnings); err != nil {
			return nil, ErrInvalidInput.WithMessage("failed to decode warnings").WithCause(err)
		}
		h.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, err
		}

		history = append(history, &h)
	}
	return history, rows.Err()
}
