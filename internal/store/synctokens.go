package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shelfshare/shelfshare-server/internal/domain"
)

// CreateSyncToken records an issued sync token for later redemption.
func (s *Store) CreateSyncToken(ctx context.Context, t *domain.SyncToken) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_tokens (jti, user_id, expires_at, used, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		t.JTI,
		t.UserID,
		formatTime(t.ExpiresAt),
		boolToInt(t.Used),
		formatTime(t.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists.WithMessage("token already issued").WithCause(err)
		}
		return ErrInvalidInput.WithMessage("failed to create sync token").WithCause(err)
	}
	return nil
}

// GetSyncToken retrieves a token record by jti.
func (s *Store) GetSyncToken(ctx context.Context, jti string) (*domain.SyncToken, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT jti, user_id, expires_at, used, created_at
		FROM sync_tokens WHERE jti = ?`, jti)

	var t domain.SyncToken
	var used int
	var expiresAt, createdAt string

	err := row.Scan(&t.JTI, &t.UserID, &expiresAt, &used, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound.WithMessage("sync token not found")
		}
		return nil, ErrInvalidInput.WithMessage("failed to get sync token").WithCause(err)
	}

	t.Used = used != 0
	t.ExpiresAt, err = parseTime(expiresAt)
	if err != nil {
		return nil, err
	}
	t.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ConsumeSyncToken atomically marks a token used. A token can be consumed
// exactly once: the UPDATE matches only unused rows, so concurrent redemption
// attempts race on the same row and all but one see ErrTokenUsed.
func (s *Store) ConsumeSyncToken(ctx context.Context, jti string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE sync_tokens SET used = 1 WHERE jti = ? AND used = 0`, jti)
	if err != nil {
		return ErrInvalidInput.WithMessage("failed to consume sync token").WithCause(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return ErrInvalidInput.WithCause(err)
	}
	if rows == 1 {
		return nil
	}

	// Zero rows: distinguish "never issued" from "already used".
	var used int
	err = s.db.QueryRowContext(ctx,
		`SELECT used FROM sync_tokens WHERE jti = ?`, jti).Scan(&used)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound.WithMessage("sync token not found")
	}
	if err != nil {
		return ErrInvalidInput.WithCause(err)
	}
	return ErrTokenUsed
}

// DeleteExpiredSyncTokens removes tokens past their expiry. Returns the
// number of rows removed.
func (s *Store) DeleteExpiredSyncTokens(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM sync_tokens WHERE expires_at < ?`, formatTime(now))
	if err != nil {
		return 0, ErrInvalidInput.WithMessage("failed to prune sync tokens").WithCause(err)
	}
	return result.RowsAffected()
}
