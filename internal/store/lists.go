package store

import (
	"context"
	"database/sql"
	"encoding/json/v2"
	"errors"
	"time"

	"github.com/shelfshare/shelfshare-server/internal/domain"
)

// listColumns must match the scan order in scanList.
const listColumns = `id, user_id, name, description, type, tiers, template_id,
	image_status, image_version, og_key, square_key, created_at, updated_at`

func scanList(scanner interface{ Scan(dest ...any) error }) (*domain.List, error) {
	var l domain.List
	var tiersJSON, createdAt, updatedAt string

	err := scanner.Scan(
		&l.ID,
		&l.UserID,
		&l.Name,
		&l.Description,
		&l.Type,
		&tiersJSON,
		&l.TemplateID,
		&l.ImageStatus,
		&l.ImageVersion,
		&l.OGKey,
		&l.SquareKey,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(tiersJSON), &l.Tiers); err != nil {
		return nil, err
	}
	l.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	l.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func marshalTiers(tiers []string) (string, error) {
	if tiers == nil {
		tiers = []string{}
	}
	b, err := json.Marshal(tiers)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CreateList inserts a new list (without items).
func (s *Store) CreateList(ctx context.Context, l *domain.List) error {
	tiersJSON, err := marshalTiers(l.Tiers)
	if err != nil {
		return ErrInvalidInput.WithMessage("failed to encode tiers").WithCause(err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO lists (
			id, user_id, name, description, type, tiers, template_id,
			image_status, image_version, og_key, square_key, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID,
		l.UserID,
		l.Name,
		l.Description,
		string(l.Type),
		tiersJSON,
		l.TemplateID,
		string(l.ImageStatus),
		l.ImageVersion,
		l.OGKey,
		l.SquareKey,
		formatTime(l.CreatedAt),
		formatTime(l.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists.WithMessage("list already exists").WithCause(err)
		}
		return ErrInvalidInput.WithMessage("failed to create list").WithCause(err)
	}
	return nil
}

// GetList retrieves a list with its items, ordered by position.
func (s *Store) GetList(ctx context.Context, listID string) (*domain.List, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+listColumns+` FROM lists WHERE id = ?`, listID)

	l, err := scanList(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound.WithMessage("list not found")
		}
		return nil, ErrInvalidInput.WithMessage("failed to get list").WithCause(err)
	}

	l.Items, err = s.getListItems(ctx, listID)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Store) getListItems(ctx context.Context, listID string) ([]domain.ListItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, list_id, asin, position, tier
		FROM list_items WHERE list_id = ?
		ORDER BY position ASC`, listID)
	if err != nil {
		return nil, ErrInvalidInput.WithMessage("failed to list items").WithCause(err)
	}
	defer rows.Close()

	items := []domain.ListItem{}
	for rows.Next() {
		var item domain.ListItem
		if err := rows.Scan(&item.ID, &item.ListID, &item.ASIN, &item.Position, &item.Tier); err != nil {
			return nil, ErrInvalidInput.WithMessage("failed to scan item").WithCause(err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListListsByUser returns all of a user's lists, newest first, without items.
func (s *Store) ListListsByUser(ctx context.Context, userID string) ([]*domain.List, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+listColumns+` FROM lists WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, ErrInvalidInput.WithMessage("failed to list lists").WithCause(err)
	}
	defer rows.Close()

	var lists []*domain.List
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, ErrInvalidInput.WithMessage("failed to scan list").WithCause(err)
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

// UpdateList updates the list's own fields (not items, not image state).
func (s *Store) UpdateList(ctx context.Context, l *domain.List) error {
	tiersJSON, err := marshalTiers(l.Tiers)
	if err != nil {
		return ErrInvalidInput.WithMessage("failed to encode tiers").WithCause(err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE lists
		SET name = ?, description = ?, type = ?, tiers = ?, template_id = ?, updated_at = ?
		WHERE id = ?`,
		l.Name,
		l.Description,
		string(l.Type),
		tiersJSON,
		l.TemplateID,
		formatTime(l.UpdatedAt),
		l.ID,
	)
	if err != nil {
		return ErrInvalidInput.WithMessage("failed to update list").WithCause(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return ErrInvalidInput.WithCause(err)
	}
	if rows == 0 {
		return ErrNotFound.WithMessage("list not found")
	}
	return nil
}

// UpdateListImage writes image generation state back onto the list.
func (s *Store) UpdateListImage(ctx context.Context, listID string, status domain.ImageStatus, version int, ogKey, squareKey string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE lists
		SET image_status = ?, image_version = ?, og_key = ?, square_key = ?, updated_at = ?
		WHERE id = ?`,
		string(status), version, ogKey, squareKey, formatTime(time.Now()), listID)
	if err != nil {
		return ErrInvalidInput.WithMessage("failed to update image state").WithCause(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return ErrInvalidInput.WithCause(err)
	}
	if rows == 0 {
		return ErrNotFound.WithMessage("list not found")
	}
	return nil
}

// ReplaceListItems atomically replaces a list's items.
func (s *Store) ReplaceListItems(ctx context.Context, listID string, items []domain.ListItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ErrInvalidInput.WithMessage("failed to begin item update").WithCause(err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM list_items WHERE list_id = ?`, listID); err != nil {
		return ErrInvalidInput.WithMessage("failed to clear items").WithCause(err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO list_items (id, list_id, asin, position, tier)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return ErrInvalidInput.WithMessage("failed to prepare item insert").WithCause(err)
	}
	defer stmt.Close()

	for _, item := range items {
		if _, err := stmt.ExecContext(ctx,
			item.ID, listID, item.ASIN, item.Position, item.Tier); err != nil {
			if isUniqueViolation(err) {
				return ErrAlreadyExists.WithMessage("duplicate title in list").WithCause(err)
			}
			return ErrInvalidInput.WithMessage("failed to insert item").WithCause(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return ErrInvalidInput.WithMessage("failed to commit item update").WithCause(err)
	}
	return nil
}

// DeleteList removes a list and, via foreign keys, its items.
func (s *Store) DeleteList(ctx context.Context, listID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM lists WHERE id = ?`, listID)
	if err != nil {
		return ErrInvalidInput.WithMessage("failed to delete list").WithCause(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return ErrInvalidInput.WithCause(err)
	}
	if rows == 0 {
		return ErrNotFound.WithMessage("list not found")
	}
	return nil
}
