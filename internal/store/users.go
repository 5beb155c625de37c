package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/shelfshare/shelfshare-server/internal/domain"
)

// userColumns is the ordered list of columns selected in user queries.
// Must match the scan order in scanUser.
const userColumns = `id, email, email_lower, name, avatar_url, username,
	is_admin, provider, provider_subject, created_at, updated_at, last_login_at`

// scanUser scans a sql.Row (or sql.Rows via its Scan method) into a domain.User.
func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var u domain.User

	var (
		emailLower  string
		username    sql.NullString
		isAdmin     int
		createdAt   string
		updatedAt   string
		lastLoginAt sql.NullString
	)

	err := scanner.Scan(
		&u.ID,
		&u.Email,
		&emailLower,
		&u.Name,
		&u.AvatarURL,
		&username,
		&isAdmin,
		&u.Provider,
		&u.ProviderSubject,
		&createdAt,
		&updatedAt,
		&lastLoginAt,
	)
	if err != nil {
		return nil, err
	}

	if username.Valid {
		u.Username = username.String
	}
	u.IsAdmin = isAdmin != 0

	u.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	u.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	u.LastLoginAt, err = parseNullableTime(lastLoginAt)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// CreateUser inserts a new user.
// Returns ErrAlreadyExists if the email or provider subject is taken.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	emailLower := strings.ToLower(strings.TrimSpace(user.Email))

	var lastLogin sql.NullString
	if !user.LastLoginAt.IsZero() {
		lastLogin = sql.NullString{String: formatTime(user.LastLoginAt), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (
			id, email, email_lower, name, avatar_url, username,
			is_admin, provider, provider_subject, created_at, updated_at, last_login_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		emailLower,
		user.Name,
		user.AvatarURL,
		nullString(user.Username),
		boolToInt(user.IsAdmin),
		user.Provider,
		user.ProviderSubject,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
		lastLogin,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists.WithMessage("user already exists").WithCause(err)
		}
		return ErrInvalidInput.WithMessage("failed to create user").WithCause(err)
	}

	return nil
}

// GetUserByID retrieves a user by ID.
func (s *Store) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound.WithMessage("user not found")
		}
		return nil, ErrInvalidInput.WithMessage("failed to get user").WithCause(err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email (case-insensitive).
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	emailLower := strings.ToLower(strings.TrimSpace(email))

	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email_lower = ?`, emailLower)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound.WithMessage("user not found")
		}
		return nil, ErrInvalidInput.WithMessage("failed to get user").WithCause(err)
	}
	return user, nil
}

// GetUserByProviderSubject retrieves a user by OAuth provider identity.
func (s *Store) GetUserByProviderSubject(ctx context.Context, provider, subject string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE provider = ? AND provider_subject = ?`,
		provider, subject)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound.WithMessage("user not found")
		}
		return nil, ErrInvalidInput.WithMessage("failed to get user").WithCause(err)
	}
	return user, nil
}

// GetUserByUsername retrieves a user by their public profile slug.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound.WithMessage("user not found")
		}
		return nil, ErrInvalidInput.WithMessage("failed to get user").WithCause(err)
	}
	return user, nil
}

// SetUsername claims a public profile slug for a user.
// Returns ErrAlreadyExists if another user holds the username.
func (s *Store) SetUsername(ctx context.Context, userID, username string, updatedAt time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET username = ?, updated_at = ? WHERE id = ?`,
		username, formatTime(updatedAt), userID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists.WithMessage("username already taken").WithCause(err)
		}
		return ErrInvalidInput.WithMessage("failed to set username").WithCause(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return ErrInvalidInput.WithCause(err)
	}
	if rows == 0 {
		return ErrNotFound.WithMessage("user not found")
	}
	return nil
}

// UpdateLastLogin records a successful sign-in.
func (s *Store) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	ts := formatTime(at)
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = ?, updated_at = ? WHERE id = ?`,
		ts, ts, userID)
	if err != nil {
		return ErrInvalidInput.WithMessage("failed to update last login").WithCause(err)
	}
	return nil
}

// ListUsers returns all users ordered by creation time. Admin console only.
func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, ErrInvalidInput.WithMessage("failed to list users").WithCause(err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, ErrInvalidInput.WithMessage("failed to scan user").WithCause(err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// DeleteUser removes a user and, via foreign keys, their library entries,
// sync tokens, history, and lists.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return ErrInvalidInput.WithMessage("failed to delete user").WithCause(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return ErrInvalidInput.WithCause(err)
	}
	if rows == 0 {
		return ErrNotFound.WithMessage("user not found")
	}
	return nil
}
