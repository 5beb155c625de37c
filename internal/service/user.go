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

// UserService handles profile operations, most importantly claiming the
// public username that unlocks share pages.
type UserService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewUserService creates a user service.
func NewUserService(st *store.Store, logger *slog.Logger) *UserService {
	return &UserService{store: st, logger: logger}
}

// Get returns the user by ID.
func (s *UserService) Get(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// GetByUsername resolves a public profile slug to its user.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("profile not found")
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return user, nil
}

// ClaimUsername assigns a public username to the user. Usernames are
// permanent once set and globally unique; a collision returns CONFLICT.
func (s *UserService) ClaimUsername(ctx context.Context, userID, username string) (*domain.User, error) {
	if err := domain.ValidateUsername(username); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user.HasUsername() {
		return nil, domainerrors.Conflict("username is already set and cannot be changed")
	}

	now := time.Now()
	if err := s.store.SetUsername(ctx, userID, username, now); err != nil {
		if domainerrors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("username already taken")
		}
		return nil, fmt.Errorf("set username: %w", err)
	}

	user.Username = username
	user.UpdatedAt = now

	s.logger.Info("username claimed",
		"user_id", userID,
		"username", username,
	)
	return user, nil
}
