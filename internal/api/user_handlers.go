package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfshare/shelfshare-server/internal/domain"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Description: "Returns the signed-in user's profile",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "claimUsername",
		Method:      http.MethodPut,
		Path:        "/api/v1/users/me/username",
		Summary:     "Claim username",
		Description: "Sets the permanent public profile slug; share pages are unavailable until a username is claimed",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleClaimUsername)
}

// === DTOs ===

// UserResponse contains user data in API responses.
type UserResponse struct {
	ID          string    `json:"id" doc:"User ID"`
	Email       string    `json:"email" doc:"Email address"`
	Name        string    `json:"name" doc:"Display name"`
	AvatarURL   string    `json:"avatar_url,omitempty" doc:"Avatar image URL"`
	Username    string    `json:"username,omitempty" doc:"Public profile slug, empty until claimed"`
	IsAdmin     bool      `json:"is_admin" doc:"Admin flag"`
	CreatedAt   time.Time `json:"created_at" doc:"Account creation time"`
	LastLoginAt time.Time `json:"last_login_at,omitzero" doc:"Last sign-in time"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		AvatarURL:   u.AvatarURL,
		Username:    u.Username,
		IsAdmin:     u.IsAdmin,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

// GetCurrentUserInput contains parameters for the current-user endpoint.
type GetCurrentUserInput struct {
	AuthInput
}

// UserOutput wraps a user response for huma.
type UserOutput struct {
	Body UserResponse
}

// ClaimUsernameRequest is the request body for claiming a username.
type ClaimUsernameRequest struct {
	Username string `json:"username" validate:"required,username" doc:"Desired profile slug (lowercase, 3-30 chars)"`
}

// ClaimUsernameInput wraps the claim request for huma.
type ClaimUsernameInput struct {
	AuthInput
	Body ClaimUsernameRequest
}

// === Handlers ===

func (s *Server) handleGetCurrentUser(ctx context.Context, input *GetCurrentUserInput) (*UserOutput, error) {
	user, err := s.authenticate(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: toUserResponse(user)}, nil
}

func (s *Server) handleClaimUsername(ctx context.Context, input *ClaimUsernameInput) (*UserOutput, error) {
	user, err := s.authenticate(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	updated, err := s.services.User.ClaimUsername(ctx, user.ID, input.Body.Username)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: toUserResponse(updated)}, nil
}
