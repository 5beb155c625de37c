package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/shelfshare/shelfshare-server/internal/auth"
	"github.com/shelfshare/shelfshare-server/internal/config"
	"github.com/shelfshare/shelfshare-server/internal/domain"
	domainerrors "github.com/shelfshare/shelfshare-server/internal/errors"
	"github.com/shelfshare/shelfshare-server/internal/id"
	"github.com/shelfshare/shelfshare-server/internal/store"
)

const (
	providerGoogle = "google"

	// googleUserInfoURL serves the OpenID Connect userinfo document.
	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

	// maxUserInfoSize bounds the userinfo response body.
	maxUserInfoSize = 64 * 1024
)

// googleEndpoint is spelled out here so the oauth2/google subpackage (and its
// cloud metadata dependency) stays out of the build.
var googleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

// AuthService handles OAuth sign-in and session token verification.
// Accounts are created on first sign-in; there is no password path.
type AuthService struct {
	store        *store.Store
	tokenService *auth.TokenService
	oauthConfig  *oauth2.Config
	logger       *slog.Logger

	// userInfoURL is overridable in tests.
	userInfoURL string
}

// NewAuthService creates an auth service for the configured OAuth provider.
func NewAuthService(st *store.Store, tokenService *auth.TokenService, cfg config.OAuthConfig, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:        st,
		tokenService: tokenService,
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     googleEndpoint,
		},
		logger:      logger,
		userInfoURL: googleUserInfoURL,
	}
}

// GenerateState creates an opaque CSRF state value for the OAuth round trip.
// The handler stores it in a short-lived cookie and checks it on callback.
func (s *AuthService) GenerateState() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// LoginURL returns the provider's consent page URL for the given state.
func (s *AuthService) LoginURL(state string) string {
	return s.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// AuthResult is the outcome of a completed sign-in.
type AuthResult struct {
	User         *domain.User `json:"user"`
	SessionToken string       `json:"-"` // Set as an HTTP-only cookie, never in the body
	ExpiresAt    time.Time    `json:"expires_at"`
}

// userInfo is the subset of the OpenID Connect userinfo response we use.
type userInfo struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// HandleCallback exchanges the authorization code, fetches the user's
// profile, creates the account on first sign-in, and issues a session token.
func (s *AuthService) HandleCallback(ctx context.Context, code string) (*AuthResult, error) {
	if code == "" {
		return nil, domainerrors.Validation("authorization code is required")
	}

	oauthToken, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, domainerrors.Unauthorized("authorization code exchange failed").WithCause(err)
	}

	info, err := s.fetchUserInfo(ctx, oauthToken)
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	if info.Subject == "" || info.Email == "" {
		return nil, domainerrors.Unauthorized("identity provider returned an incomplete profile")
	}

	user, err := s.findOrCreateUser(ctx, info)
	if err != nil {
		return nil, err
	}

	sessionToken, err := s.tokenService.GenerateSessionToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	s.logger.Info("user signed in",
		"user_id", user.ID,
		"provider", providerGoogle,
	)

	return &AuthResult{
		User:         user,
		SessionToken: sessionToken,
		ExpiresAt:    time.Now().Add(s.tokenService.SessionDuration()),
	}, nil
}

// VerifySession validates a session token and loads the user behind it.
// Used by the authentication middleware.
func (s *AuthService) VerifySession(ctx context.Context, tokenString string) (*domain.User, *auth.SessionClaims, error) {
	claims, err := s.tokenService.VerifySessionToken(tokenString)
	if err != nil {
		return nil, nil, domainerrors.Unauthorized("invalid session").WithCause(err)
	}

	user, err := s.store.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, nil, domainerrors.Unauthorized("account no longer exists")
		}
		return nil, nil, fmt.Errorf("get user: %w", err)
	}

	return user, claims, nil
}

func (s *AuthService) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*userInfo, error) {
	client := s.oauthConfig.Client(ctx, token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUserInfoSize))
	if err != nil {
		return nil, fmt.Errorf("read userinfo: %w", err)
	}

	var info userInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("parse userinfo: %w", err)
	}
	return &info, nil
}

// findOrCreateUser resolves the provider identity to a local account,
// creating one on first sign-in. The provider subject is the stable key;
// email and avatar refresh on every sign-in would churn rows, so only
// last_login_at is updated for returning users.
func (s *AuthService) findOrCreateUser(ctx context.Context, info *userInfo) (*domain.User, error) {
	now := time.Now()

	user, err := s.store.GetUserByProviderSubject(ctx, providerGoogle, info.Subject)
	if err == nil {
		if updateErr := s.store.UpdateLastLogin(ctx, user.ID, now); updateErr != nil {
			// Log but don't fail sign-in.
			s.logger.Warn("failed to update last login time",
				"user_id", user.ID,
				"error", updateErr,
			)
		} else {
			user.LastLoginAt = now
		}
		return user, nil
	}
	if !domainerrors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	userID, err := id.Generate("usr")
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user = &domain.User{
		ID:              userID,
		Email:           info.Email,
		Name:            info.Name,
		AvatarURL:       info.Picture,
		Provider:        providerGoogle,
		ProviderSubject: info.Subject,
		CreatedAt:       now,
		UpdatedAt:       now,
		LastLoginAt:     now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if domainerrors.Is(err, store.ErrAlreadyExists) {
			// A concurrent first sign-in won the race; load the winner.
			existing, lookupErr := s.store.GetUserByProviderSubject(ctx, providerGoogle, info.Subject)
			if lookupErr == nil {
				return existing, nil
			}
			return nil, domainerrors.Conflict("account already exists for this email")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("created account on first sign-in",
		"user_id", userID,
		"email", user.Email,
	)
	return user, nil
}
