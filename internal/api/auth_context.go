package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfshare/shelfshare-server/internal/domain"
	domainerrors "github.com/shelfshare/shelfshare-server/internal/errors"
)

// sessionCookieName is the HTTP-only cookie carrying the session token for
// browser clients. API clients send the same token as a bearer header.
const sessionCookieName = "shelfshare_session"

// AuthInput carries the session credential; embed it in authenticated huma
// inputs. Bearer header wins over the cookie.
type AuthInput struct {
	Authorization string `header:"Authorization" doc:"Bearer session token"`
	SessionCookie string `cookie:"shelfshare_session" doc:"Session cookie (browser clients)"`
}

// token extracts the raw session token from either transport.
func (a *AuthInput) token() string {
	if a.Authorization != "" {
		parts := strings.SplitN(a.Authorization, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	return a.SessionCookie
}

// authenticate validates the session credential and returns the user.
func (s *Server) authenticate(ctx context.Context, in AuthInput) (*domain.User, error) {
	token := in.token()
	if token == "" {
		return nil, huma.Error401Unauthorized("authentication required")
	}

	user, _, err := s.services.Auth.VerifySession(ctx, token)
	if err != nil {
		return nil, huma.Error401Unauthorized("invalid or expired session")
	}
	return user, nil
}

// authenticateAdmin validates the session and requires the admin flag.
func (s *Server) authenticateAdmin(ctx context.Context, in AuthInput) (*domain.User, error) {
	user, err := s.authenticate(ctx, in)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin {
		return nil, domainerrors.Forbidden("admin access required")
	}
	return user, nil
}

// authenticateRequest is the raw-route variant of authenticate.
func (s *Server) authenticateRequest(r *http.Request) (*domain.User, error) {
	in := AuthInput{Authorization: r.Header.Get("Authorization")}
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		in.SessionCookie = cookie.Value
	}
	return s.authenticate(r.Context(), in)
}
