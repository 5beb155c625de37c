package api

import (
	"net/http"
	"time"
)

// stateCookieName holds the OAuth CSRF state between the redirect to the
// provider and the callback.
const stateCookieName = "shelfshare_oauth_state"

// registerAuthRoutes wires the OAuth sign-in flow. These are plain chi
// handlers: they answer with redirects and cookies, not JSON.
func (s *Server) registerAuthRoutes() {
	s.router.Get("/api/v1/auth/login", s.rateLimit(s.handleLogin))
	s.router.Get("/api/v1/auth/callback", s.rateLimit(s.handleCallback))
	s.router.Post("/api/v1/auth/logout", s.handleLogout)
}

// handleLogin sends the browser to the identity provider's consent page.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := s.services.Auth.GenerateState()
	if err != nil {
		s.writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/api/v1/auth",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   s.secureCookies(),
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, s.services.Auth.LoginURL(state), http.StatusFound)
}

// handleCallback completes the OAuth round trip and establishes a session.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	// The state must match the cookie set at login; a mismatch is a forged
	// or replayed callback.
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		s.logger.Warn("oauth state mismatch", "ip", clientIP(r))
		http.Error(w, "invalid state", http.StatusUnauthorized)
		return
	}
	clearCookie(w, stateCookieName, "/api/v1/auth", s.secureCookies())

	result, err := s.services.Auth.HandleCallback(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    result.SessionToken,
		Path:     "/",
		Expires:  result.ExpiresAt,
		HttpOnly: true,
		Secure:   s.secureCookies(),
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/", http.StatusFound)
}

// handleLogout clears the session cookie. Session tokens are stateless, so
// there is nothing to revoke server-side; they simply age out.
func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	clearCookie(w, sessionCookieName, "/", s.secureCookies())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) secureCookies() bool {
	return len(s.cfg.Server.PublicURL) >= 8 && s.cfg.Server.PublicURL[:8] == "https://"
}

func clearCookie(w http.ResponseWriter, name, path string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
