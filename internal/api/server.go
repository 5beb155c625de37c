// Package api provides the HTTP API server and handlers for Shelfshare.
//
// JSON operations are registered through huma for request validation and an
// OpenAPI document; the handful of redirect and image routes that don't fit
// huma's JSON model are plain chi handlers.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/shelfshare/shelfshare-server/internal/config"
	"github.com/shelfshare/shelfshare-server/internal/ratelimit"
	"github.com/shelfshare/shelfshare-server/internal/service"
	"github.com/shelfshare/shelfshare-server/internal/store"
)

// Services groups all business logic services used by the API server.
type Services struct {
	Auth     *service.AuthService
	User     *service.UserService
	Library  *service.LibraryService
	Metadata *service.MetadataService
	Sync     *service.SyncService
	List     *service.ListService
	Admin    *service.AdminService
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    *store.Store
	services *Services
	cfg      *config.Config
	router   *chi.Mux
	api      huma.API
	logger   *slog.Logger

	// authLimiter throttles the OAuth and sync-import endpoints per IP.
	authLimiter *ratelimit.KeyedRateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st *store.Store, services *Services, cfg *config.Config, logger *slog.Logger) *Server {
	s := &Server{
		store:       st,
		services:    services,
		cfg:         cfg,
		router:      chi.NewRouter(),
		logger:      logger,
		authLimiter: ratelimit.New(20.0/60.0, 10), // 20/min with a small burst
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("Shelfshare API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerUserRoutes()
	s.registerLibraryRoutes()
	s.registerMetadataRoutes()
	s.registerSyncRoutes()
	s.registerListRoutes()
	s.registerShareRoutes()
	s.registerAdminRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases server-held resources.
func (s *Server) Close() {
	s.authLimiter.Stop()
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{s.cfg.Server.PublicURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

// rateLimit guards a raw route with the per-IP limiter.
func (s *Server) rateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authLimiter.Allow(clientIP(r)) {
			s.logger.Warn("rate limit exceeded",
				"ip", clientIP(r),
				"path", r.URL.Path,
			)
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

// clientIP returns the client address; middleware.RealIP has already folded
// X-Forwarded-For / X-Real-IP into RemoteAddr.
func clientIP(r *http.Request) string {
	ip := r.RemoteAddr
	for i := len(ip) - 1; i >= 0; i-- {
		if ip[i] == ':' {
			return ip[:i]
		}
	}
	return ip
}
