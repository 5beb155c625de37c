package api

import (
	"bytes"
	"context"
	"crypto/rand"
	"image"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/shelfshare/shelfshare-server/internal/auth"
	"github.com/shelfshare/shelfshare-server/internal/config"
	"github.com/shelfshare/shelfshare-server/internal/domain"
	"github.com/shelfshare/shelfshare-server/internal/id"
	"github.com/shelfshare/shelfshare-server/internal/metadata/audible"
	"github.com/shelfshare/shelfshare-server/internal/ratelimit"
	"github.com/shelfshare/shelfshare-server/internal/render"
	"github.com/shelfshare/shelfshare-server/internal/service"
	"github.com/shelfshare/shelfshare-server/internal/store"
)

// testServer wraps the API server with a humatest client and direct access
// to the pieces tests need for seeding.
type testServer struct {
	*Server
	api          humatest.TestAPI
	tokenService *auth.TokenService
	images       *fakeImageStore
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	key := make([]byte, 32)
	_, err = rand.Read(key)
	require.NoError(t, err)
	tokenService, err := auth.NewTokenService(key, 720*time.Hour, 15*time.Minute)
	require.NoError(t, err)

	cfg := &config.Config{
		Server: config.ServerConfig{
			Name:      "Shelfshare Test",
			PublicURL: "http://localhost:8080",
		},
		Audible: config.AudibleConfig{DefaultRegion: "us"},
	}

	images := newFakeImageStore()
	renderer := render.NewRenderer(logger)

	services := &Services{
		Auth:     service.NewAuthService(st, tokenService, cfg.OAuth, logger),
		User:     service.NewUserService(st, logger),
		Library:  service.NewLibraryService(st, logger),
		Metadata: service.NewMetadataService(audible.New(logger), cfg.Audible, logger),
		Sync:     service.NewSyncService(st, tokenService, logger),
		List:     service.NewListService(st, renderer, images, fakeCoverSource{}, fakeCoverFetcher{}, cfg.Audible, logger),
		Admin:    service.NewAdminService(st, renderer, logger),
	}

	s := &Server{
		store:       st,
		services:    services,
		cfg:         cfg,
		router:      chi.NewRouter(),
		logger:      logger,
		authLimiter: ratelimit.New(100, 100),
	}
	t.Cleanup(s.Close)

	humaConfig := huma.DefaultConfig("Shelfshare API Test", "1.0.0")
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

	return &testServer{
		Server:       s,
		api:          humatest.Wrap(t, s.api),
		tokenService: tokenService,
		images:       images,
	}
}

// seedUser creates a user directly in the store and returns it with a valid
// session token.
func (ts *testServer) seedUser(t *testing.T, email string, admin bool) (*domain.User, string) {
	t.Helper()

	now := time.Now()
	user := &domain.User{
		ID:              id.MustGenerate("usr"),
		Email:           email,
		Name:            "Test Reader",
		Provider:        "google",
		ProviderSubject: "sub-" + email,
		IsAdmin:         admin,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	require.NoError(t, ts.store.CreateUser(context.Background(), user))

	token, err := ts.tokenService.GenerateSessionToken(user)
	require.NoError(t, err)
	return user, token
}

// claimUsername sets a username directly in the store.
func (ts *testServer) claimUsername(t *testing.T, userID, username string) {
	t.Helper()
	require.NoError(t, ts.store.SetUsername(context.Background(), userID, username, time.Now()))
}

func bearer(token string) string {
	return "Authorization: Bearer " + token
}

// fakeImageStore is an in-memory object store.
type fakeImageStore struct {
	objects map[string][]byte
}

func newFakeImageStore() *fakeImageStore {
	return &fakeImageStore{objects: make(map[string][]byte)}
}

func (f *fakeImageStore) PutPNG(_ context.Context, key string, data []byte) error {
	f.objects[key] = data
	return nil
}

func (f *fakeImageStore) PresignedGet(_ context.Context, key string) (string, error) {
	return "https://storage.test/" + key + "?signed", nil
}

func (f *fakeImageStore) Remove(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

// fakeCoverSource returns a fixed title for every ASIN.
type fakeCoverSource struct{}

func (fakeCoverSource) GetTitle(_ context.Context, _ audible.Region, asin string) (*audible.Title, error) {
	return &audible.Title{ASIN: asin, Title: "Title " + asin}, nil
}

// fakeCoverFetcher returns nil covers, which render as empty slots.
type fakeCoverFetcher struct{}

func (fakeCoverFetcher) FetchAll(_ context.Context, urls []string) []image.Image {
	return make([]image.Image, len(urls))
}
