package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"image"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/shelfshare/shelfshare-server/internal/auth"
	"github.com/shelfshare/shelfshare-server/internal/domain"
	"github.com/shelfshare/shelfshare-server/internal/id"
	"github.com/shelfshare/shelfshare-server/internal/metadata/audible"
	"github.com/shelfshare/shelfshare-server/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"), testLogger())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestTokens(t *testing.T) *auth.TokenService {
	t.Helper()
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		t.Fatal(err)
	}
	svc, err := auth.NewTokenService(key, 720*time.Hour, 15*time.Minute)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return svc
}

func seedUser(t *testing.T, s *store.Store, email string) *domain.User {
	t.Helper()
	now := time.Now()
	user := &domain.User{
		ID:              id.MustGenerate("usr"),
		Email:           email,
		Name:            "Test Reader",
		Provider:        "google",
		ProviderSubject: "sub-" + email,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

// fakeImageStore is an in-memory imageStore.
type fakeImageStore struct {
	objects map[string][]byte
	putErr  error
}

func newFakeImageStore() *fakeImageStore {
	return &fakeImageStore{objects: make(map[string][]byte)}
}

func (f *fakeImageStore) PutPNG(_ context.Context, key string, data []byte) error {
	if f.putErr != nil {
		return f.putErr
	}
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
