// Package main provides a tool to seed the database with demo data.
//
// This creates a demo user with a claimed username, a small imported
// library, and a couple of lists so the share pages have something to show.
// Share images stay at status NONE; they render on the first save through
// the API.
//
// Usage:
//
//	DATA_PATH=~/shelfshare go run ./cmd/seed
//	DATA_PATH=~/shelfshare go run ./cmd/seed --admin   # Make the demo user an admin
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/shelfshare/shelfshare-server/internal/domain"
	"github.com/shelfshare/shelfshare-server/internal/id"
	"github.com/shelfshare/shelfshare-server/internal/logger"
	"github.com/shelfshare/shelfshare-server/internal/render"
	"github.com/shelfshare/shelfshare-server/internal/store"
)

var makeAdmin = flag.Bool("admin", false, "Give the demo user the admin flag")

// A handful of well-known audiobook ASINs for demo data.
var demoEntries = []struct {
	asin     string
	source   domain.EntrySource
	status   domain.EntryStatus
	progress int
	rating   int
}{
	{"B002V5BGSA", domain.SourceLibrary, domain.StatusFinished, 100, 5},
	{"B017V4IM1G", domain.SourceLibrary, domain.StatusFinished, 100, 4},
	{"B0036N91FA", domain.SourceLibrary, domain.StatusInProgress, 62, 0},
	{"B00FK5V1RI", domain.SourceLibrary, domain.StatusInProgress, 18, 0},
	{"B01LWUJKQ7", domain.SourceLibrary, domain.StatusNotStarted, 0, 0},
	{"B07G3X1KYT", domain.SourceWishlist, "", 0, 0},
	{"B08G9PRS1K", domain.SourceWishlist, "", 0, 0},
}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/shelfshare")
	}

	dbPath := filepath.Join(dataPath, "shelfshare.db")
	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.Open(dbPath, logger.New(logger.Config{}).Logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	user := seedUser(ctx, s)
	seedLibrary(ctx, s, user.ID)
	seedLists(ctx, s, user.ID)

	fmt.Printf("Seeded demo user %s (username %q)\n", user.Email, user.Username)
}

func seedUser(ctx context.Context, s *store.Store) *domain.User {
	now := time.Now()
	user := &domain.User{
		ID:              id.MustGenerate("usr"),
		Email:           "demo@shelfshare.dev",
		Name:            "Demo Reader",
		Provider:        "google",
		ProviderSubject: "seed-demo-user",
		IsAdmin:         *makeAdmin,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.CreateUser(ctx, user); err != nil {
		// Likely already seeded; reuse the existing account.
		existing, lookupErr := s.GetUserByEmail(ctx, user.Email)
		if lookupErr != nil {
			log.Fatalf("Failed to create demo user: %v", err)
		}
		fmt.Println("Demo user already exists, reusing")
		return existing
	}

	if err := s.SetUsername(ctx, user.ID, "demo-reader", now); err != nil {
		log.Fatalf("Failed to claim username: %v", err)
	}
	user.Username = "demo-reader"
	return user
}

func seedLibrary(ctx context.Context, s *store.Store, userID string) {
	now := time.Now()
	entries := make([]*domain.LibraryEntry, 0, len(demoEntries))
	for _, e := range demoEntries {
		entries = append(entries, &domain.LibraryEntry{
			ID:              id.MustGenerate("ent"),
			UserID:          userID,
			ASIN:            e.asin,
			Source:          e.source,
			Status:          e.status,
			ProgressPercent: e.progress,
			Rating:          e.rating,
			AddedAt:         now,
		})
	}

	warnings, err := s.ReplaceLibrary(ctx, userID, entries)
	if err != nil {
		log.Fatalf("Failed to seed library: %v", err)
	}
	for _, w := range warnings {
		fmt.Printf("  warning: %s\n", w)
	}
	fmt.Printf("Seeded %d library entries\n", len(entries))
}

func seedLists(ctx context.Context, s *store.Store, userID string) {
	now := time.Now()

	recs := &domain.List{
		ID:          id.MustGenerate("lst"),
		UserID:      userID,
		Name:        "Start Here",
		Description: "My five favorite listens of all time",
		Type:        domain.ListTypeRecommendation,
		TemplateID:  render.DefaultTemplateID(domain.ListTypeRecommendation),
		ImageStatus: domain.ImageStatusNone,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	createListWithItems(ctx, s, recs, []domain.ListItem{
		{ID: id.MustGenerate("li"), ListID: recs.ID, ASIN: "B002V5BGSA", Position: 0, Tier: -1},
		{ID: id.MustGenerate("li"), ListID: recs.ID, ASIN: "B017V4IM1G", Position: 1, Tier: -1},
		{ID: id.MustGenerate("li"), ListID: recs.ID, ASIN: "B0036N91FA", Position: 2, Tier: -1},
	})

	tiers := &domain.List{
		ID:          id.MustGenerate("lst"),
		UserID:      userID,
		Name:        "Sci-Fi, Ranked",
		Type:        domain.ListTypeTier,
		Tiers:       []string{"S", "A", "B"},
		TemplateID:  render.DefaultTemplateID(domain.ListTypeTier),
		ImageStatus: domain.ImageStatusNone,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	createListWithItems(ctx, s, tiers, []domain.ListItem{
		{ID: id.MustGenerate("li"), ListID: tiers.ID, ASIN: "B002V5BGSA", Position: 0, Tier: 0},
		{ID: id.MustGenerate("li"), ListID: tiers.ID, ASIN: "B00FK5V1RI", Position: 1, Tier: 1},
		{ID: id.MustGenerate("li"), ListID: tiers.ID, ASIN: "B01LWUJKQ7", Position: 2, Tier: 2},
	})

	fmt.Println("Seeded 2 lists")
}

func createListWithItems(ctx context.Context, s *store.Store, l *domain.List, items []domain.ListItem) {
	if err := s.CreateList(ctx, l); err != nil {
		log.Fatalf("Failed to create list %q: %v", l.Name, err)
	}
	if err := s.ReplaceListItems(ctx, l.ID, items); err != nil {
		log.Fatalf("Failed to add items to %q: %v", l.Name, err)
	}
}
