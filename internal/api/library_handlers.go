package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfshare/shelfshare-server/internal/domain"
)

func (s *Server) registerLibraryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listLibraryEntries",
		Method:      http.MethodGet,
		Path:        "/api/v1/library",
		Summary:     "List library entries",
		Description: "Returns the signed-in user's imported library, newest first",
		Tags:        []string{"Library"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListLibraryEntries)

	huma.Register(s.api, huma.Operation{
		OperationID: "lookupLibraryTitle",
		Method:      http.MethodGet,
		Path:        "/api/v1/library/lookup",
		Summary:     "Look up title metadata",
		Description: "Resolves an ASIN against the catalog; the extension uses this while browsing",
		Tags:        []string{"Library"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleLookupLibraryTitle)

	huma.Register(s.api, huma.Operation{
		OperationID: "getLibraryStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/library/stats",
		Summary:     "Get library stats",
		Tags:        []string{"Library"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetLibraryStats)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteLibraryEntry",
		Method:      http.MethodDelete,
		Path:        "/api/v1/library/{id}",
		Summary:     "Delete library entry",
		Description: "Removes one entry; the next full import may restore it",
		Tags:        []string{"Library"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteLibraryEntry)
}

// === DTOs ===

// LibraryEntryResponse contains one library entry in API responses.
type LibraryEntryResponse struct {
	ID              string    `json:"id" doc:"Entry ID"`
	ASIN            string    `json:"asin" doc:"Audible catalog identifier"`
	Source          string    `json:"source" doc:"LIBRARY or WISHLIST"`
	Status          string    `json:"status,omitempty" doc:"Listening status, if known"`
	ProgressPercent int       `json:"progress_percent" doc:"Listening progress 0-100"`
	Rating          int       `json:"rating,omitempty" doc:"User rating 1-5, 0 if unrated"`
	AddedAt         time.Time `json:"added_at" doc:"Import time"`
}

func toEntryResponse(e *domain.LibraryEntry) LibraryEntryResponse {
	return LibraryEntryResponse{
		ID:              e.ID,
		ASIN:            e.ASIN,
		Source:          string(e.Source),
		Status:          string(e.Status),
		ProgressPercent: e.ProgressPercent,
		Rating:          e.Rating,
		AddedAt:         e.AddedAt,
	}
}

// ListLibraryInput contains parameters for listing library entries.
type ListLibraryInput struct {
	AuthInput
	Source string `query:"source" enum:"LIBRARY,WISHLIST" required:"false" doc:"Filter by source"`
	Limit  int    `query:"limit" minimum:"1" maximum:"200" required:"false" doc:"Page size (default 50)"`
	Offset int    `query:"offset" minimum:"0" required:"false" doc:"Page offset"`
}

// ListLibraryResponse contains a page of library entries.
type ListLibraryResponse struct {
	Entries []LibraryEntryResponse `json:"entries" doc:"Library entries"`
}

// ListLibraryOutput wraps the list response for huma.
type ListLibraryOutput struct {
	Body ListLibraryResponse
}

// LibraryStatsResponse contains library counts and the last sync time.
type LibraryStatsResponse struct {
	TotalEntries  int       `json:"total_entries" doc:"All entries"`
	LibraryCount  int       `json:"library_count" doc:"Owned titles"`
	WishlistCount int       `json:"wishlist_count" doc:"Wishlist titles"`
	FinishedCount int       `json:"finished_count" doc:"Titles marked FINISHED"`
	LastSyncAt    time.Time `json:"last_sync_at,omitzero" doc:"Most recent import, absent if never synced"`
}

// LibraryStatsOutput wraps the stats response for huma.
type LibraryStatsOutput struct {
	Body LibraryStatsResponse
}

// DeleteLibraryEntryInput contains parameters for deleting an entry.
type DeleteLibraryEntryInput struct {
	AuthInput
	ID string `path:"id" doc:"Entry ID"`
}

// MessageResponse is a generic confirmation message.
type MessageResponse struct {
	Message string `json:"message" doc:"Confirmation message"`
}

// MessageOutput wraps a message response for huma.
type MessageOutput struct {
	Body MessageResponse
}

// === Handlers ===

func (s *Server) handleListLibraryEntries(ctx context.Context, input *ListLibraryInput) (*ListLibraryOutput, error) {
	user, err := s.authenticate(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	entries, err := s.services.Library.ListEntries(ctx, user.ID, input.Source, input.Limit, input.Offset)
	if err != nil {
		return nil, err
	}

	resp := make([]LibraryEntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = toEntryResponse(e)
	}
	return &ListLibraryOutput{Body: ListLibraryResponse{Entries: resp}}, nil
}

// LookupTitleInput contains parameters for the ASIN lookup.
type LookupTitleInput struct {
	AuthInput
	ASIN   string `query:"asin" doc:"Audible catalog identifier"`
	Region string `query:"region" required:"false" doc:"Marketplace region"`
}

func (s *Server) handleLookupLibraryTitle(ctx context.Context, input *LookupTitleInput) (*TitleOutput, error) {
	if _, err := s.authenticate(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	title, err := s.services.Metadata.GetTitle(ctx, input.Region, input.ASIN)
	if err != nil {
		return nil, err
	}
	return &TitleOutput{Body: *title}, nil
}

func (s *Server) handleGetLibraryStats(ctx context.Context, input *struct{ AuthInput }) (*LibraryStatsOutput, error) {
	user, err := s.authenticate(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	stats, err := s.services.Library.Stats(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &LibraryStatsOutput{Body: LibraryStatsResponse{
		TotalEntries:  stats.TotalEntries,
		LibraryCount:  stats.LibraryCount,
		WishlistCount: stats.WishlistCount,
		FinishedCount: stats.FinishedCount,
		LastSyncAt:    stats.LastSyncAt,
	}}, nil
}

func (s *Server) handleDeleteLibraryEntry(ctx context.Context, input *DeleteLibraryEntryInput) (*MessageOutput, error) {
	user, err := s.authenticate(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	if err := s.services.Library.DeleteEntry(ctx, user.ID, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Entry deleted"}}, nil
}
