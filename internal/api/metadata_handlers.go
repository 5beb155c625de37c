package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfshare/shelfshare-server/internal/metadata/audible"
)

func (s *Server) registerMetadataRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getTitle",
		Method:      http.MethodGet,
		Path:        "/api/v1/titles/{asin}",
		Summary:     "Get title metadata",
		Description: "Resolves an ASIN against the Audible catalog",
		Tags:        []string{"Metadata"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetTitle)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchTitles",
		Method:      http.MethodGet,
		Path:        "/api/v1/titles",
		Summary:     "Search titles",
		Description: "Searches the Audible catalog by keywords, title, or author",
		Tags:        []string{"Metadata"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearchTitles)
}

// === DTOs ===

// GetTitleInput contains parameters for the title lookup endpoint.
type GetTitleInput struct {
	AuthInput
	ASIN   string `path:"asin" doc:"Audible catalog identifier"`
	Region string `query:"region" required:"false" doc:"Marketplace region (defaults to the server's region)"`
}

// TitleOutput wraps a single catalog title for huma.
type TitleOutput struct {
	Body audible.Title
}

// SearchTitlesInput contains parameters for catalog search.
type SearchTitlesInput struct {
	AuthInput
	Keywords string `query:"q" required:"false" doc:"General search terms"`
	Title    string `query:"title" required:"false" doc:"Search by title"`
	Author   string `query:"author" required:"false" doc:"Search by author"`
	Region   string `query:"region" required:"false" doc:"Marketplace region"`
	Limit    int    `query:"limit" minimum:"1" maximum:"50" required:"false" doc:"Max results (default 25)"`
}

// SearchTitlesResponse contains catalog search results.
type SearchTitlesResponse struct {
	Titles []*audible.Title `json:"titles" doc:"Matching titles"`
}

// SearchTitlesOutput wraps search results for huma.
type SearchTitlesOutput struct {
	Body SearchTitlesResponse
}

// === Handlers ===

func (s *Server) handleGetTitle(ctx context.Context, input *GetTitleInput) (*TitleOutput, error) {
	if _, err := s.authenticate(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	title, err := s.services.Metadata.GetTitle(ctx, input.Region, input.ASIN)
	if err != nil {
		return nil, err
	}
	return &TitleOutput{Body: *title}, nil
}

func (s *Server) handleSearchTitles(ctx context.Context, input *SearchTitlesInput) (*SearchTitlesOutput, error) {
	if _, err := s.authenticate(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	titles, err := s.services.Metadata.Search(ctx, input.Region, audible.SearchParams{
		Keywords: input.Keywords,
		Title:    input.Title,
		Author:   input.Author,
		Limit:    input.Limit,
	})
	if err != nil {
		return nil, err
	}
	return &SearchTitlesOutput{Body: SearchTitlesResponse{Titles: titles}}, nil
}
