package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfshare/shelfshare-server/internal/domain"
	"github.com/shelfshare/shelfshare-server/internal/service"
)

func (s *Server) registerSyncRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "issueSyncToken",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync/token",
		Summary:     "Issue sync token",
		Description: "Mints a short-lived single-use token the browser extension redeems for one import",
		Tags:        []string{"Sync"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleIssueSyncToken)

	huma.Register(s.api, huma.Operation{
		OperationID: "importLibrary",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync/import",
		Summary:     "Import library",
		Description: "Redeems a sync token and replaces the user's whole library with the payload",
		Tags:        []string{"Sync"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleImportLibrary)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSyncHistory",
		Method:      http.MethodGet,
		Path:        "/api/v1/sync/history",
		Summary:     "Get sync history",
		Description: "Returns the five most recent imports",
		Tags:        []string{"Sync"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetSyncHistory)
}

// === DTOs ===

// SyncTokenResponse carries a freshly issued sync token.
type SyncTokenResponse struct {
	Token           string    `json:"token" doc:"Single-use sync token"`
	AudibleURL      string    `json:"audible_url" doc:"Library page the extension should open"`
	ExpiresAt       time.Time `json:"expires_at" doc:"Token expiry"`
	HasSyncedBefore bool      `json:"has_synced_before" doc:"Whether the user has imported before"`
}

// SyncTokenOutput wraps the token response for huma.
type SyncTokenOutput struct {
	Body SyncTokenResponse
}

// ImportLibraryInput contains the extension's import payload. The sync
// token rides in the Authorization header in place of a session token.
type ImportLibraryInput struct {
	AuthInput
	Body service.ImportRequest
}

// SyncHistoryResponse contains one past import.
type SyncHistoryResponse struct {
	ID            string    `json:"id" doc:"Import ID"`
	LibraryCount  int       `json:"library_count" doc:"Imported library entries"`
	WishlistCount int       `json:"wishlist_count" doc:"Imported wishlist entries"`
	Success       bool      `json:"success" doc:"Whether the import completed"`
	Warnings      []string  `json:"warnings,omitempty" doc:"Skipped-row warnings"`
	CreatedAt     time.Time `json:"created_at" doc:"Import time"`
}

func toSyncHistoryResponse(h *domain.SyncHistory) SyncHistoryResponse {
	return SyncHistoryResponse{
		ID:            h.ID,
		LibraryCount:  h.LibraryCount,
		WishlistCount: h.WishlistCount,
		Success:       h.Success,
		Warnings:      h.Warnings,
		CreatedAt:     h.CreatedAt,
	}
}

// SyncHistoryOutput wraps a single import record for huma.
type SyncHistoryOutput struct {
	Body SyncHistoryResponse
}

// SyncHistoryListResponse contains recent imports, newest first.
type SyncHistoryListResponse struct {
	Imports []SyncHistoryResponse `json:"imports" doc:"Recent imports"`
}

// SyncHistoryListOutput wraps the history list for huma.
type SyncHistoryListOutput struct {
	Body SyncHistoryListResponse
}

// === Handlers ===

func (s *Server) handleIssueSyncToken(ctx context.Context, input *struct{ AuthInput }) (*SyncTokenOutput, error) {
	user, err := s.authenticate(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	resp, err := s.services.Sync.IssueToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &SyncTokenOutput{Body: SyncTokenResponse{
		Token:           resp.Token,
		AudibleURL:      resp.AudibleURL,
		ExpiresAt:       resp.ExpiresAt,
		HasSyncedBefore: resp.HasSyncedBefore,
	}}, nil
}

func (s *Server) handleImportLibrary(ctx context.Context, input *ImportLibraryInput) (*SyncHistoryOutput, error) {
	// The bearer token here is the sync token itself; the service verifies
	// and consumes it. No session is required.
	token := input.token()
	if token == "" {
		return nil, huma.Error401Unauthorized("sync token required")
	}

	history, err := s.services.Sync.Import(ctx, token, input.Body)
	if err != nil {
		return nil, err
	}
	return &SyncHistoryOutput{Body: toSyncHistoryResponse(history)}, nil
}

func (s *Server) handleGetSyncHistory(ctx context.Context, input *struct{ AuthInput }) (*SyncHistoryListOutput, error) {
	user, err := s.authenticate(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	imports, err := s.services.Sync.History(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	resp := make([]SyncHistoryResponse, len(imports))
	for i, h := range imports {
		resp[i] = toSyncHistoryResponse(h)
	}
	return &SyncHistoryListOutput{Body: SyncHistoryListResponse{Imports: resp}}, nil
}
