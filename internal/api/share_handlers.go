package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/shelfshare/shelfshare-server/internal/render"
)

// registerShareRoutes wires the public share surface: a user's list index,
// a single shared list, and the image routes social crawlers hit. No auth.
func (s *Server) registerShareRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getPublicLists",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{username}/lists",
		Summary:     "Get public list index",
		Description: "All lists on a user's public profile",
		Tags:        []string{"Shares"},
	}, s.handleGetPublicLists)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSharedList",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{username}/lists/{listID}",
		Summary:     "Get shared list",
		Description: "Public view of a single list on a user's profile",
		Tags:        []string{"Shares"},
	}, s.handleGetSharedList)

	// Param name matches the huma list routes; chi requires one name per
	// segment position.
	s.router.Get("/api/v1/lists/{id}/og-image", s.shareImageHandler(render.SizeOG))
	s.router.Get("/api/v1/lists/{id}/square-image", s.shareImageHandler(render.SizeSquare))
}

// === DTOs ===

// PublicListsResponse is the public index of a user's lists.
type PublicListsResponse struct {
	Owner     string         `json:"owner" doc:"Owner's username"`
	OwnerName string         `json:"owner_name" doc:"Owner's display name"`
	Lists     []ListResponse `json:"lists" doc:"The user's lists"`
}

// PublicListsOutput wraps the public index for huma.
type PublicListsOutput struct {
	Body PublicListsResponse
}

// PublicListsInput identifies a profile by username.
type PublicListsInput struct {
	Username string `path:"username" doc:"Profile slug"`
}

// SharedListResponse is the public view of a list.
type SharedListResponse struct {
	Owner     string       `json:"owner" doc:"Owner's username"`
	OwnerName string       `json:"owner_name" doc:"Owner's display name"`
	List      ListResponse `json:"list" doc:"The shared list"`
}

// SharedListOutput wraps the public view for huma.
type SharedListOutput struct {
	Body SharedListResponse
}

// SharedListInput identifies a shared list by profile and ID.
type SharedListInput struct {
	Username string `path:"username" doc:"Profile slug"`
	ListID   string `path:"listID" doc:"List ID"`
}

// === Handlers ===

func (s *Server) handleGetPublicLists(ctx context.Context, input *PublicListsInput) (*PublicListsOutput, error) {
	lists, owner, err := s.services.List.PublicLists(ctx, input.Username)
	if err != nil {
		return nil, err
	}

	resp := make([]ListResponse, len(lists))
	for i, l := range lists {
		resp[i] = toListResponse(l)
	}
	return &PublicListsOutput{Body: PublicListsResponse{
		Owner:     owner.Username,
		OwnerName: owner.Name,
		Lists:     resp,
	}}, nil
}

func (s *Server) handleGetSharedList(ctx context.Context, input *SharedListInput) (*SharedListOutput, error) {
	list, owner, err := s.services.List.GetSharedList(ctx, input.Username, input.ListID)
	if err != nil {
		return nil, err
	}
	return &SharedListOutput{Body: SharedListResponse{
		Owner:     owner.Username,
		OwnerName: owner.Name,
		List:      toListResponse(list),
	}}, nil
}

// shareImageHandler answers with a redirect to a short-lived presigned URL
// for the rendered share image. Crawlers follow the 302 and fetch the PNG
// straight from object storage.
func (s *Server) shareImageHandler(size render.Size) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url, err := s.services.List.ImageURL(r.Context(), chi.URLParam(r, "id"), size)
		if err != nil {
			s.writeError(w, err)
			return
		}

		// Presigned URLs expire; tell caches not to pin the redirect.
		w.Header().Set("Cache-Control", "no-store")
		http.Redirect(w, r, url, http.StatusFound)
	}
}
