package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	domainerrors "github.com/shelfshare/shelfshare-server/internal/errors"
	"github.com/shelfshare/shelfshare-server/internal/render"
)

func (s *Server) registerAdminRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "adminListUsers",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/users",
		Summary:     "List all users",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminListUsers)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminDeleteUser",
		Method:      http.MethodDelete,
		Path:        "/api/v1/admin/users/{id}",
		Summary:     "Delete user",
		Description: "Deletes an account and everything it owns; requires confirm=true",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminDeleteUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminGetUserLibrary",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/users/{id}/library",
		Summary:     "Get a user's library",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminGetUserLibrary)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminDeleteList",
		Method:      http.MethodDelete,
		Path:        "/api/v1/admin/lists/{id}",
		Summary:     "Delete any list",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminDeleteList)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminListTemplates",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/templates",
		Summary:     "List share-image templates",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminListTemplates)

	// PNG response, so this one stays off huma.
	s.router.Get("/api/v1/admin/templates/{id}/preview", s.handleAdminTemplatePreview)
}

// === DTOs ===

// AdminUsersResponse contains every registered user.
type AdminUsersResponse struct {
	Users []UserResponse `json:"users" doc:"All users, newest first"`
}

// AdminUsersOutput wraps the user list for huma.
type AdminUsersOutput struct {
	Body AdminUsersResponse
}

// AdminDeleteUserInput identifies the account to delete.
type AdminDeleteUserInput struct {
	AuthInput
	ID      string `path:"id" doc:"User ID"`
	Confirm bool   `query:"confirm" doc:"Must be true; guards against accidental deletion"`
}

// AdminUserLibraryInput contains parameters for inspecting a user's library.
type AdminUserLibraryInput struct {
	AuthInput
	ID     string `path:"id" doc:"User ID"`
	Limit  int    `query:"limit" minimum:"1" maximum:"200" required:"false" doc:"Page size (default 50)"`
	Offset int    `query:"offset" minimum:"0" required:"false" doc:"Page offset"`
}

// AdminDeleteListInput identifies the list to delete.
type AdminDeleteListInput struct {
	AuthInput
	ID string `path:"id" doc:"List ID"`
}

// TemplateResponse describes one share-image template.
type TemplateResponse struct {
	ID      string   `json:"id" doc:"Template ID"`
	Name    string   `json:"name" doc:"Display name"`
	Slots   int      `json:"slots" doc:"Max covers the layout holds"`
	Sizes   []string `json:"sizes" doc:"Supported render sizes"`
	ForType string   `json:"for_type" doc:"List type the template suits"`
}

// TemplatesResponse contains all registered templates.
type TemplatesResponse struct {
	Templates []TemplateResponse `json:"templates" doc:"Available templates"`
}

// TemplatesOutput wraps the template list for huma.
type TemplatesOutput struct {
	Body TemplatesResponse
}

// === Handlers ===

func (s *Server) handleAdminListUsers(ctx context.Context, input *struct{ AuthInput }) (*AdminUsersOutput, error) {
	if _, err := s.authenticateAdmin(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	users, err := s.services.Admin.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = toUserResponse(u)
	}
	return &AdminUsersOutput{Body: AdminUsersResponse{Users: resp}}, nil
}

func (s *Server) handleAdminDeleteUser(ctx context.Context, input *AdminDeleteUserInput) (*MessageOutput, error) {
	admin, err := s.authenticateAdmin(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	if err := s.services.Admin.DeleteUser(ctx, admin.ID, input.ID, input.Confirm); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "User deleted"}}, nil
}

func (s *Server) handleAdminGetUserLibrary(ctx context.Context, input *AdminUserLibraryInput) (*ListLibraryOutput, error) {
	if _, err := s.authenticateAdmin(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	entries, err := s.services.Admin.UserLibrary(ctx, input.ID, input.Limit, input.Offset)
	if err != nil {
		return nil, err
	}

	resp := make([]LibraryEntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = toEntryResponse(e)
	}
	return &ListLibraryOutput{Body: ListLibraryResponse{Entries: resp}}, nil
}

func (s *Server) handleAdminDeleteList(ctx context.Context, input *AdminDeleteListInput) (*MessageOutput, error) {
	admin, err := s.authenticateAdmin(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	if err := s.services.Admin.DeleteList(ctx, admin.ID, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "List deleted"}}, nil
}

func (s *Server) handleAdminListTemplates(ctx context.Context, input *struct{ AuthInput }) (*TemplatesOutput, error) {
	if _, err := s.authenticateAdmin(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	templates := s.services.Admin.Templates()
	resp := make([]TemplateResponse, len(templates))
	for i, t := range templates {
		sizes := make([]string, len(t.Sizes))
		for j, size := range t.Sizes {
			sizes[j] = string(size)
		}
		resp[i] = TemplateResponse{
			ID:      t.ID,
			Name:    t.Name,
			Slots:   t.Slots,
			Sizes:   sizes,
			ForType: string(t.ForType),
		}
	}
	return &TemplatesOutput{Body: TemplatesResponse{Templates: resp}}, nil
}

// handleAdminTemplatePreview renders a template with placeholder covers and
// returns the PNG directly.
func (s *Server) handleAdminTemplatePreview(w http.ResponseWriter, r *http.Request) {
	user, err := s.authenticateRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !user.IsAdmin {
		s.writeError(w, domainerrors.Forbidden("admin access required"))
		return
	}

	size := render.Size(r.URL.Query().Get("size"))
	if size == "" {
		size = render.SizeOG
	}

	png, err := s.services.Admin.PreviewTemplate(r.Context(), chi.URLParam(r, "id"), size)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	//nolint:errcheck // Nothing to do if the client is gone.
	w.Write(png)
}
