package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfshare/shelfshare-server/internal/domain"
	"github.com/shelfshare/shelfshare-server/internal/service"
)

func (s *Server) registerListRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createList",
		Method:      http.MethodPost,
		Path:        "/api/v1/lists",
		Summary:     "Create list",
		Tags:        []string{"Lists"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateList)

	huma.Register(s.api, huma.Operation{
		OperationID: "listLists",
		Method:      http.MethodGet,
		Path:        "/api/v1/lists",
		Summary:     "List lists",
		Description: "Returns the signed-in user's lists, newest first",
		Tags:        []string{"Lists"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListLists)

	huma.Register(s.api, huma.Operation{
		OperationID: "getList",
		Method:      http.MethodGet,
		Path:        "/api/v1/lists/{id}",
		Summary:     "Get list",
		Tags:        []string{"Lists"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetList)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateList",
		Method:      http.MethodPut,
		Path:        "/api/v1/lists/{id}",
		Summary:     "Update list",
		Description: "Updates name, description, tiers, and template; items are replaced separately",
		Tags:        []string{"Lists"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateList)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteList",
		Method:      http.MethodDelete,
		Path:        "/api/v1/lists/{id}",
		Summary:     "Delete list",
		Tags:        []string{"Lists"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteList)

	huma.Register(s.api, huma.Operation{
		OperationID: "replaceListItems",
		Method:      http.MethodPut,
		Path:        "/api/v1/lists/{id}/items",
		Summary:     "Replace list items",
		Description: "Replaces the list's items in payload order",
		Tags:        []string{"Lists"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReplaceListItems)

	huma.Register(s.api, huma.Operation{
		OperationID: "regenerateListImage",
		Method:      http.MethodPost,
		Path:        "/api/v1/lists/{id}/image",
		Summary:     "Regenerate share images",
		Description: "Re-renders the list's share images; useful after a failed generation",
		Tags:        []string{"Lists"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRegenerateListImage)
}

// === DTOs ===

// ListItemResponse contains one list item in API responses.
type ListItemResponse struct {
	ID       string `json:"id" doc:"Item ID"`
	ASIN     string `json:"asin" doc:"Audible catalog identifier"`
	Position int    `json:"position" doc:"Order within the list"`
	Tier     int    `json:"tier" doc:"Tier index, -1 when unassigned"`
}

// ListResponse contains list data in API responses.
type ListResponse struct {
	ID           string             `json:"id" doc:"List ID"`
	Name         string             `json:"name" doc:"Display name"`
	Description  string             `json:"description,omitempty" doc:"Optional description"`
	Type         string             `json:"type" doc:"RECOMMENDATION or TIER"`
	Tiers        []string           `json:"tiers,omitempty" doc:"Ordered tier labels, best first"`
	TemplateID   string             `json:"template_id" doc:"Share-image template"`
	ImageStatus  string             `json:"image_status" doc:"NONE, GENERATING, READY, or FAILED"`
	ImageVersion int                `json:"image_version" doc:"Share-image version"`
	Items        []ListItemResponse `json:"items" doc:"Ordered items"`
	CreatedAt    time.Time          `json:"created_at" doc:"Creation time"`
	UpdatedAt    time.Time          `json:"updated_at" doc:"Last update time"`
}

func toListResponse(l *domain.List) ListResponse {
	items := make([]ListItemResponse, len(l.Items))
	for i, item := range l.Items {
		items[i] = ListItemResponse{
			ID:       item.ID,
			ASIN:     item.ASIN,
			Position: item.Position,
			Tier:     item.Tier,
		}
	}
	return ListResponse{
		ID:           l.ID,
		Name:         l.Name,
		Description:  l.Description,
		Type:         string(l.Type),
		Tiers:        l.Tiers,
		TemplateID:   l.TemplateID,
		ImageStatus:  string(l.ImageStatus),
		ImageVersion: l.ImageVersion,
		Items:        items,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

// ListOutput wraps a single list for huma.
type ListOutput struct {
	Body ListResponse
}

// CreateListInput wraps the create payload for huma.
type CreateListInput struct {
	AuthInput
	Body service.CreateListRequest
}

// ListListsResponse contains the user's lists.
type ListListsResponse struct {
	Lists []ListResponse `json:"lists" doc:"The user's lists"`
}

// ListListsOutput wraps the list collection for huma.
type ListListsOutput struct {
	Body ListListsResponse
}

// ListIDInput identifies a list by path parameter.
type ListIDInput struct {
	AuthInput
	ID string `path:"id" doc:"List ID"`
}

// UpdateListInput wraps the update payload for huma.
type UpdateListInput struct {
	AuthInput
	ID   string `path:"id" doc:"List ID"`
	Body service.UpdateListRequest
}

// ReplaceItemsRequest is the request body for replacing list items.
type ReplaceItemsRequest struct {
	Items []service.ItemInput `json:"items" doc:"Items in display order"`
}

// ReplaceItemsInput wraps the replace payload for huma.
type ReplaceItemsInput struct {
	AuthInput
	ID   string `path:"id" doc:"List ID"`
	Body ReplaceItemsRequest
}

// === Handlers ===

func (s *Server) handleCreateList(ctx context.Context, input *CreateListInput) (*ListOutput, error) {
	user, err := s.authenticate(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	list, err := s.services.List.CreateList(ctx, user.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &ListOutput{Body: toListResponse(list)}, nil
}

func (s *Server) handleListLists(ctx context.Context, input *struct{ AuthInput }) (*ListListsOutput, error) {
	user, err := s.authenticate(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	lists, err := s.services.List.ListForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	resp := make([]ListResponse, len(lists))
	for i, l := range lists {
		resp[i] = toListResponse(l)
	}
	return &ListListsOutput{Body: ListListsResponse{Lists: resp}}, nil
}

func (s *Server) handleGetList(ctx context.Context, input *ListIDInput) (*ListOutput, error) {
	user, err := s.authenticate(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	list, err := s.services.List.GetList(ctx, user.ID, input.ID)
	if err != nil {
		return nil, err
	}
	return &ListOutput{Body: toListResponse(list)}, nil
}

func (s *Server) handleUpdateList(ctx context.Context, input *UpdateListInput) (*ListOutput, error) {
	user, err := s.authenticate(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	list, err := s.services.List.UpdateList(ctx, user.ID, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &ListOutput{Body: toListResponse(list)}, nil
}

func (s *Server) handleDeleteList(ctx context.Context, input *ListIDInput) (*MessageOutput, error) {
	user, err := s.authenticate(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	if err := s.services.List.DeleteList(ctx, user.ID, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "List deleted"}}, nil
}

func (s *Server) handleReplaceListItems(ctx context.Context, input *ReplaceItemsInput) (*ListOutput, error) {
	user, err := s.authenticate(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	list, err := s.services.List.ReplaceItems(ctx, user.ID, input.ID, input.Body.Items)
	if err != nil {
		return nil, err
	}
	return &ListOutput{Body: toListResponse(list)}, nil
}

func (s *Server) handleRegenerateListImage(ctx context.Context, input *ListIDInput) (*ListOutput, error) {
	user, err := s.authenticate(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	list, err := s.services.List.RegenerateImage(ctx, user.ID, input.ID)
	if err != nil {
		return nil, err
	}
	return &ListOutput{Body: toListResponse(list)}, nil
}
