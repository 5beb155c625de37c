package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shelfshare/shelfshare-server/internal/domain"
	domainerrors "github.com/shelfshare/shelfshare-server/internal/errors"
	"github.com/shelfshare/shelfshare-server/internal/render"
	"github.com/shelfshare/shelfshare-server/internal/store"
)

// AdminService backs the admin console. Authorization (the IsAdmin check)
// happens in the API layer; these methods assume an admin caller.
type AdminService struct {
	store    *store.Store
	renderer *render.Renderer
	logger   *slog.Logger
}

// NewAdminService creates an admin service.
func NewAdminService(st *store.Store, renderer *render.Renderer, logger *slog.Logger) *AdminService {
	return &AdminService{
		store:    st,
		renderer: renderer,
		logger:   logger,
	}
}

// ListUsers returns every account, newest first.
func (s *AdminService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// DeleteUser removes an account and everything it owns. confirm guards
// against accidental deletion; admins cannot delete themselves.
func (s *AdminService) DeleteUser(ctx context.Context, adminID, userID string, confirm bool) error {
	if !confirm {
		return domainerrors.Validation("deletion requires confirm=true")
	}
	if adminID == userID {
		return domainerrors.Validation("admins cannot delete their own account")
	}

	if err := s.store.DeleteUser(ctx, userID); err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("user not found")
		}
		return fmt.Errorf("delete user: %w", err)
	}

	s.logger.Info("user deleted by admin",
		"user_id", userID,
		"admin_id", adminID,
	)
	return nil
}

// UserLibrary returns any user's library entries for support inspection.
func (s *AdminService) UserLibrary(ctx context.Context, userID string, limit, offset int) ([]*domain.LibraryEntry, error) {
	if _, err := s.store.GetUserByID(ctx, userID); err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := s.store.ListEntries(ctx, userID, "", limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

// DeleteList removes any user's list, e.g. for content moderation.
func (s *AdminService) DeleteList(ctx context.Context, adminID, listID string) error {
	list, err := s.store.GetList(ctx, listID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("list not found")
		}
		return fmt.Errorf("get list: %w", err)
	}

	if err := s.store.DeleteList(ctx, listID); err != nil {
		return fmt.Errorf("delete list: %w", err)
	}

	s.logger.Info("list deleted by admin",
		"list_id", listID,
		"owner_id", list.UserID,
		"admin_id", adminID,
	)
	return nil
}

// Templates returns every registered share-image template.
func (s *AdminService) Templates() []*render.Template {
	return render.AllTemplates()
}

// PreviewTemplate renders a template with placeholder covers and sample
// content, so layouts can be checked without a real list.
func (s *AdminService) PreviewTemplate(ctx context.Context, templateID string, size render.Size) ([]byte, error) {
	if !size.Valid() {
		return nil, domainerrors.Validationf("invalid image size %q", size)
	}

	template, err := render.GetTemplate(templateID)
	if err != nil {
		return nil, err
	}

	sample := sampleList(template)
	covers := render.PlaceholderCovers(template.Slots)

	data, err := s.renderer.Render(sample, covers, size)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// sampleList fabricates list content shaped for the template's type.
func sampleList(template *render.Template) *domain.List {
	list := &domain.List{
		ID:         "preview",
		Name:       "Template Preview",
		Type:       domain.ListTypeRecommendation,
		TemplateID: template.ID,
	}
	if template.ForType == domain.ListTypeTier {
		list.Type = domain.ListTypeTier
		list.Tiers = []string{"S", "A", "B"}
	}

	list.Items = make([]domain.ListItem, template.Slots)
	for i := range list.Items {
		tier := -1
		if list.Type == domain.ListTypeTier {
			tier = i % len(list.Tiers)
		}
		list.Items[i] = domain.ListItem{
			ID:       fmt.Sprintf("preview-%d", i),
			ListID:   list.ID,
			ASIN:     fmt.Sprintf("B%09d", i),
			Position: i,
			Tier:     tier,
		}
	}
	return list
}
