package service

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/shelfshare/shelfshare-server/internal/config"
	"github.com/shelfshare/shelfshare-server/internal/domain"
	domainerrors "github.com/shelfshare/shelfshare-server/internal/errors"
	"github.com/shelfshare/shelfshare-server/internal/id"
	"github.com/shelfshare/shelfshare-server/internal/metadata/audible"
	"github.com/shelfshare/shelfshare-server/internal/render"
	"github.com/shelfshare/shelfshare-server/internal/storage"
	"github.com/shelfshare/shelfshare-server/internal/store"
)

// imageStore is the slice of object storage the list service needs.
type imageStore interface {
	PutPNG(ctx context.Context, key string, data []byte) error
	PresignedGet(ctx context.Context, key string) (string, error)
	Remove(ctx context.Context, key string) error
}

// coverSource resolves an ASIN to catalog metadata (for cover URLs).
type coverSource interface {
	GetTitle(ctx context.Context, region audible.Region, asin string) (*audible.Title, error)
}

// coverFetcher downloads cover art for rendering.
type coverFetcher interface {
	FetchAll(ctx context.Context, urls []string) []image.Image
}

// ListService manages curated lists and their share-preview images. Images
// are regenerated synchronously on every content change; while generation
// runs the previous READY image keeps serving.
type ListService struct {
	store    *store.Store
	renderer *render.Renderer
	images   imageStore
	covers   coverSource
	fetcher  coverFetcher
	region   audible.Region
	logger   *slog.Logger
}

// NewListService creates a list service.
func NewListService(
	st *store.Store,
	renderer *render.Renderer,
	images imageStore,
	covers coverSource,
	fetcher coverFetcher,
	cfg config.AudibleConfig,
	logger *slog.Logger,
) *ListService {
	return &ListService{
		store:    st,
		renderer: renderer,
		images:   images,
		covers:   covers,
		fetcher:  fetcher,
		region:   audible.Region(cfg.DefaultRegion),
		logger:   logger,
	}
}

// CreateListRequest is the payload for creating a list.
type CreateListRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description,omitempty"`
	Type        string   `json:"type" validate:"required,oneof=RECOMMENDATION TIER"`
	Tiers       []string `json:"tiers,omitempty"`
	TemplateID  string   `json:"template_id,omitempty"`
}

// UpdateListRequest is the payload for updating list fields. Items are
// replaced through ReplaceItems.
type UpdateListRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description,omitempty"`
	Tiers       []string `json:"tiers,omitempty"`
	TemplateID  string   `json:"template_id,omitempty"`
}

// ItemInput is one list item in a replace payload.
type ItemInput struct {
	ASIN string `json:"asin" validate:"required,asin"`

	// Tier indexes into the list's tiers; -1 (or omitted on
	// recommendation lists) means unassigned.
	Tier *int `json:"tier,omitempty"`
}

// CreateList creates a list and kicks off its first image generation.
func (s *ListService) CreateList(ctx context.Context, userID string, req CreateListRequest) (*domain.List, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	listID, err := id.Generate("lst")
	if err != nil {
		return nil, fmt.Errorf("generate list ID: %w", err)
	}

	now := time.Now()
	list := &domain.List{
		ID:          listID,
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Type:        domain.ListType(req.Type),
		Tiers:       req.Tiers,
		TemplateID:  req.TemplateID,
		ImageStatus: domain.ImageStatusNone,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if list.TemplateID == "" {
		list.TemplateID = render.DefaultTemplateID(list.Type)
	}
	if err := list.Validate(); err != nil {
		return nil, err
	}
	if _, err := render.GetTemplate(list.TemplateID); err != nil {
		return nil, domainerrors.Validationf("unknown template %q", list.TemplateID)
	}

	if err := s.store.CreateList(ctx, list); err != nil {
		return nil, fmt.Errorf("create list: %w", err)
	}

	s.logger.Info("list created",
		"list_id", listID,
		"user_id", userID,
		"type", list.Type,
	)

	s.generateImages(ctx, list)
	return list, nil
}

// UpdateList updates the list's fields and regenerates its images.
func (s *ListService) UpdateList(ctx context.Context, userID, listID string, req UpdateListRequest) (*domain.List, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	list, err := s.getOwnedList(ctx, userID, listID)
	if err != nil {
		return nil, err
	}

	list.Name = req.Name
	list.Description = req.Description
	list.Tiers = req.Tiers
	if req.TemplateID != "" {
		list.TemplateID = req.TemplateID
	}
	list.UpdatedAt = time.Now()

	if err := list.Validate(); err != nil {
		return nil, err
	}
	if _, err := render.GetTemplate(list.TemplateID); err != nil {
		return nil, domainerrors.Validationf("unknown template %q", list.TemplateID)
	}

	// Shrinking the tier set can strand items on removed tiers.
	if err := list.ValidateItems(list.Items); err != nil {
		return nil, err
	}

	if err := s.store.UpdateList(ctx, list); err != nil {
		return nil, fmt.Errorf("update list: %w", err)
	}

	s.generateImages(ctx, list)
	return list, nil
}

// ReplaceItems swaps the list's items wholesale and regenerates images.
// Positions follow payload order.
func (s *ListService) ReplaceItems(ctx context.Context, userID, listID string, inputs []ItemInput) (*domain.List, error) {
	list, err := s.getOwnedList(ctx, userID, listID)
	if err != nil {
		return nil, err
	}

	items := make([]domain.ListItem, len(inputs))
	for i, in := range inputs {
		tier := -1
		if in.Tier != nil {
			tier = *in.Tier
		}
		itemID, err := id.Generate("li")
		if err != nil {
			return nil, fmt.Errorf("generate item ID: %w", err)
		}
		items[i] = domain.ListItem{
			ID:       itemID,
			ListID:   listID,
			ASIN:     in.ASIN,
			Position: i,
			Tier:     tier,
		}
	}

	if err := list.ValidateItems(items); err != nil {
		return nil, err
	}

	if err := s.store.ReplaceListItems(ctx, listID, items); err != nil {
		return nil, fmt.Errorf("replace items: %w", err)
	}
	list.Items = items
	list.UpdatedAt = time.Now()

	s.generateImages(ctx, list)
	return list, nil
}

// GetList returns one of the caller's lists with items.
func (s *ListService) GetList(ctx context.Context, userID, listID string) (*domain.List, error) {
	return s.getOwnedList(ctx, userID, listID)
}

// ListForUser returns the caller's lists without items, newest first.
func (s *ListService) ListForUser(ctx context.Context, userID string) ([]*domain.List, error) {
	lists, err := s.store.ListListsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	return lists, nil
}

// DeleteList removes the caller's list and its stored images.
func (s *ListService) DeleteList(ctx context.Context, userID, listID string) error {
	list, err := s.getOwnedList(ctx, userID, listID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteList(ctx, listID); err != nil {
		return fmt.Errorf("delete list: %w", err)
	}

	s.removeImages(ctx, list)
	s.logger.Info("list deleted", "list_id", listID, "user_id", userID)
	return nil
}

// GetSharedList resolves a public share page: the list must belong to the
// named profile. No authentication required.
func (s *ListService) GetSharedList(ctx context.Context, username, listID string) (*domain.List, *domain.User, error) {
	owner, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, nil, domainerrors.NotFound("list not found")
		}
		return nil, nil, fmt.Errorf("get user by username: %w", err)
	}

	list, err := s.store.GetList(ctx, listID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, nil, domainerrors.NotFound("list not found")
		}
		return nil, nil, fmt.Errorf("get list: %w", err)
	}
	if list.UserID != owner.ID {
		// A list under someone else's profile URL does not exist.
		return nil, nil, domainerrors.NotFound("list not found")
	}

	return list, owner, nil
}

// PublicLists returns the public list index for a username.
func (s *ListService) PublicLists(ctx context.Context, username string) ([]*domain.List, *domain.User, error) {
	owner, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, nil, domainerrors.NotFound("profile not found")
		}
		return nil, nil, fmt.Errorf("get user by username: %w", err)
	}

	lists, err := s.store.ListListsByUser(ctx, owner.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("list lists: %w", err)
	}
	return lists, owner, nil
}

// ImageURL returns a presigned URL for the list's share image at the given
// size. NOT_FOUND until the image is READY, whatever keys may linger from an
// earlier version.
func (s *ListService) ImageURL(ctx context.Context, listID string, size render.Size) (string, error) {
	if !size.Valid() {
		return "", domainerrors.Validationf("invalid image size %q", size)
	}

	list, err := s.store.GetList(ctx, listID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return "", domainerrors.NotFound("list not found")
		}
		return "", fmt.Errorf("get list: %w", err)
	}
	if !list.HasImage() {
		return "", domainerrors.NotFound("share image not available")
	}

	key := list.OGKey
	if size == render.SizeSquare {
		key = list.SquareKey
	}
	if key == "" {
		return "", domainerrors.NotFound("share image not available")
	}

	url, err := s.images.PresignedGet(ctx, key)
	if err != nil {
		return "", fmt.Errorf("presign image: %w", err)
	}
	return url, nil
}

// RegenerateImage forces a fresh render, e.g. after a failed generation.
func (s *ListService) RegenerateImage(ctx context.Context, userID, listID string) (*domain.List, error) {
	list, err := s.getOwnedList(ctx, userID, listID)
	if err != nil {
		return nil, err
	}
	s.generateImages(ctx, list)
	return list, nil
}

func (s *ListService) getOwnedList(ctx context.Context, userID, listID string) (*domain.List, error) {
	list, err := s.store.GetList(ctx, listID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("list not found")
		}
		return nil, fmt.Errorf("get list: %w", err)
	}
	if list.UserID != userID {
		return nil, domainerrors.Forbidden("list belongs to another user")
	}
	return list, nil
}

// generateImages renders and uploads share images for the list, then flips
// ImageStatus. Failures mark the list FAILED and keep the previous keys so a
// stale image keeps serving; the next save retries.
func (s *ListService) generateImages(ctx context.Context, list *domain.List) {
	version := list.ImageVersion + 1

	if err := s.store.UpdateListImage(ctx, list.ID, domain.ImageStatusGenerating, list.ImageVersion, list.OGKey, list.SquareKey); err != nil {
		s.logger.Warn("failed to mark list generating", "list_id", list.ID, "error", err)
	}
	list.ImageStatus = domain.ImageStatusGenerating

	template, err := render.GetTemplate(list.TemplateID)
	if err != nil {
		s.markImageFailed(ctx, list, err)
		return
	}

	covers := s.resolveCovers(ctx, list, template.Slots)

	var ogKey, squareKey string
	for _, size := range template.Sizes {
		data, err := s.renderer.Render(list, covers, size)
		if err != nil {
			s.markImageFailed(ctx, list, err)
			return
		}

		key := storage.ImageKey(list.ID, version, string(size))
		if err := s.images.PutPNG(ctx, key, data); err != nil {
			s.markImageFailed(ctx, list, err)
			return
		}

		switch size {
		case render.SizeOG:
			ogKey = key
		case render.SizeSquare:
			squareKey = key
		}
	}

	if err := s.store.UpdateListImage(ctx, list.ID, domain.ImageStatusReady, version, ogKey, squareKey); err != nil {
		s.logger.Warn("failed to mark list ready", "list_id", list.ID, "error", err)
		return
	}

	// Old versions are unreachable once the keys flip; clean them up.
	s.removeImages(ctx, list)

	list.ImageStatus = domain.ImageStatusReady
	list.ImageVersion = version
	list.OGKey = ogKey
	list.SquareKey = squareKey

	s.logger.Info("share images generated",
		"list_id", list.ID,
		"version", version,
		"template", list.TemplateID,
	)
}

// resolveCovers fetches cover art for the first n items, parallel to
// list.Items. Lookup failures leave nil covers; the renderer draws empty
// slots for those.
func (s *ListService) resolveCovers(ctx context.Context, list *domain.List, n int) []image.Image {
	if len(list.Items) < n {
		n = len(list.Items)
	}

	urls := make([]string, n)
	for i := 0; i < n; i++ {
		title, err := s.covers.GetTitle(ctx, s.region, list.Items[i].ASIN)
		if err != nil {
			s.logger.Warn("cover lookup failed",
				"list_id", list.ID,
				"asin", list.Items[i].ASIN,
				"error", err,
			)
			continue
		}
		urls[i] = title.CoverURL
	}

	return s.fetcher.FetchAll(ctx, urls)
}

func (s *ListService) markImageFailed(ctx context.Context, list *domain.List, cause error) {
	s.logger.Error("share image generation failed",
		"list_id", list.ID,
		"error", cause,
	)
	if err := s.store.UpdateListImage(ctx, list.ID, domain.ImageStatusFailed, list.ImageVersion, list.OGKey, list.SquareKey); err != nil {
		s.logger.Warn("failed to mark list failed", "list_id", list.ID, "error", err)
	}
	list.ImageStatus = domain.ImageStatusFailed
}

// removeImages deletes the list's current stored images, best-effort.
func (s *ListService) removeImages(ctx context.Context, list *domain.List) {
	for _, key := range []string{list.OGKey, list.SquareKey} {
		if key == "" {
			continue
		}
		if err := s.images.Remove(ctx, key); err != nil {
			s.logger.Warn("failed to remove stored image", "key", key, "error", err)
		}
	}
}
