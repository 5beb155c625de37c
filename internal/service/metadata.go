package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shelfshare/shelfshare-server/internal/config"
	domainerrors "github.com/shelfshare/shelfshare-server/internal/errors"
	"github.com/shelfshare/shelfshare-server/internal/metadata/audible"
)

// MetadataService proxies title metadata from the Audible catalog. Nothing is
// cached server-side; the catalog client already rate limits per region.
type MetadataService struct {
	client        *audible.Client
	defaultRegion audible.Region
	logger        *slog.Logger
}

// NewMetadataService creates a metadata service.
func NewMetadataService(client *audible.Client, cfg config.AudibleConfig, logger *slog.Logger) *MetadataService {
	return &MetadataService{
		client:        client,
		defaultRegion: audible.Region(cfg.DefaultRegion),
		logger:        logger,
	}
}

// GetTitle looks up a single title by ASIN. An empty region uses the
// configured default marketplace.
func (s *MetadataService) GetTitle(ctx context.Context, region, asin string) (*audible.Title, error) {
	r, err := s.resolveRegion(region)
	if err != nil {
		return nil, err
	}

	title, err := s.client.GetTitle(ctx, r, asin)
	if err != nil {
		return nil, s.mapCatalogError(err, asin)
	}
	return title, nil
}

// Search queries the catalog. An empty region uses the configured default.
func (s *MetadataService) Search(ctx context.Context, region string, params audible.SearchParams) ([]*audible.Title, error) {
	r, err := s.resolveRegion(region)
	if err != nil {
		return nil, err
	}

	titles, err := s.client.Search(ctx, r, params)
	if err != nil {
		return nil, s.mapCatalogError(err, "")
	}

	out := make([]*audible.Title, len(titles))
	for i := range titles {
		out[i] = &titles[i]
	}
	return out, nil
}

func (s *MetadataService) resolveRegion(region string) (audible.Region, error) {
	if region == "" {
		return s.defaultRegion, nil
	}
	r := audible.Region(region)
	if !r.Valid() {
		return "", domainerrors.Validationf("invalid region %q", region)
	}
	return r, nil
}

func (s *MetadataService) mapCatalogError(err error, asin string) error {
	switch {
	case domainerrors.Is(err, audible.ErrInvalidASIN):
		return domainerrors.Validationf("invalid ASIN %q", asin)
	case domainerrors.Is(err, audible.ErrBadRequest):
		return domainerrors.Validation("catalog rejected the request")
	case domainerrors.Is(err, audible.ErrNotFound):
		return domainerrors.NotFoundf("title %s not found in catalog", asin)
	case domainerrors.Is(err, audible.ErrRateLimited):
		s.logger.Warn("catalog rate limit hit", "asin", asin)
		return domainerrors.Internal("catalog temporarily unavailable").WithCause(err)
	default:
		return fmt.Errorf("catalog lookup: %w", err)
	}
}
