package render

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"
	"log/slog"
	"net/http"
	"time"

	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	// maxCoverSize limits download size to prevent memory exhaustion.
	maxCoverSize = 10 * 1024 * 1024 // 10MB

	// fetchTimeout is the maximum time for a single cover download.
	fetchTimeout = 30 * time.Second
)

// CoverFetcher downloads and decodes cover art for rendering.
type CoverFetcher struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewCoverFetcher creates a cover fetcher.
func NewCoverFetcher(logger *slog.Logger) *CoverFetcher {
	return &CoverFetcher{
		httpClient: &http.Client{
			Timeout: fetchTimeout,
		},
		logger: logger,
	}
}

// FetchAll downloads every URL and returns a slice parallel to urls. A failed
// or empty URL yields a nil entry so the renderer draws an empty slot instead
// of failing the whole image.
func (f *CoverFetcher) FetchAll(ctx context.Context, urls []string) []image.Image {
	covers := make([]image.Image, len(urls))
	for i, url := range urls {
		if url == "" {
			continue
		}
		img, err := f.fetch(ctx, url)
		if err != nil {
			f.logger.Warn("cover fetch failed", "url", url, "error", err)
			continue
		}
		covers[i] = img
	}
	return covers
}

func (f *CoverFetcher) fetch(ctx context.Context, url string) (image.Image, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed: status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, maxCoverSize))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	return img, nil
}
