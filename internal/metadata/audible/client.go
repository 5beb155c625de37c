package audible

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/shelfshare/shelfshare-server/internal/ratelimit"
)

const (
	// Rate limit: 1 request per second per region, burst of 3
	defaultRPS   = 1.0
	defaultBurst = 3

	// HTTP client settings
	defaultTimeout = 30 * time.Second

	// API settings
	defaultNumResults = 25
	maxNumResults     = 50
)

// Client is a rate-limited Audible API client.
type Client struct {
	http    *http.Client
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger

	// baseURL overrides region host resolution when set (tests only).
	baseURL string
}

// New creates a new Audible client.
func New(logger *slog.Logger) *Client {
	return &Client{
		http: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter: ratelimit.New(defaultRPS, defaultBurst),
		logger:  logger,
	}
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// doRequest executes an HTTP request with rate limiting.
func (c *Client) doRequest(ctx context.Context, region Region, path string, query url.Values) ([]byte, error) {
	// Wait for rate limit
	if err := c.limiter.Wait(ctx, string(region)); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	fullURL := c.baseURL + path + "?" + query.Encode()
	if c.baseURL == "" {
		u := url.URL{
			Scheme:   "https",
			Host:     region.Host(),
			Path:     path,
			RawQuery: query.Encode(),
		}
		fullURL = u.String()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Shelfshare/1.0")

	c.logger.Debug("audible request",
		"region", region,
		"path", path,
	)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case http.StatusBadRequest:
		return nil, ErrBadRequest
	default:
		if resp.StatusCode >= 500 {
			return nil, ErrServer
		}
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
}

// responseGroups returns the standard response_groups parameter value.
func responseGroups() string {
	return "contributors,product_desc,product_attrs,product_extended_attrs,media,rating"
}

// imageSizes returns the standard image_sizes parameter value.
func imageSizes() string {
	return "500,1024"
}

// contributorNames flattens raw contributors to their display names.
func contributorNames(raw []rawContributor) []string {
	names := make([]string, 0, len(raw))
	for _, c := range raw {
		if c.Name != "" {
			names = append(names, c.Name)
		}
	}
	return names
}

// selectCoverURL picks the best available cover URL (prefer 1024px).
func selectCoverURL(images map[string]string) string {
	// Prefer larger images
	for _, size := range []string{"1024", "500", "image_url"} {
		if url, ok := images[size]; ok && url != "" {
			return url
		}
	}
	return ""
}

// Raw API response types (internal)

type rawProduct struct {
	ASIN                 string            `json:"asin"`
	Title                string            `json:"title"`
	Subtitle             string            `json:"subtitle"`
	PublisherName        string            `json:"publisher_name"`
	ReleaseDate          string            `json:"release_date"`
	RuntimeLengthMin     int               `json:"runtime_length_min"`
	MerchandisingSummary string            `json:"merchandising_summary"`
	ProductImages        map[string]string `json:"product_images"`
	Authors              []rawContributor  `json:"authors"`
	Narrators            []rawContributor  `json:"narrators"`
	Language             string            `json:"language"`
	Rating               *rawRating        `json:"rating"`
}

type rawContributor struct {
	ASIN string `json:"asin"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type rawRating struct {
	OverallDistribution struct {
		DisplayAverageRating float32 `json:"display_average_rating"`
		NumReviews           int     `json:"num_reviews"`
	} `json:"overall_distribution"`
}
