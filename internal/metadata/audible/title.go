package audible

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/url"
	"regexp"
	"time"
)

// ASIN format: 10 alphanumeric characters, typically starting with B.
var asinRegex = regexp.MustCompile(`^[A-Z0-9]{10}$`)

// ValidateASIN checks if an ASIN has valid format.
func ValidateASIN(asin string) bool {
	return asinRegex.MatchString(asin)
}

// GetTitle retrieves metadata for a single audiobook by ASIN.
func (c *Client) GetTitle(ctx context.Context, region Region, asin string) (*Title, error) {
	if !region.Valid() {
		return nil, wrapError("getTitle", region, asin, ErrBadRequest)
	}
	if !ValidateASIN(asin) {
		return nil, wrapError("getTitle", region, asin, ErrInvalidASIN)
	}

	query := url.Values{}
	query.Set("response_groups", responseGroups())
	query.Set("image_sizes", imageSizes())

	path := fmt.Sprintf("/1.0/catalog/products/%s", asin)
	body, err := c.doRequest(ctx, region, path, query)
	if err != nil {
		return nil, wrapError("getTitle", region, asin, err)
	}

	var resp struct {
		Product rawProduct `json:"product"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, wrapError("getTitle", region, asin, fmt.Errorf("parse response: %w", err))
	}

	return rawProductToTitle(&resp.Product), nil
}

// rawProductToTitle converts a raw API response to a Title.
func rawProductToTitle(p *rawProduct) *Title {
	var releaseDate time.Time
	if p.ReleaseDate != "" {
		releaseDate, _ = time.Parse("2006-01-02", p.ReleaseDate)
	}

	var rating float32
	var ratingCount int
	if p.Rating != nil {
		rating = p.Rating.OverallDistribution.DisplayAverageRating
		ratingCount = p.Rating.OverallDistribution.NumReviews
	}

	return &Title{
		ASIN:           p.ASIN,
		Title:          p.Title,
		Subtitle:       p.Subtitle,
		Authors:        contributorNames(p.Authors),
		Narrators:      contributorNames(p.Narrators),
		Publisher:      p.PublisherName,
		ReleaseDate:    releaseDate,
		RuntimeMinutes: p.RuntimeLengthMin,
		Description:    stripHTML(p.MerchandisingSummary),
		CoverURL:       selectCoverURL(p.ProductImages),
		Language:       p.Language,
		Rating:         rating,
		RatingCount:    ratingCount,
	}
}
