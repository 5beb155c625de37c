package audible

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/url"
	"strconv"
)

// Search searches the Audible catalog. Used by the list editor to find
// titles to add without knowing the ASIN up front.
func (c *Client) Search(ctx context.Context, region Region, params SearchParams) ([]Title, error) {
	if !region.Valid() {
		return nil, wrapError("search", region, "", ErrBadRequest)
	}

	query := url.Values{}

	if params.Keywords != "" {
		query.Set("keywords", params.Keywords)
	}
	if params.Title != "" {
		query.Set("title", params.Title)
	}
	if params.Author != "" {
		query.Set("author", params.Author)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultNumResults
	}
	if limit > maxNumResults {
		limit = maxNumResults
	}
	query.Set("num_results", strconv.Itoa(limit))

	query.Set("response_groups", responseGroups())
	query.Set("image_sizes", imageSizes())
	query.Set("products_sort_by", "Relevance")

	body, err := c.doRequest(ctx, region, "/1.0/catalog/products", query)
	if err != nil {
		return nil, wrapError("search", region, "", err)
	}

	var resp struct {
		Products []rawProduct `json:"products"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, wrapError("search", region, "", fmt.Errorf("parse response: %w", err))
	}

	results := make([]Title, 0, len(resp.Products))
	for i := range resp.Products {
		results = append(results, *rawProductToTitle(&resp.Products[i]))
	}

	return results, nil
}
