// Package audible provides a rate-limited client for the Audible catalog API.
// Shelfshare uses it to resolve ASINs into display metadata for list items
// and to power the catalog search in the list editor.
package audible

import "time"

// Region represents an Audible marketplace.
type Region string

const (
	RegionUS Region = "us"
	RegionUK Region = "uk"
	RegionDE Region = "de"
	RegionFR Region = "fr"
	RegionAU Region = "au"
	RegionCA Region = "ca"
	RegionJP Region = "jp"
	RegionIT Region = "it"
	RegionIN Region = "in"
	RegionES Region = "es"
)

// AllRegions returns all supported Audible regions.
func AllRegions() []Region {
	return []Region{
		RegionUS, RegionUK, RegionDE, RegionFR, RegionAU,
		RegionCA, RegionJP, RegionIT, RegionIN, RegionES,
	}
}

// Host returns the API host for this region.
func (r Region) Host() string {
	hosts := map[Region]string{
		RegionUS: "api.audible.com",
		RegionUK: "api.audible.co.uk",
		RegionDE: "api.audible.de",
		RegionFR: "api.audible.fr",
		RegionAU: "api.audible.com.au",
		RegionCA: "api.audible.ca",
		RegionJP: "api.audible.co.jp",
		RegionIT: "api.audible.it",
		RegionIN: "api.audible.in",
		RegionES: "api.audible.es",
	}
	if host, ok := hosts[r]; ok {
		return host
	}
	return hosts[RegionUS] // Default to US
}

// Valid returns true if this is a recognized region.
func (r Region) Valid() bool {
	switch r {
	case RegionUS, RegionUK, RegionDE, RegionFR, RegionAU,
		RegionCA, RegionJP, RegionIT, RegionIN, RegionES:
		return true
	}
	return false
}

// Title represents catalog metadata for a single audiobook.
type Title struct {
	ASIN           string    `json:"asin"`
	Title          string    `json:"title"`
	Subtitle       string    `json:"subtitle,omitempty"`
	Authors        []string  `json:"authors"`
	Narrators      []string  `json:"narrators"`
	Publisher      string    `json:"publisher,omitempty"`
	ReleaseDate    time.Time `json:"release_date,omitzero"`
	RuntimeMinutes int       `json:"runtime_minutes"`
	Description    string    `json:"description,omitempty"`
	CoverURL       string    `json:"cover_url,omitempty"`
	Language       string    `json:"language,omitempty"`
	Rating         float32   `json:"rating,omitempty"`
	RatingCount    int       `json:"rating_count,omitempty"`
}

// SearchParams defines parameters for catalog search.
type SearchParams struct {
	Keywords string // General search terms
	Title    string // Search by title
	Author   string // Search by author name
	Limit    int    // Max results (default 25, max 50)
}
