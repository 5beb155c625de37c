// Package render turns a list plus cover art into share-preview PNGs.
//
// A template registry maps template IDs to layout metadata (slot count,
// supported sizes) and a layout function. The renderer fills slots with cover
// images, draws the list title and tier labels, and encodes PNG.
package render

import (
	"image"

	"github.com/shelfshare/shelfshare-server/internal/domain"
	"github.com/shelfshare/shelfshare-server/internal/errors"
)

// Size identifies a fixed output size.
type Size string

const (
	// SizeOG is the Open Graph preview size.
	SizeOG Size = "og"
	// SizeSquare is the square social size.
	SizeSquare Size = "square"
)

// Dimensions returns the pixel dimensions for this size.
func (s Size) Dimensions() (width, height int) {
	switch s {
	case SizeOG:
		return 1200, 630
	case SizeSquare:
		return 1080, 1080
	default:
		return 0, 0
	}
}

// Valid returns true for a recognized size.
func (s Size) Valid() bool {
	return s == SizeOG || s == SizeSquare
}

// layoutFunc composes covers onto the canvas for one template.
type layoutFunc func(canvas *image.RGBA, list *domain.List, covers []image.Image)

// Template describes one share-image layout.
type Template struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Slots int    `json:"slots"`
	Sizes []Size `json:"sizes"`

	// ForType restricts the template to one list type; empty means any.
	ForType domain.ListType `json:"for_type,omitempty"`

	layout layoutFunc
}

// Supports reports whether the template can render at the given size.
func (t *Template) Supports(size Size) bool {
	for _, s := range t.Sizes {
		if s == size {
			return true
		}
	}
	return false
}

// registry holds all known templates. Order matters for listings.
var registry = []*Template{
	{
		ID:      "recommendation-strip",
		Name:    "Strip",
		Slots:   5,
		Sizes:   []Size{SizeOG, SizeSquare},
		ForType: domain.ListTypeRecommendation,
		layout:  layoutStrip,
	},
	{
		ID:      "recommendation-grid",
		Name:    "Grid",
		Slots:   9,
		Sizes:   []Size{SizeSquare},
		ForType: domain.ListTypeRecommendation,
		layout:  layoutGrid,
	},
	{
		ID:      "tier-board",
		Name:    "Tier Board",
		Slots:   12,
		Sizes:   []Size{SizeOG, SizeSquare},
		ForType: domain.ListTypeTier,
		layout:  layoutTierBoard,
	},
}

// GetTemplate looks up a template by ID.
func GetTemplate(id string) (*Template, error) {
	for _, t := range registry {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, errors.NotFoundf("unknown template %q", id)
}

// AllTemplates returns every registered template.
func AllTemplates() []*Template {
	out := make([]*Template, len(registry))
	copy(out, registry)
	return out
}

// DefaultTemplateID returns the template used when a list doesn't pick one.
func DefaultTemplateID(listType domain.ListType) string {
	if listType == domain.ListTypeTier {
		return "tier-board"
	}
	return "recommendation-strip"
}
