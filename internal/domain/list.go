package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shelfshare/shelfshare-server/internal/errors"
)

// ListType determines layout and whether tiers apply.
type ListType string

const (
	ListTypeRecommendation ListType = "RECOMMENDATION"
	ListTypeTier           ListType = "TIER"
)

// Valid returns true for a recognized list type.
func (t ListType) Valid() bool {
	return t == ListTypeRecommendation || t == ListTypeTier
}

// ImageStatus tracks share-image generation for a list.
type ImageStatus string

const (
	ImageStatusNone       ImageStatus = "NONE"
	ImageStatusGenerating ImageStatus = "GENERATING"
	ImageStatusReady      ImageStatus = "READY"
	ImageStatusFailed     ImageStatus = "FAILED"
)

// List name and tier constraints.
const (
	ListNameMinLength   = 3
	ListNameMaxLength   = 80
	ListDescriptionMax  = 500
	ListTiersMin        = 1
	ListTiersMax        = 10
	TierLabelMaxLength  = 30
	ListItemsMaxPerList = 100
)

// List is a user-owned named collection of titles.
type List struct {
	ID          string   `json:"id"`
	UserID      string   `json:"user_id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Type        ListType `json:"type"`

	// Tiers are ordered labels (best first). Only meaningful for TIER lists.
	Tiers []string `json:"tiers,omitempty"`

	// TemplateID selects the share-image layout.
	TemplateID string `json:"template_id"`

	// Share-image state. OGKey/SquareKey are only meaningful when
	// ImageStatus is READY.
	ImageStatus  ImageStatus `json:"image_status"`
	ImageVersion int         `json:"image_version"`
	OGKey        string      `json:"-"`
	SquareKey    string      `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []ListItem `json:"items,omitempty"`
}

// ListItem is the ordered membership of a title in a list.
type ListItem struct {
	ID     string `json:"id"`
	ListID string `json:"list_id"`
	ASIN   string `json:"asin"`

	// Position orders items within the list (0-based).
	Position int `json:"position"`

	// Tier indexes into List.Tiers. Only meaningful for TIER lists; -1 when
	// unassigned.
	Tier int `json:"tier"`
}

// Validate checks the list's own fields (not its items).
func (l *List) Validate() error {
	// Lengths are counted in characters, not bytes.
	name := strings.TrimSpace(l.Name)
	if utf8.RuneCountInString(name) < ListNameMinLength {
		return errors.Validationf("list name must be at least %d characters", ListNameMinLength)
	}
	if utf8.RuneCountInString(name) > ListNameMaxLength {
		return errors.Validationf("list name must not exceed %d characters", ListNameMaxLength)
	}
	if utf8.RuneCountInString(l.Description) > ListDescriptionMax {
		return errors.Validationf("description must not exceed %d characters", ListDescriptionMax)
	}
	if !l.Type.Valid() {
		return errors.Validationf("invalid list type %q", l.Type)
	}

	switch l.Type {
	case ListTypeTier:
		if len(l.Tiers) < ListTiersMin || len(l.Tiers) > ListTiersMax {
			return errors.Validationf("tier lists require %d-%d tiers, got %d", ListTiersMin, ListTiersMax, len(l.Tiers))
		}
		for _, label := range l.Tiers {
			trimmed := strings.TrimSpace(label)
			if trimmed == "" {
				return errors.Validation("tier labels must not be empty")
			}
			if utf8.RuneCountInString(trimmed) > TierLabelMaxLength {
				return errors.Validationf("tier label must not exceed %d characters", TierLabelMaxLength)
			}
		}
	case ListTypeRecommendation:
		if len(l.Tiers) > 0 {
			return errors.Validation("recommendation lists must not define tiers")
		}
	}

	return nil
}

// ValidateItems checks item membership against the list.
func (l *List) ValidateItems(items []ListItem) error {
	if len(items) > ListItemsMaxPerList {
		return errors.Validationf("lists are limited to %d items", ListItemsMaxPerList)
	}

	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if !ValidASIN(item.ASIN) {
			return errors.Validationf("invalid ASIN %q", item.ASIN)
		}
		if seen[item.ASIN] {
			return errors.Validationf("duplicate ASIN %q in list", item.ASIN)
		}
		seen[item.ASIN] = true

		if l.Type == ListTypeTier {
			if item.Tier < -1 || item.Tier >= len(l.Tiers) {
				return errors.Validationf("tier index %d out of range for %d tiers", item.Tier, len(l.Tiers))
			}
		} else if item.Tier != -1 && item.Tier != 0 {
			return errors.Validation("recommendation list items must not carry tier assignments")
		}
	}
	return nil
}

// HasImage reports whether share images can be served for this list.
func (l *List) HasImage() bool {
	return l.ImageStatus == ImageStatusReady && l.OGKey != ""
}
