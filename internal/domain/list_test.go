package domain

import (
	"strings"
	"testing"
)

func validTierList() *List {
	return &List{
		ID:     "list-1",
		UserID: "usr-1",
		Name:   "All-Time Fantasy Rankings",
		Type:   ListTypeTier,
		Tiers:  []string{"S", "A", "B"},
	}
}

func TestList_Validate_Name(t *testing.T) {
	tests := []struct {
		name     string
		listName string
		wantErr  bool
	}{
		{"minimum length", "abc", false},
		{"maximum length", strings.Repeat("x", 80), false},
		{"too short", "ab", true},
		{"too long", strings.Repeat("x", 81), true},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		// Limits count characters, not bytes.
		{"multibyte at maximum", strings.Repeat("å", 80), false},
		{"multibyte at minimum", "ééé", false},
		{"multibyte over maximum", strings.Repeat("å", 81), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &List{Name: tt.listName, Type: ListTypeRecommendation}
			err := l.Validate()
			if tt.wantErr && err == nil {
				t.Errorf("Validate() with name %q = nil, want error", tt.listName)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() with name %q = %v", tt.listName, err)
			}
		})
	}
}

func TestList_Validate_Description(t *testing.T) {
	l := &List{Name: "My Favorites", Type: ListTypeRecommendation}

	l.Description = strings.Repeat("d", 500)
	if err := l.Validate(); err != nil {
		t.Errorf("500-char description should pass: %v", err)
	}

	l.Description = strings.Repeat("d", 501)
	if err := l.Validate(); err == nil {
		t.Error("501-char description should fail")
	}

	l.Description = strings.Repeat("ü", 500)
	if err := l.Validate(); err != nil {
		t.Errorf("500-char multibyte description should pass: %v", err)
	}
}

func TestList_Validate_Tiers(t *testing.T) {
	tests := []struct {
		name    string
		tiers   []string
		wantErr bool
	}{
		{"one tier", []string{"S"}, false},
		{"ten tiers", []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}, false},
		{"zero tiers", nil, true},
		{"eleven tiers", []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11"}, true},
		{"empty label", []string{"S", " "}, true},
		{"label too long", []string{strings.Repeat("x", 31)}, true},
		{"multibyte label at limit", []string{strings.Repeat("ö", 30)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := validTierList()
			l.Tiers = tt.tiers
			err := l.Validate()
			if tt.wantErr && err == nil {
				t.Errorf("Validate() with %d tiers = nil, want error", len(tt.tiers))
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() with %d tiers = %v", len(tt.tiers), err)
			}
		})
	}
}

func TestList_Validate_RecommendationRejectsTiers(t *testing.T) {
	l := &List{Name: "Summer Picks", Type: ListTypeRecommendation, Tiers: []string{"S"}}
	if err := l.Validate(); err == nil {
		t.Error("recommendation list with tiers should fail")
	}
}

func TestList_ValidateItems(t *testing.T) {
	l := validTierList()

	items := []ListItem{
		{ASIN: "B002V0QK4C", Position: 0, Tier: 0},
		{ASIN: "B004T8RS4E", Position: 1, Tier: 2},
		{ASIN: "B017V4IM1G", Position: 2, Tier: -1}, // unassigned is fine
	}
	if err := l.ValidateItems(items); err != nil {
		t.Errorf("valid items rejected: %v", err)
	}

	t.Run("duplicate asin", func(t *testing.T) {
		dup := append(items, ListItem{ASIN: "B002V0QK4C", Position: 3, Tier: 0})
		if err := l.ValidateItems(dup); err == nil {
			t.Error("duplicate ASIN should fail")
		}
	})

	t.Run("tier out of range", func(t *testing.T) {
		bad := []ListItem{{ASIN: "B002V0QK4C", Tier: 3}} // only 3 tiers: 0-2
		if err := l.ValidateItems(bad); err == nil {
			t.Error("tier index beyond defined tiers should fail")
		}
	})

	t.Run("invalid asin", func(t *testing.T) {
		bad := []ListItem{{ASIN: "notanasin", Tier: 0}}
		if err := l.ValidateItems(bad); err == nil {
			t.Error("invalid ASIN should fail")
		}
	})

	t.Run("too many items", func(t *testing.T) {
		many := make([]ListItem, ListItemsMaxPerList+1)
		for i := range many {
			// Synthesize distinct valid ASINs.
			many[i] = ListItem{ASIN: syntheticASIN(i), Position: i, Tier: -1}
		}
		if err := l.ValidateItems(many); err == nil {
			t.Error("over item limit should fail")
		}
	})
}

// syntheticASIN builds a distinct well-formed ASIN for test data.
func syntheticASIN(i int) string {
	const digits = "0123456789"
	suffix := ""
	for n := i; ; n /= 10 {
		suffix = string(digits[n%10]) + suffix
		if n < 10 {
			break
		}
	}
	return "B" + strings.Repeat("0", 9-len(suffix)) + suffix
}

func TestList_HasImage(t *testing.T) {
	l := validTierList()
	if l.HasImage() {
		t.Error("list without image status should not report an image")
	}

	l.ImageStatus = ImageStatusReady
	if l.HasImage() {
		t.Error("READY without keys should not report an image")
	}

	l.OGKey = "lists/list-1/v1/og.png"
	if !l.HasImage() {
		t.Error("READY with keys should report an image")
	}

	l.ImageStatus = ImageStatusFailed
	if l.HasImage() {
		t.Error("FAILED should not report an image")
	}
}
