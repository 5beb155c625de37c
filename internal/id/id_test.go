package id

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	got, err := Generate("list")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.HasPrefix(got, "list-") {
		t.Errorf("expected prefix %q, got %q", "list-", got)
	}
	// Default NanoID is 21 chars plus "list-".
	if len(got) != len("list-")+21 {
		t.Errorf("unexpected length %d for %q", len(got), got)
	}
}

func TestGenerate_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for range 1000 {
		id, err := Generate("usr")
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestMustGenerate(t *testing.T) {
	got := MustGenerate("ent")
	if !strings.HasPrefix(got, "ent-") {
		t.Errorf("expected prefix %q, got %q", "ent-", got)
	}
}
