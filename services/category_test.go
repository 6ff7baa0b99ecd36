package services

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Coffee & Tea!!", "coffee_and_tea"},
		{"", UncategorizedKey},
		{"   ", UncategorizedKey},
		{"!!!", UncategorizedKey},
		{"Food", "food"},
		{"  Beauty / Spa  ", "beauty_spa"},
		{"__Sports__", "sports"},
		{"Gifts&Flowers", "giftsandflowers"},
		{"Café 24/7", "caf_24_7"},
		{"Кофе", UncategorizedKey},
	}

	for _, tt := range tests {
		if got := NormalizeCategory(tt.raw); got != tt.want {
			t.Errorf("NormalizeCategory(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestCategoryDisplayLabel(t *testing.T) {
	if got := CategoryDisplayLabel("  Coffee & Tea ", "coffee_and_tea"); got != "Coffee & Tea" {
		t.Errorf("expected trimmed raw label, got %q", got)
	}
	if got := CategoryDisplayLabel("", "coffee_and_tea"); got != "Coffee And Tea" {
		t.Errorf("expected titleized key, got %q", got)
	}
	if got := CategoryDisplayLabel(" ", UncategorizedKey); got != "Uncategorized" {
		t.Errorf("expected Uncategorized, got %q", got)
	}
}

// TestNormalizeCategoryProperties checks the normalizer invariants over arbitrary input
func TestNormalizeCategoryProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("normalize is idempotent", prop.ForAll(
		func(s string) bool {
			once := NormalizeCategory(s)
			return NormalizeCategory(once) == once
		},
		gen.AnyString(),
	))

	properties.Property("keys use only [a-z0-9_] without edge or doubled underscores", prop.ForAll(
		func(s string) bool {
			key := NormalizeCategory(s)
			if key == "" || key[0] == '_' || key[len(key)-1] == '_' {
				return false
			}
			for i := 0; i < len(key); i++ {
				c := key[i]
				valid := (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_'
				if !valid || (c == '_' && key[i-1] == '_') {
					return false
				}
			}
			return true
		},
		gen.AnyString(),
	))

	properties.Property("surrounding whitespace does not change the key", prop.ForAll(
		func(s string) bool {
			return NormalizeCategory("  "+s+"\t") == NormalizeCategory(s)
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
