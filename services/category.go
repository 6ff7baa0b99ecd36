package services

import (
	"strings"
	"unicode"
)

// UncategorizedKey is the category key of records with no usable category text
const UncategorizedKey = "uncategorized"

// NormalizeCategory maps free-text category labels to a canonical key:
// lowercase, "&" becomes "and", every run of characters outside [a-z0-9]
// collapses to a single "_", and leading/trailing "_" are stripped.
// Blank input, or input that normalizes to nothing, yields UncategorizedKey.
func NormalizeCategory(raw string) string {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, "&", "and")

	var b strings.Builder
	b.Grow(len(normalized))
	pendingSeparator := false
	for _, r := range normalized {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSeparator && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSeparator = false
			b.WriteRune(r)
			continue
		}
		pendingSeparator = true
	}

	if b.Len() == 0 {
		return UncategorizedKey
	}
	return b.String()
}

// CategoryDisplayLabel returns the label shown for a category: the trimmed
// raw text, or the titleized key when the raw text is blank.
func CategoryDisplayLabel(raw, key string) string {
	if label := strings.TrimSpace(raw); label != "" {
		return label
	}
	return titleizeKey(key)
}

// titleizeKey turns "coffee_and_tea" into "Coffee And Tea"
func titleizeKey(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool { return r == '_' })
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
