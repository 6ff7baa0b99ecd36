package models

import "strings"

// Discount is the typed view of a merchant discount record.
// Category holds the raw operator-entered text; grouping is derived from it
// on every read and never stored.
type Discount struct {
	Organization string   `json:"organization"`
	Category     string   `json:"category"`
	Discount     string   `json:"discount"`
	Addresses    []string `json:"addresses"`
	Details      string   `json:"details"`
	Instagram    string   `json:"instagram"`
}

func DiscountFromRecord(r Record) Discount {
	return Discount{
		Organization: r.Get("organization"),
		Category:     r.Get("category"),
		Discount:     r.Get("discount"),
		Addresses:    splitLines(r.Get("addresses")),
		Details:      r.Get("details"),
		Instagram:    r.Get("instagram"),
	}
}

// splitLines breaks a multi-line cell into its non-blank lines
func splitLines(cell string) []string {
	var out []string
	for _, line := range strings.Split(cell, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// CategoryGroup is one entry of a category index: the display label taken
// from the first record seen with the key, and the positions of all
// records sharing the key in stored order.
type CategoryGroup struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Indices []int  `json:"indices"`
}
