package services

import (
	"sort"
	"strings"

	"github.com/fenilmodi00/meabot-backend/models"
)

// CategoryIndex groups discount records by derived category key.
// Keys are held in first-seen order.
type CategoryIndex struct {
	keys   []string
	groups map[string]*models.CategoryGroup
}

// BuildCategoryIndex scans discounts once in stored order. The first record
// seen with a key supplies the group's label; every record's position is
// appended to its key's index list.
func BuildCategoryIndex(discounts []models.Record) *CategoryIndex {
	idx := &CategoryIndex{groups: make(map[string]*models.CategoryGroup)}

	for i, record := range discounts {
		raw := record.Get("category")
		key := NormalizeCategory(raw)

		group, ok := idx.groups[key]
		if !ok {
			group = &models.CategoryGroup{
				Key:   key,
				Label: CategoryDisplayLabel(raw, key),
			}
			idx.groups[key] = group
			idx.keys = append(idx.keys, key)
		}
		group.Indices = append(group.Indices, i)
	}

	return idx
}

// Len returns the number of categories
func (idx *CategoryIndex) Len() int {
	return len(idx.keys)
}

// Keys returns category keys in first-seen order
func (idx *CategoryIndex) Keys() []string {
	out := make([]string, len(idx.keys))
	copy(out, idx.keys)
	return out
}

// Group returns a copy of the group for key
func (idx *CategoryIndex) Group(key string) (models.CategoryGroup, bool) {
	group, ok := idx.groups[key]
	if !ok {
		return models.CategoryGroup{}, false
	}
	return copyGroup(group), true
}

// Sorted returns the groups in display order: alphabetical by label
// (case-insensitive, ties broken by key) with UncategorizedKey always last.
func (idx *CategoryIndex) Sorted() []models.CategoryGroup {
	out := make([]models.CategoryGroup, 0, len(idx.keys))
	for _, key := range idx.keys {
		out = append(out, copyGroup(idx.groups[key]))
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if (a.Key == UncategorizedKey) != (b.Key == UncategorizedKey) {
			return b.Key == UncategorizedKey
		}
		la, lb := strings.ToLower(a.Label), strings.ToLower(b.Label)
		if la != lb {
			return la < lb
		}
		return a.Key < b.Key
	})

	return out
}

func copyGroup(g *models.CategoryGroup) models.CategoryGroup {
	indices := make([]int, len(g.Indices))
	copy(indices, g.Indices)
	return models.CategoryGroup{Key: g.Key, Label: g.Label, Indices: indices}
}
