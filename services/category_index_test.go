package services

import (
	"reflect"
	"testing"

	"github.com/fenilmodi00/meabot-backend/models"
)

func discountRecords(categories ...string) []models.Record {
	records := make([]models.Record, len(categories))
	for i, c := range categories {
		records[i] = models.NewRecord(models.DiscountSchema.Fields, []string{"Org", c, "10%", "", "", ""})
	}
	return records
}

func TestBuildCategoryIndexGroupsInStoredOrder(t *testing.T) {
	idx := BuildCategoryIndex(discountRecords("A", "B", "A"))

	if idx.Len() != 2 {
		t.Fatalf("expected 2 groups, got %d", idx.Len())
	}
	if keys := idx.Keys(); !reflect.DeepEqual(keys, []string{"a", "b"}) {
		t.Errorf("expected keys [a b], got %v", keys)
	}

	a, ok := idx.Group("a")
	if !ok || !reflect.DeepEqual(a.Indices, []int{0, 2}) {
		t.Errorf("expected group a with indices [0 2], got %+v", a)
	}
	b, ok := idx.Group("b")
	if !ok || !reflect.DeepEqual(b.Indices, []int{1}) {
		t.Errorf("expected group b with indices [1], got %+v", b)
	}
}

func TestBuildCategoryIndexLabelFromFirstRecord(t *testing.T) {
	idx := BuildCategoryIndex(discountRecords("Coffee & Tea", "coffee and tea", "", "  "))

	group, ok := idx.Group("coffee_and_tea")
	if !ok {
		t.Fatal("expected coffee_and_tea group")
	}
	if group.Label != "Coffee & Tea" {
		t.Errorf("expected label from first record, got %q", group.Label)
	}
	if !reflect.DeepEqual(group.Indices, []int{0, 1}) {
		t.Errorf("expected indices [0 1], got %v", group.Indices)
	}

	uncategorized, ok := idx.Group(UncategorizedKey)
	if !ok || uncategorized.Label != "Uncategorized" || len(uncategorized.Indices) != 2 {
		t.Errorf("unexpected uncategorized group: %+v", uncategorized)
	}
}

func TestCategoryIndexSortedPutsUncategorizedLast(t *testing.T) {
	idx := BuildCategoryIndex(discountRecords("", "food", "Beauty", "apparel"))

	var keys []string
	for _, g := range idx.Sorted() {
		keys = append(keys, g.Key)
	}

	want := []string{"apparel", "beauty", "food", UncategorizedKey}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("expected %v, got %v", want, keys)
	}
}

func TestCategoryIndexGroupReturnsCopy(t *testing.T) {
	idx := BuildCategoryIndex(discountRecords("A", "A"))

	g, _ := idx.Group("a")
	g.Indices[0] = 99

	again, _ := idx.Group("a")
	if again.Indices[0] != 0 {
		t.Error("mutating a returned group must not change the index")
	}
}

func TestBuildCategoryIndexEmpty(t *testing.T) {
	idx := BuildCategoryIndex(nil)
	if idx.Len() != 0 || len(idx.Sorted()) != 0 {
		t.Error("expected empty index")
	}
}
