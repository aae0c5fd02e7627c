package catalog

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/01moynul/calibration-catalog/internal/models"
)

func uintPtr(v uint) *uint { return &v }

// sampleRows is Pressure (Gauges > Digital, Controllers) and Temperature.
func sampleRows() []models.Subcategory {
	return []models.Subcategory{
		{ID: 4, Name: "Digital", ParentID: uintPtr(2), Position: 0},
		{ID: 3, Name: "Controllers", ParentID: uintPtr(1), Position: 1},
		{ID: 2, Name: "Gauges", ParentID: uintPtr(1), Position: 0},
		{ID: 5, Name: "Temperature", Position: 1},
		{ID: 1, Name: "Pressure", Position: 0},
	}
}

func TestBuildForest(t *testing.T) {
	forest := BuildForest(sampleRows())

	require.Len(t, forest, 2)
	assert.Equal(t, "Pressure", forest[0].Name)
	assert.Equal(t, "Temperature", forest[1].Name)
	require.Len(t, forest[0].Children, 2)
	assert.Equal(t, "Gauges", forest[0].Children[0].Name)
	assert.Equal(t, "Controllers", forest[0].Children[1].Name)
	require.Len(t, forest[0].Children[0].Children, 1)
	assert.Equal(t, "Digital", forest[0].Children[0].Children[0].Name)
	assert.Empty(t, forest[1].Children)
	assert.NotNil(t, forest[1].Children)
}

func TestBuildForestOrphanBecomesRoot(t *testing.T) {
	forest := BuildForest([]models.Subcategory{{ID: 9, Name: "Lost", ParentID: uintPtr(42)}})
	require.Len(t, forest, 1)
	assert.Equal(t, uint(9), forest[0].ID)
}

func TestPaths(t *testing.T) {
	paths := Paths(BuildForest(sampleRows()))

	assert.Equal(t, []PathEntry{
		{ID: 1, Path: "Pressure", Depth: 0},
		{ID: 2, Path: "Pressure > Gauges", Depth: 1},
		{ID: 4, Path: "Pressure > Gauges > Digital", Depth: 2},
		{ID: 3, Path: "Pressure > Controllers", Depth: 1},
		{ID: 5, Path: "Temperature", Depth: 0},
	}, paths)
}

func TestSplitAndNormalizePath(t *testing.T) {
	assert.Equal(t, []string{"A", "B", "C"}, SplitPath("A>B >  C"))
	assert.Nil(t, SplitPath("   "))
	assert.Equal(t, "A > B", NormalizePath(" A>B "))
	assert.Equal(t, "A > B", JoinPath("A", " ", "B"))
}

func TestResolve(t *testing.T) {
	forest := BuildForest(sampleRows())

	id, ok := Resolve(forest, "Pressure > Gauges > Digital")
	require.True(t, ok)
	assert.Equal(t, uint(4), id)

	id, ok = Resolve(forest, "pressure>controllers")
	require.True(t, ok)
	assert.Equal(t, uint(3), id)

	_, ok = Resolve(forest, "Gauges")
	assert.False(t, ok)
	_, ok = Resolve(forest, "")
	assert.False(t, ok)
}

func TestValidateTree(t *testing.T) {
	good := []models.SubcategoryNode{
		{Name: "Pressure", Children: []models.SubcategoryNode{{Name: "Gauges"}, {Name: "Controllers"}}},
		{Name: "Gauges"},
	}
	require.NoError(t, ValidateTree(good))

	cases := map[string][]models.SubcategoryNode{
		"empty name":        {{Name: "  "}},
		"separator in name": {{Name: "A > B"}},
		"duplicate sibling": {{Name: "A"}, {Name: "a "}},
		"nested duplicate":  {{Name: "A", Children: []models.SubcategoryNode{{Name: "X"}, {Name: "X"}}}},
		"nested empty":      {{Name: "A", Children: []models.SubcategoryNode{{Name: ""}}}},
	}
	for name, tree := range cases {
		t.Run(name, func(t *testing.T) {
			err := ValidateTree(tree)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTree))
		})
	}
}

func TestFilter(t *testing.T) {
	products := []models.Product{
		{ID: 1, Name: "Digital Pressure Gauge", CategoryName: "Pressure", SubcategoryPath: "Gauges > Digital"},
		{ID: 2, Name: "Pressure Controller", CategoryName: "Pressure", SubcategoryPath: "Controllers"},
		{ID: 3, Name: "Dry Block", ShortDescription: "Portable temperature calibrator", CategoryName: "Temperature"},
		{ID: 4, Name: "Analog Gauge", CategoryName: "Pressure", SubcategoryPath: "Gauges"},
	}

	ids := func(ps []models.Product) []uint {
		out := []uint{}
		for _, p := range ps {
			out = append(out, p.ID)
		}
		return out
	}

	t.Run("no filter keeps order", func(t *testing.T) {
		assert.Equal(t, []uint{1, 2, 3, 4}, ids(Filter(products, Query{})))
	})
	t.Run("main category", func(t *testing.T) {
		assert.Equal(t, []uint{1, 2, 4}, ids(Filter(products, Query{Main: "Pressure"})))
	})
	t.Run("exact subcategory path", func(t *testing.T) {
		assert.Equal(t, []uint{4}, ids(Filter(products, Query{Main: "Pressure", Sub: "Gauges"})))
		assert.Equal(t, []uint{1}, ids(Filter(products, Query{Main: "Pressure", Sub: "Gauges>Digital"})))
	})
	t.Run("search is case-insensitive over name and description", func(t *testing.T) {
		assert.Equal(t, []uint{1, 4}, ids(Filter(products, Query{Search: "gauge"})))
		assert.Equal(t, []uint{3}, ids(Filter(products, Query{Search: "PORTABLE"})))
	})
	t.Run("filters combine", func(t *testing.T) {
		assert.Equal(t, []uint{2}, ids(Filter(products, Query{Main: "Pressure", Search: "controller"})))
		assert.Empty(t, Filter(products, Query{Main: "Temperature", Search: "gauge"}))
	})
	t.Run("filter is a subset and idempotent", func(t *testing.T) {
		q := Query{Main: "Pressure"}
		once := Filter(products, q)
		assert.Equal(t, once, Filter(once, q))
		assert.LessOrEqual(t, len(once), len(products))
	})
}

func TestParseRankBatch(t *testing.T) {
	var entries []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(`[
		{"id": 1, "rank": 3},
		{"id": "2", "rank": 1},
		{"id": 0, "rank": 1},
		{"id": 4, "rank": "high"},
		{"id": 5, "rank": 2.0},
		{"id": 6, "rank": 2.5},
		{"id": 7},
		"garbage",
		{"id": 8, "rank": -1}
	]`), &entries))

	valid, skipped := ParseRankBatch(entries)

	assert.Equal(t, []RankUpdate{
		{Index: 0, ID: 1, Rank: 3},
		{Index: 4, ID: 5, Rank: 2},
		{Index: 8, ID: 8, Rank: -1},
	}, valid)

	var skippedIdx []int
	for _, s := range skipped {
		skippedIdx = append(skippedIdx, s.Index)
		assert.Equal(t, ReasonInvalidEntry, s.Reason)
	}
	assert.Equal(t, []int{1, 2, 3, 5, 6, 7}, skippedIdx)
	assert.JSONEq(t, `{"id": "2", "rank": 1}`, string(skipped[0].Entry))
}

func TestParseRankBatchEmpty(t *testing.T) {
	valid, skipped := ParseRankBatch(nil)
	assert.Empty(t, valid)
	assert.Empty(t, skipped)
}
