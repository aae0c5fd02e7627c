package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/01moynul/calibration-catalog/internal/models"
	"github.com/01moynul/calibration-catalog/internal/store"
	"github.com/01moynul/calibration-catalog/internal/testutil"
)

func TestStoreLookupSearchesCatalog(t *testing.T) {
	s := store.New(testutil.OpenDB(t))
	ctx := context.Background()

	_, err := s.CreateCategory(ctx, models.CategoryInput{
		Name:          "Temperature",
		Subcategories: []models.SubcategoryNode{{Name: "Dry Blocks"}},
	})
	require.NoError(t, err)

	for _, name := range []string{"DB-150 Dry Block", "DB-650 Dry Block", "Reference Thermometer"} {
		_, err := s.CreateProduct(ctx, models.ProductFields{Name: name, ShortDescription: "calibrator"},
			models.Attribution{Category: "Temperature", SubcategoryPath: "Dry Blocks"}, nil, "", "")
		require.NoError(t, err)
	}

	res, err := StoreLookup(s, 1)(ctx, "dry block")
	require.NoError(t, err)

	hits, ok := res.([]ProductHit)
	require.True(t, ok)
	require.Len(t, hits, 1)
	assert.Equal(t, "DB-150 Dry Block", hits[0].Name)
	assert.Equal(t, "Temperature", hits[0].Category)
	assert.Equal(t, "Dry Blocks", hits[0].Subcategory)

	res, err = StoreLookup(s, 5)(ctx, "manometer")
	require.NoError(t, err)
	assert.Empty(t, res)
}
