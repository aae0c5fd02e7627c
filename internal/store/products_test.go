package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/01moynul/calibration-catalog/internal/catalog"
	"github.com/01moynul/calibration-catalog/internal/models"
	"github.com/01moynul/calibration-catalog/internal/testutil"
)

func intPtr(v int) *int { return &v }

func seedPressure(t *testing.T, s *Store) *CategoryTree {
	t.Helper()
	tree, err := s.CreateCategory(context.Background(), pressureInput())
	require.NoError(t, err)
	return tree
}

func TestCreateProductResolvesAttribution(t *testing.T) {
	s := New(testutil.OpenDB(t))
	ctx := context.Background()
	tree := seedPressure(t, s)

	p, err := s.CreateProduct(ctx, models.ProductFields{
		Name:           "DPG-100",
		Specifications: []models.Specification{{Key: "Range", Value: "0-700 bar"}},
		Applications:   []string{"Lab"},
		Rank:           intPtr(5),
	}, models.Attribution{Category: "Pressure", SubcategoryPath: "gauges > digital"},
		[]string{"/uploads/products/a.jpg", "/uploads/products/b.jpg"}, "/uploads/catalogs/c.pdf", "")
	require.NoError(t, err)

	assert.Equal(t, tree.ID, *p.CategoryID)
	assert.Equal(t, "Pressure", p.CategoryName)
	assert.Equal(t, "Gauges > Digital", p.SubcategoryPath)
	assert.Equal(t, 5, p.Rank)
	assert.Equal(t, []string{"/uploads/products/a.jpg", "/uploads/products/b.jpg"}, p.ImageURLs())
	require.NotNil(t, p.CatalogPdfURL)
	assert.Nil(t, p.DatasheetPdfURL)
	assert.Equal(t, "0-700 bar", p.Specifications[0].Value)
	assert.Equal(t, []string{}, []string(p.Certifications))
}

func TestCreateProductRejectsBadReferences(t *testing.T) {
	s := New(testutil.OpenDB(t))
	ctx := context.Background()
	tree := seedPressure(t, s)

	other, err := s.CreateCategory(ctx, models.CategoryInput{
		Name:          "Temperature",
		Subcategories: []models.SubcategoryNode{{Name: "Baths"}},
	})
	require.NoError(t, err)

	cases := map[string]models.Attribution{
		"missing category":         {},
		"unknown category":         {Category: "Flow"},
		"unknown path":             {CategoryID: tree.ID, SubcategoryPath: "Gauges > Smart"},
		"subcategory of other cat": {CategoryID: tree.ID, SubcategoryID: other.Paths[0].ID},
	}
	for name, ref := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := s.CreateProduct(ctx, models.ProductFields{Name: "X"}, ref, nil, "", "")
			assert.True(t, errors.Is(err, ErrInvalidReference), "got %v", err)
		})
	}
}

func TestCreateProductDefaultsRankToEnd(t *testing.T) {
	s := New(testutil.OpenDB(t))
	ctx := context.Background()
	tree := seedPressure(t, s)
	ref := models.Attribution{CategoryID: tree.ID}

	first, err := s.CreateProduct(ctx, models.ProductFields{Name: "A"}, ref, nil, "", "")
	require.NoError(t, err)
	assert.Equal(t, 0, first.Rank)

	_, err = s.CreateProduct(ctx, models.ProductFields{Name: "B", Rank: intPtr(7)}, ref, nil, "", "")
	require.NoError(t, err)

	last, err := s.CreateProduct(ctx, models.ProductFields{Name: "C"}, ref, nil, "", "")
	require.NoError(t, err)
	assert.Equal(t, 8, last.Rank)
}

func TestListProductsOrderAndFilters(t *testing.T) {
	s := New(testutil.OpenDB(t))
	ctx := context.Background()
	tree := seedPressure(t, s)
	ref := models.Attribution{CategoryID: tree.ID}

	for _, f := range []models.ProductFields{
		{Name: "third", Rank: intPtr(2)},
		{Name: "first", Rank: intPtr(1), HomeFeatured: true},
		{Name: "second", Rank: intPtr(1)},
	} {
		_, err := s.CreateProduct(ctx, f, ref, nil, "", "")
		require.NoError(t, err)
	}

	all, err := s.ListProducts(ctx, ProductFilter{})
	require.NoError(t, err)
	var names []string
	for _, p := range all {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"first", "second", "third"}, names)

	featured, err := s.ListProducts(ctx, ProductFilter{FeaturedOnly: true})
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.Equal(t, "first", featured[0].Name)
}

func TestGetProductCountsViews(t *testing.T) {
	s := New(testutil.OpenDB(t))
	ctx := context.Background()
	tree := seedPressure(t, s)

	p, err := s.CreateProduct(ctx, models.ProductFields{Name: "A"}, models.Attribution{CategoryID: tree.ID}, nil, "", "")
	require.NoError(t, err)

	for i := 1; i <= 2; i++ {
		got, err := s.GetProduct(ctx, p.ID, true)
		require.NoError(t, err)
		assert.Equal(t, i, got.Views)
	}
	got, err := s.GetProduct(ctx, p.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Views)

	_, err = s.GetProduct(ctx, 999, true)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestUpdateProductDiffsImages(t *testing.T) {
	s := New(testutil.OpenDB(t))
	ctx := context.Background()
	tree := seedPressure(t, s)

	p, err := s.CreateProduct(ctx, models.ProductFields{Name: "A"}, models.Attribution{CategoryID: tree.ID},
		[]string{"/u/1.jpg", "/u/2.jpg"}, "/u/cat.pdf", "/u/ds.pdf")
	require.NoError(t, err)

	empty := ""
	newCatalog := "/u/cat2.pdf"
	updated, removed, err := s.UpdateProduct(ctx, p.ID, ProductUpdate{
		Fields:          models.ProductFields{Name: "A2", ShortDescription: "updated"},
		Attribution:     models.Attribution{CategoryID: tree.ID, SubcategoryPath: "Controllers"},
		KeepImages:      []string{"/u/2.jpg"},
		NewImages:       []string{"/u/3.jpg"},
		CatalogPdfURL:   &newCatalog,
		DatasheetPdfURL: &empty,
	})
	require.NoError(t, err)

	assert.Equal(t, "A2", updated.Name)
	assert.Equal(t, "Controllers", updated.SubcategoryPath)
	assert.Equal(t, []string{"/u/2.jpg", "/u/3.jpg"}, updated.ImageURLs())
	assert.Equal(t, "/u/cat2.pdf", *updated.CatalogPdfURL)
	assert.Nil(t, updated.DatasheetPdfURL)
	assert.ElementsMatch(t, []string{"/u/1.jpg", "/u/cat.pdf", "/u/ds.pdf"}, removed)
}

func TestUpdateProductMovedCategoryGoesLast(t *testing.T) {
	s := New(testutil.OpenDB(t))
	ctx := context.Background()
	pressure := seedPressure(t, s)
	temperature, err := s.CreateCategory(ctx, models.CategoryInput{Name: "Temperature"})
	require.NoError(t, err)

	p, err := s.CreateProduct(ctx, models.ProductFields{Name: "A", Rank: intPtr(3)}, models.Attribution{CategoryID: pressure.ID}, nil, "", "")
	require.NoError(t, err)
	_, err = s.CreateProduct(ctx, models.ProductFields{Name: "T", Rank: intPtr(4)}, models.Attribution{CategoryID: temperature.ID}, nil, "", "")
	require.NoError(t, err)

	// Same category, no rank: the rank is kept.
	got, _, err := s.UpdateProduct(ctx, p.ID, ProductUpdate{
		Fields:      models.ProductFields{Name: "A"},
		Attribution: models.Attribution{CategoryID: pressure.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, got.Rank)

	// Moved without a rank: last in the new category.
	got, _, err = s.UpdateProduct(ctx, p.ID, ProductUpdate{
		Fields:      models.ProductFields{Name: "A"},
		Attribution: models.Attribution{CategoryID: temperature.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, got.Rank)

	// Moved into an empty category: first there.
	got, _, err = s.UpdateProduct(ctx, p.ID, ProductUpdate{
		Fields:      models.ProductFields{Name: "A"},
		Attribution: models.Attribution{CategoryID: pressure.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, got.Rank)

	// An explicit rank wins.
	got, _, err = s.UpdateProduct(ctx, p.ID, ProductUpdate{
		Fields:      models.ProductFields{Name: "A", Rank: intPtr(1)},
		Attribution: models.Attribution{CategoryID: temperature.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Rank)
}

func TestUpdateProductRollsBackOnBadReference(t *testing.T) {
	s := New(testutil.OpenDB(t))
	ctx := context.Background()
	tree := seedPressure(t, s)

	p, err := s.CreateProduct(ctx, models.ProductFields{Name: "A"}, models.Attribution{CategoryID: tree.ID},
		[]string{"/u/1.jpg"}, "", "")
	require.NoError(t, err)

	_, _, err = s.UpdateProduct(ctx, p.ID, ProductUpdate{
		Fields:      models.ProductFields{Name: "B"},
		Attribution: models.Attribution{Category: "Nope"},
	})
	require.True(t, errors.Is(err, ErrInvalidReference))

	got, err := s.GetProduct(ctx, p.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Name)
	assert.Equal(t, []string{"/u/1.jpg"}, got.ImageURLs())
}

func TestDeleteProductReturnsFiles(t *testing.T) {
	db := testutil.OpenDB(t)
	s := New(db)
	ctx := context.Background()
	tree := seedPressure(t, s)

	p, err := s.CreateProduct(ctx, models.ProductFields{Name: "A"}, models.Attribution{CategoryID: tree.ID},
		[]string{"/u/1.jpg"}, "/u/cat.pdf", "")
	require.NoError(t, err)

	files, err := s.DeleteProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"/u/1.jpg", "/u/cat.pdf"}, files)

	var images int64
	require.NoError(t, db.Model(&models.ProductImage{}).Count(&images).Error)
	assert.Zero(t, images)

	_, err = s.DeleteProduct(ctx, p.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestUpdateRanks(t *testing.T) {
	s := New(testutil.OpenDB(t))
	ctx := context.Background()
	tree := seedPressure(t, s)

	a, err := s.CreateProduct(ctx, models.ProductFields{Name: "A", Rank: intPtr(1)}, models.Attribution{CategoryID: tree.ID}, nil, "", "")
	require.NoError(t, err)
	b, err := s.CreateProduct(ctx, models.ProductFields{Name: "B", Rank: intPtr(2)}, models.Attribution{CategoryID: tree.ID}, nil, "", "")
	require.NoError(t, err)

	applied, skipped := s.UpdateRanks(ctx, []catalog.RankUpdate{
		{Index: 0, ID: a.ID, Rank: 9},
		{Index: 1, ID: 999, Rank: 1},
		{Index: 2, ID: b.ID, Rank: 2},
	})

	assert.Len(t, applied, 2)
	require.Len(t, skipped, 1)
	assert.Equal(t, 1, skipped[0].Index)
	assert.Equal(t, catalog.ReasonNotFound, skipped[0].Reason)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(skipped[0].Entry, &entry))
	assert.Equal(t, float64(999), entry["id"])

	got, err := s.GetProduct(ctx, a.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Rank)

	list, err := s.ListProducts(ctx, ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, "B", list[0].Name)
}
