package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/01moynul/calibration-catalog/internal/catalog"
	"github.com/01moynul/calibration-catalog/internal/models"
	"github.com/01moynul/calibration-catalog/internal/testutil"
)

func pressureInput() models.CategoryInput {
	return models.CategoryInput{
		Name: "Pressure",
		Subcategories: []models.SubcategoryNode{
			{Name: "Gauges", Children: []models.SubcategoryNode{{Name: "Digital"}, {Name: "Analog"}}},
			{Name: "Controllers"},
		},
	}
}

func pathsOf(tree *CategoryTree) []string {
	out := []string{}
	for _, p := range tree.Paths {
		out = append(out, p.Path)
	}
	return out
}

func pathID(t *testing.T, tree *CategoryTree, path string) uint {
	t.Helper()
	for _, p := range tree.Paths {
		if p.Path == path {
			return p.ID
		}
	}
	t.Fatalf("path %q not in tree", path)
	return 0
}

func TestCreateCategory(t *testing.T) {
	s := New(testutil.OpenDB(t))
	ctx := context.Background()

	tree, err := s.CreateCategory(ctx, pressureInput())
	require.NoError(t, err)

	assert.Equal(t, "Pressure", tree.Name)
	assert.Equal(t, "pressure", tree.Slug)
	assert.Equal(t, []string{"Gauges", "Gauges > Digital", "Gauges > Analog", "Controllers"}, pathsOf(tree))
	require.Len(t, tree.Subcategories, 2)
	assert.Len(t, tree.Subcategories[0].Children, 2)

	list, err := s.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, pathsOf(tree), pathsOf(&list[0]))
}

func TestCreateCategoryRejectsDuplicatesAndBadTrees(t *testing.T) {
	s := New(testutil.OpenDB(t))
	ctx := context.Background()

	_, err := s.CreateCategory(ctx, pressureInput())
	require.NoError(t, err)

	_, err = s.CreateCategory(ctx, models.CategoryInput{Name: "Pressure"})
	assert.True(t, errors.Is(err, ErrConflict))

	_, err = s.CreateCategory(ctx, models.CategoryInput{
		Name:          "Flow",
		Subcategories: []models.SubcategoryNode{{Name: "Meters"}, {Name: "Meters"}},
	})
	assert.True(t, errors.Is(err, catalog.ErrInvalidTree))

	// nothing from the failed create was kept
	list, err := s.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUpdateCategoryRelinksProducts(t *testing.T) {
	db := testutil.OpenDB(t)
	s := New(db)
	ctx := context.Background()

	tree, err := s.CreateCategory(ctx, pressureInput())
	require.NoError(t, err)
	digitalID := pathID(t, tree, "Gauges > Digital")
	analogID := pathID(t, tree, "Gauges > Analog")
	controllersID := pathID(t, tree, "Controllers")

	mk := func(name string, sub uint) uint {
		p, err := s.CreateProduct(ctx, models.ProductFields{Name: name},
			models.Attribution{CategoryID: tree.ID, SubcategoryID: sub}, nil, "", "")
		require.NoError(t, err)
		return p.ID
	}
	byID := mk("by id", digitalID)
	byPath := mk("by path", analogID)
	dropped := mk("dropped", controllersID)

	// Digital is renamed but keeps its id; Analog is resubmitted without an
	// id under the same path; Controllers disappears.
	renamedID := digitalID
	updated, err := s.UpdateCategory(ctx, tree.ID, models.CategoryInput{
		Name: "Pressure Instruments",
		Subcategories: []models.SubcategoryNode{
			{Name: "Gauges", Children: []models.SubcategoryNode{
				{ID: &renamedID, Name: "Digital Reference"},
				{Name: "Analog"},
			}},
			{Name: "Pumps"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "pressure-instruments", updated.Slug)
	assert.Equal(t, []string{"Gauges", "Gauges > Digital Reference", "Gauges > Analog", "Pumps"}, pathsOf(updated))

	get := func(id uint) *models.Product {
		p, err := s.GetProduct(ctx, id, false)
		require.NoError(t, err)
		return p
	}
	assert.Equal(t, "Gauges > Digital Reference", get(byID).SubcategoryPath)
	assert.Equal(t, "Gauges > Analog", get(byPath).SubcategoryPath)
	p := get(dropped)
	assert.Nil(t, p.SubcategoryID)
	assert.Equal(t, "", p.SubcategoryPath)
	assert.Equal(t, "Pressure Instruments", p.CategoryName)
}

func TestUpdateCategoryNotFound(t *testing.T) {
	s := New(testutil.OpenDB(t))
	_, err := s.UpdateCategory(context.Background(), 42, models.CategoryInput{Name: "X"})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDeleteCategoryDetachesProducts(t *testing.T) {
	db := testutil.OpenDB(t)
	s := New(db)
	ctx := context.Background()

	tree, err := s.CreateCategory(ctx, pressureInput())
	require.NoError(t, err)
	p, err := s.CreateProduct(ctx, models.ProductFields{Name: "Gauge"},
		models.Attribution{Category: "Pressure", SubcategoryPath: "Gauges>Digital"}, nil, "", "")
	require.NoError(t, err)

	require.NoError(t, s.DeleteCategory(ctx, tree.ID))

	var subs int64
	require.NoError(t, db.Model(&models.Subcategory{}).Count(&subs).Error)
	assert.Zero(t, subs)

	got, err := s.GetProduct(ctx, p.ID, false)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)
	assert.Nil(t, got.SubcategoryID)
	assert.Equal(t, "", got.CategoryName)

	assert.True(t, errors.Is(s.DeleteCategory(ctx, tree.ID), ErrNotFound))
}

func TestDeleteSubcategoryRemovesSubtree(t *testing.T) {
	s := New(testutil.OpenDB(t))
	ctx := context.Background()

	tree, err := s.CreateCategory(ctx, pressureInput())
	require.NoError(t, err)
	gaugesID := pathID(t, tree, "Gauges")

	p, err := s.CreateProduct(ctx, models.ProductFields{Name: "Gauge"},
		models.Attribution{CategoryID: tree.ID, SubcategoryID: pathID(t, tree, "Gauges > Analog")}, nil, "", "")
	require.NoError(t, err)

	removed, err := s.DeleteSubcategory(ctx, gaugesID)
	require.NoError(t, err)
	assert.Len(t, removed, 3)

	after, err := s.GetCategory(ctx, tree.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Controllers"}, pathsOf(after))

	got, err := s.GetProduct(ctx, p.ID, false)
	require.NoError(t, err)
	assert.Nil(t, got.SubcategoryID)
	assert.Equal(t, "Pressure", got.CategoryName)
}
