package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/01moynul/calibration-catalog/internal/catalog"
	"github.com/01moynul/calibration-catalog/internal/models"
)

// CategoryTree is a category with its full subcategory forest and the
// flattened path list used by the catalog sidebar.
type CategoryTree struct {
	models.Category
	Subcategories []*catalog.Node     `json:"subcategories"`
	Paths         []catalog.PathEntry `json:"paths"`
}

func newCategoryTree(c models.Category, subs []models.Subcategory) CategoryTree {
	forest := catalog.BuildForest(subs)
	return CategoryTree{Category: c, Subcategories: forest, Paths: catalog.Paths(forest)}
}

// ListCategories returns every category with its tree, oldest first.
func (s *Store) ListCategories(ctx context.Context) ([]CategoryTree, error) {
	db := s.db.WithContext(ctx)

	var cats []models.Category
	if err := db.Order("id ASC").Find(&cats).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	var subs []models.Subcategory
	if err := db.Order("position ASC, id ASC").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}

	byCategory := make(map[uint][]models.Subcategory, len(cats))
	for _, sc := range subs {
		byCategory[sc.CategoryID] = append(byCategory[sc.CategoryID], sc)
	}

	out := make([]CategoryTree, 0, len(cats))
	for _, c := range cats {
		out = append(out, newCategoryTree(c, byCategory[c.ID]))
	}
	return out, nil
}

// GetCategory returns one category with its tree.
func (s *Store) GetCategory(ctx context.Context, id uint) (*CategoryTree, error) {
	return getCategory(s.db.WithContext(ctx), id)
}

func getCategory(tx *gorm.DB, id uint) (*CategoryTree, error) {
	var cat models.Category
	if err := tx.First(&cat, id).Error; err != nil {
		return nil, notFound(err)
	}
	var subs []models.Subcategory
	if err := tx.Where("category_id = ?", id).Order("position ASC, id ASC").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("load subcategories: %w", err)
	}
	tree := newCategoryTree(cat, subs)
	return &tree, nil
}

// CreateCategory inserts a category and its whole subcategory tree.
func (s *Store) CreateCategory(ctx context.Context, in models.CategoryInput) (*CategoryTree, error) {
	if err := catalog.ValidateTree(in.Subcategories); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)

	var out *CategoryTree
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUniqueCategory(tx, name, 0); err != nil {
			return err
		}

		cat := models.Category{Name: name, Slug: slug.Make(name)}
		if err := tx.Create(&cat).Error; err != nil {
			return fmt.Errorf("create category: %w", err)
		}
		if _, err := insertNodes(tx, cat.ID, in.Subcategories); err != nil {
			return err
		}

		tree, err := getCategory(tx, cat.ID)
		out = tree
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateCategory renames the category and replaces its whole subcategory tree.
//
// Products attached to a replaced node are re-linked: first to the submitted
// node carrying the old node's id, then to the node with the same path,
// otherwise their subcategory is cleared.
func (s *Store) UpdateCategory(ctx context.Context, id uint, in models.CategoryInput) (*CategoryTree, error) {
	if err := catalog.ValidateTree(in.Subcategories); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)

	var out *CategoryTree
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Load the category and check the new name.
		var cat models.Category
		if err := tx.First(&cat, id).Error; err != nil {
			return notFound(err)
		}
		if err := ensureUniqueCategory(tx, name, id); err != nil {
			return err
		}
		cat.Name = name
		cat.Slug = slug.Make(name)
		if err := tx.Save(&cat).Error; err != nil {
			return fmt.Errorf("update category: %w", err)
		}

		// 2. Remember the old tree and which products hang off it.
		var old []models.Subcategory
		if err := tx.Where("category_id = ?", id).Find(&old).Error; err != nil {
			return fmt.Errorf("load subcategories: %w", err)
		}
		oldPaths := catalog.PathIndex(catalog.BuildForest(old))

		var attached []models.Product
		if err := tx.Select("id", "subcategory_id").
			Where("category_id = ? AND subcategory_id IS NOT NULL", id).
			Find(&attached).Error; err != nil {
			return fmt.Errorf("load attached products: %w", err)
		}

		// 3. Replace the tree.
		if err := tx.Where("category_id = ?", id).Delete(&models.Subcategory{}).Error; err != nil {
			return fmt.Errorf("delete subcategories: %w", err)
		}
		ins, err := insertNodes(tx, id, in.Subcategories)
		if err != nil {
			return err
		}

		// 4. Re-link products.
		for _, p := range attached {
			oldID := *p.SubcategoryID
			var target *uint
			if newID, ok := ins.byOldID[oldID]; ok {
				if _, owned := oldPaths[oldID]; owned {
					target = &newID
				}
			}
			if target == nil {
				if newID, ok := ins.byPath[strings.ToLower(oldPaths[oldID])]; ok {
					target = &newID
				}
			}
			if err := tx.Model(&models.Product{}).Where("id = ?", p.ID).
				UpdateColumn("subcategory_id", target).Error; err != nil {
				return fmt.Errorf("relink product %d: %w", p.ID, err)
			}
		}

		tree, err := getCategory(tx, id)
		out = tree
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteCategory removes the category and its tree. Its products stay in the
// catalog with no category.
func (s *Store) DeleteCategory(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cat models.Category
		if err := tx.First(&cat, id).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Model(&models.Product{}).Where("category_id = ?", id).
			Updates(map[string]any{"category_id": nil, "subcategory_id": nil}).Error; err != nil {
			return fmt.Errorf("detach products: %w", err)
		}
		if err := tx.Where("category_id = ?", id).Delete(&models.Subcategory{}).Error; err != nil {
			return fmt.Errorf("delete subcategories: %w", err)
		}
		if err := tx.Delete(&cat).Error; err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		return nil
	})
}

// DeleteSubcategory removes one node with its whole subtree. Products that
// pointed into the subtree keep their category and lose their subcategory.
func (s *Store) DeleteSubcategory(ctx context.Context, id uint) ([]uint, error) {
	var removed []uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var node models.Subcategory
		if err := tx.First(&node, id).Error; err != nil {
			return notFound(err)
		}
		var siblings []models.Subcategory
		if err := tx.Where("category_id = ?", node.CategoryID).Find(&siblings).Error; err != nil {
			return fmt.Errorf("load subcategories: %w", err)
		}

		removed = subtreeIDs(siblings, id)
		if err := tx.Model(&models.Product{}).Where("subcategory_id IN ?", removed).
			UpdateColumn("subcategory_id", nil).Error; err != nil {
			return fmt.Errorf("detach products: %w", err)
		}
		if err := tx.Where("id IN ?", removed).Delete(&models.Subcategory{}).Error; err != nil {
			return fmt.Errorf("delete subtree: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func subtreeIDs(rows []models.Subcategory, root uint) []uint {
	children := make(map[uint][]uint, len(rows))
	for _, r := range rows {
		if r.ParentID != nil {
			children[*r.ParentID] = append(children[*r.ParentID], r.ID)
		}
	}
	out := []uint{}
	seen := map[uint]bool{}
	queue := []uint{root}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
		queue = append(queue, children[id]...)
	}
	return out
}

func ensureUniqueCategory(tx *gorm.DB, name string, exceptID uint) error {
	var count int64
	q := tx.Model(&models.Category{}).Where("(name = ? OR slug = ?)", name, slug.Make(name))
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return fmt.Errorf("check category name: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: category %q", ErrConflict, name)
	}
	return nil
}

type insertedTree struct {
	byOldID map[uint]uint   // submitted id -> new row id
	byPath  map[string]uint // lower-cased path -> new row id
}

func insertNodes(tx *gorm.DB, categoryID uint, nodes []models.SubcategoryNode) (*insertedTree, error) {
	ins := &insertedTree{byOldID: map[uint]uint{}, byPath: map[string]uint{}}
	if err := ins.insert(tx, categoryID, nil, nil, nodes); err != nil {
		return nil, err
	}
	return ins, nil
}

func (ins *insertedTree) insert(tx *gorm.DB, categoryID uint, parentID *uint, prefix []string, nodes []models.SubcategoryNode) error {
	for i, n := range nodes {
		row := models.Subcategory{
			Name:       strings.TrimSpace(n.Name),
			CategoryID: categoryID,
			ParentID:   parentID,
			Position:   i,
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("create subcategory %q: %w", row.Name, err)
		}

		names := append(append([]string{}, prefix...), row.Name)
		ins.byPath[strings.ToLower(catalog.JoinPath(names...))] = row.ID
		if n.ID != nil {
			ins.byOldID[*n.ID] = row.ID
		}

		id := row.ID
		if err := ins.insert(tx, categoryID, &id, names, n.Children); err != nil {
			return err
		}
	}
	return nil
}
