package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/01moynul/calibration-catalog/internal/catalog"
	"github.com/01moynul/calibration-catalog/internal/models"
)

// ProductFilter narrows ListProducts at the database level.
// Name/path filtering is done afterwards with catalog.Filter.
type ProductFilter struct {
	CategoryID    uint
	SubcategoryID uint
	FeaturedOnly  bool
}

// ProductUpdate carries the changes of an admin product edit.
type ProductUpdate struct {
	Fields      models.ProductFields
	Attribution models.Attribution
	KeepImages  []string
	NewImages   []string

	// nil keeps the current document; a pointer to "" removes it.
	CatalogPdfURL   *string
	DatasheetPdfURL *string
}

func productsQuery(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	})
}

// ListProducts returns products ordered by rank, then id, decorated with
// their category name and subcategory path.
func (s *Store) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	db := s.db.WithContext(ctx)

	q := productsQuery(db).Order("sort_rank ASC, id ASC")
	if f.CategoryID != 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.SubcategoryID != 0 {
		q = q.Where("subcategory_id = ?", f.SubcategoryID)
	}
	if f.FeaturedOnly {
		q = q.Where("home_featured = ?", true)
	}

	var products []models.Product
	if err := q.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	attr, err := loadAttribution(db)
	if err != nil {
		return nil, fmt.Errorf("load attribution: %w", err)
	}
	for i := range products {
		attr.apply(&products[i])
	}
	return products, nil
}

// GetProduct loads one product. When countView is set the view counter is
// incremented first.
func (s *Store) GetProduct(ctx context.Context, id uint, countView bool) (*models.Product, error) {
	db := s.db.WithContext(ctx)
	if countView {
		res := db.Model(&models.Product{}).Where("id = ?", id).
			UpdateColumn("views", gorm.Expr("views + ?", 1))
		if res.Error != nil {
			return nil, fmt.Errorf("count view: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return getProduct(db, id)
}

func getProduct(tx *gorm.DB, id uint) (*models.Product, error) {
	var p models.Product
	if err := productsQuery(tx).First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	attr, err := loadAttribution(tx)
	if err != nil {
		return nil, fmt.Errorf("load attribution: %w", err)
	}
	attr.apply(&p)
	return &p, nil
}

// nextRank is one past the highest rank in the category, or 0 when it has no
// products. exclude skips the product being moved.
func nextRank(tx *gorm.DB, categoryID, exclude uint) (int, error) {
	var maxRank sql.NullInt64
	q := tx.Model(&models.Product{}).Where("category_id = ?", categoryID)
	if exclude != 0 {
		q = q.Where("id <> ?", exclude)
	}
	if err := q.Select("MAX(sort_rank)").Row().Scan(&maxRank); err != nil {
		return 0, fmt.Errorf("next rank: %w", err)
	}
	if !maxRank.Valid {
		return 0, nil
	}
	return int(maxRank.Int64) + 1, nil
}

// resolveAttribution turns a category/subcategory reference into ids.
// A category is required; a subcategory is optional but must belong to it.
func resolveAttribution(tx *gorm.DB, ref models.Attribution) (uint, *uint, error) {
	var cat models.Category
	switch {
	case ref.CategoryID != 0:
		if err := tx.First(&cat, ref.CategoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, nil, fmt.Errorf("%w: category %d does not exist", ErrInvalidReference, ref.CategoryID)
			}
			return 0, nil, err
		}
	case ref.Category != "":
		if err := tx.Where("name = ?", ref.Category).First(&cat).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, nil, fmt.Errorf("%w: category %q does not exist", ErrInvalidReference, ref.Category)
			}
			return 0, nil, err
		}
	default:
		return 0, nil, fmt.Errorf("%w: category is required", ErrInvalidReference)
	}

	switch {
	case ref.SubcategoryID != 0:
		var sub models.Subcategory
		if err := tx.First(&sub, ref.SubcategoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, nil, fmt.Errorf("%w: subcategory %d does not exist", ErrInvalidReference, ref.SubcategoryID)
			}
			return 0, nil, err
		}
		if sub.CategoryID != cat.ID {
			return 0, nil, fmt.Errorf("%w: subcategory %d is not in category %q", ErrInvalidReference, sub.ID, cat.Name)
		}
		return cat.ID, &sub.ID, nil
	case ref.SubcategoryPath != "":
		var subs []models.Subcategory
		if err := tx.Where("category_id = ?", cat.ID).Find(&subs).Error; err != nil {
			return 0, nil, err
		}
		id, ok := catalog.Resolve(catalog.BuildForest(subs), ref.SubcategoryPath)
		if !ok {
			return 0, nil, fmt.Errorf("%w: subcategory %q is not in category %q", ErrInvalidReference, ref.SubcategoryPath, cat.Name)
		}
		return cat.ID, &id, nil
	}
	return cat.ID, nil, nil
}

// CreateProduct inserts p with its images. When fields carry no rank the
// product goes last in its category.
func (s *Store) CreateProduct(ctx context.Context, fields models.ProductFields, ref models.Attribution, imageURLs []string, catalogPdf, datasheetPdf string) (*models.Product, error) {
	var out *models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		catID, subID, err := resolveAttribution(tx, ref)
		if err != nil {
			return err
		}

		p := models.Product{CategoryID: &catID, SubcategoryID: subID}
		fields.Apply(&p)
		if fields.Rank == nil {
			if p.Rank, err = nextRank(tx, catID, 0); err != nil {
				return err
			}
		}
		if catalogPdf != "" {
			p.CatalogPdfURL = &catalogPdf
		}
		if datasheetPdf != "" {
			p.DatasheetPdfURL = &datasheetPdf
		}
		for _, u := range imageURLs {
			p.Images = append(p.Images, models.ProductImage{URL: u})
		}

		if err := tx.Create(&p).Error; err != nil {
			return fmt.Errorf("create product: %w", err)
		}

		out, err = getProduct(tx, p.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateProduct replaces the product's fields and diffs its images in one
// transaction. It returns the URLs of files that are no longer referenced.
func (s *Store) UpdateProduct(ctx context.Context, id uint, upd ProductUpdate) (*models.Product, []string, error) {
	var (
		out     *models.Product
		removed []string
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Load the current row with its images.
		var p models.Product
		if err := productsQuery(tx).First(&p, id).Error; err != nil {
			return notFound(err)
		}

		// 2. Resolve the new attribution and copy the scalar fields. A product
		// moved to another category without a rank goes last there.
		catID, subID, err := resolveAttribution(tx, upd.Attribution)
		if err != nil {
			return err
		}
		moved := p.CategoryID == nil || *p.CategoryID != catID
		p.CategoryID = &catID
		p.SubcategoryID = subID
		upd.Fields.Apply(&p)
		if moved && upd.Fields.Rank == nil {
			if p.Rank, err = nextRank(tx, catID, p.ID); err != nil {
				return err
			}
		}

		var dropped []string
		p.CatalogPdfURL, dropped = replaceDocument(p.CatalogPdfURL, upd.CatalogPdfURL, dropped)
		p.DatasheetPdfURL, dropped = replaceDocument(p.DatasheetPdfURL, upd.DatasheetPdfURL, dropped)

		if err := tx.Omit(clause.Associations, "views").Save(&p).Error; err != nil {
			return fmt.Errorf("update product: %w", err)
		}

		// 3. Drop images the client did not keep, then append the new uploads.
		keep := make(map[string]bool, len(upd.KeepImages))
		for _, u := range upd.KeepImages {
			keep[u] = true
		}
		for _, img := range p.Images {
			if keep[img.URL] {
				continue
			}
			if err := tx.Delete(&models.ProductImage{}, img.ID).Error; err != nil {
				return fmt.Errorf("delete image %d: %w", img.ID, err)
			}
			dropped = append(dropped, img.URL)
		}
		for _, u := range upd.NewImages {
			if err := tx.Create(&models.ProductImage{ProductID: p.ID, URL: u}).Error; err != nil {
				return fmt.Errorf("add image: %w", err)
			}
		}

		out, err = getProduct(tx, p.ID)
		removed = dropped
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return out, removed, nil
}

func replaceDocument(current, next *string, dropped []string) (*string, []string) {
	if next == nil {
		return current, dropped
	}
	if current != nil && *current != "" && *current != *next {
		dropped = append(dropped, *current)
	}
	if *next == "" {
		return nil, dropped
	}
	v := *next
	return &v, dropped
}

// DeleteProduct removes the product and its images and returns every file
// URL it referenced.
func (s *Store) DeleteProduct(ctx context.Context, id uint) ([]string, error) {
	var files []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := productsQuery(tx).First(&p, id).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error; err != nil {
			return fmt.Errorf("delete images: %w", err)
		}
		if err := tx.Delete(&p).Error; err != nil {
			return fmt.Errorf("delete product: %w", err)
		}

		files = p.ImageURLs()
		if p.CatalogPdfURL != nil {
			files = append(files, *p.CatalogPdfURL)
		}
		if p.DatasheetPdfURL != nil {
			files = append(files, *p.DatasheetPdfURL)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// UpdateRanks applies validated rank entries one by one. Entries for
// unknown products or failed writes are reported as skipped.
func (s *Store) UpdateRanks(ctx context.Context, updates []catalog.RankUpdate) ([]catalog.RankUpdate, []catalog.SkippedRank) {
	db := s.db.WithContext(ctx)
	applied := []catalog.RankUpdate{}
	skipped := []catalog.SkippedRank{}

	for _, u := range updates {
		entry, _ := json.Marshal(u)

		var count int64
		if err := db.Model(&models.Product{}).Where("id = ?", u.ID).Count(&count).Error; err != nil {
			log.Printf("Rank update: lookup product %d failed: %v", u.ID, err)
			skipped = append(skipped, catalog.SkippedRank{Index: u.Index, Entry: entry, Reason: catalog.ReasonUpdateFailed})
			continue
		}
		if count == 0 {
			skipped = append(skipped, catalog.SkippedRank{Index: u.Index, Entry: entry, Reason: catalog.ReasonNotFound})
			continue
		}
		if err := db.Model(&models.Product{}).Where("id = ?", u.ID).
			UpdateColumn("sort_rank", u.Rank).Error; err != nil {
			log.Printf("Rank update: product %d failed: %v", u.ID, err)
			skipped = append(skipped, catalog.SkippedRank{Index: u.Index, Entry: entry, Reason: catalog.ReasonUpdateFailed})
			continue
		}
		applied = append(applied, u)
	}
	return applied, skipped
}
