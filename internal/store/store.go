// Package store persists the catalog. Every mutation that touches more than
// one row runs inside a single transaction.
package store

import (
	"errors"

	"gorm.io/gorm"

	"github.com/01moynul/calibration-catalog/internal/catalog"
	"github.com/01moynul/calibration-catalog/internal/models"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrInvalidReference = errors.New("invalid category or subcategory reference")
	ErrConflict         = errors.New("record already exists")
)

// Store wraps the gorm pool.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// attribution resolves category names and subcategory paths for products.
type attribution struct {
	categories map[uint]string
	paths      map[uint]string
}

func loadAttribution(tx *gorm.DB) (*attribution, error) {
	var cats []models.Category
	if err := tx.Find(&cats).Error; err != nil {
		return nil, err
	}
	var subs []models.Subcategory
	if err := tx.Find(&subs).Error; err != nil {
		return nil, err
	}

	a := &attribution{
		categories: make(map[uint]string, len(cats)),
		// ids are global, so one forest over every category resolves any path
		paths: catalog.PathIndex(catalog.BuildForest(subs)),
	}
	for _, c := range cats {
		a.categories[c.ID] = c.Name
	}
	return a, nil
}

func (a *attribution) apply(p *models.Product) {
	p.CategoryName = ""
	p.SubcategoryPath = ""
	if p.CategoryID != nil {
		p.CategoryName = a.categories[*p.CategoryID]
	}
	if p.SubcategoryID != nil {
		p.SubcategoryPath = a.paths[*p.SubcategoryID]
	}
	if p.Images == nil {
		p.Images = []models.ProductImage{}
	}
	if p.Specifications == nil {
		p.Specifications = []models.Specification{}
	}
	if p.FeaturesBenefits == nil {
		p.FeaturesBenefits = []string{}
	}
	if p.Applications == nil {
		p.Applications = []string{}
	}
	if p.Certifications == nil {
		p.Certifications = []string{}
	}
}
