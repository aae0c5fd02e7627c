package ai

import (
	"context"

	"github.com/01moynul/calibration-catalog/internal/catalog"
	"github.com/01moynul/calibration-catalog/internal/store"
)

// ProductHit is what the model sees of a matching product.
type ProductHit struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory,omitempty"`
	Summary     string `json:"summary,omitempty"`
}

// StoreLookup searches the catalog the same way the public product list does
// and returns at most limit hits.
func StoreLookup(s *store.Store, limit int) CatalogLookup {
	return func(ctx context.Context, query string) (any, error) {
		products, err := s.ListProducts(ctx, store.ProductFilter{})
		if err != nil {
			return nil, err
		}
		matches := catalog.Filter(products, catalog.Query{Search: query})

		hits := []ProductHit{}
		for i := range matches {
			if len(hits) == limit {
				break
			}
			p := &matches[i]
			hits = append(hits, ProductHit{
				ID:          p.ID,
				Name:        p.Name,
				Category:    p.CategoryName,
				Subcategory: p.SubcategoryPath,
				Summary:     p.ShortDescription,
			})
		}
		return hits, nil
	}
}
