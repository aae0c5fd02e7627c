package catalog

import (
	"strings"

	"github.com/01moynul/calibration-catalog/internal/models"
)

// Query is the catalog filter: active main category, active subcategory path
// and free-text search. Empty fields do not filter.
type Query struct {
	Main   string
	Sub    string
	Search string
}

// Normalized trims the fields and rewrites Sub in canonical path spacing.
func (q Query) Normalized() Query {
	return Query{
		Main:   strings.TrimSpace(q.Main),
		Sub:    NormalizePath(q.Sub),
		Search: strings.TrimSpace(q.Search),
	}
}

// Matches reports whether p passes every active filter of q.
// q is expected to be normalized; p must carry its resolved category name
// and subcategory path.
func Matches(p *models.Product, q Query) bool {
	if q.Main != "" && p.CategoryName != q.Main {
		return false
	}
	if q.Sub != "" && p.SubcategoryPath != q.Sub {
		return false
	}
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.ShortDescription), needle) {
			return false
		}
	}
	return true
}

// Filter returns the products matching q, preserving input order.
func Filter(products []models.Product, q Query) []models.Product {
	q = q.Normalized()
	out := make([]models.Product, 0, len(products))
	for i := range products {
		if Matches(&products[i], q) {
			out = append(out, products[i])
		}
	}
	return out
}
