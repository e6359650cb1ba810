package catalog

import (
	"sort"

	"github.com/lupertojoele-max/cbk-sub000/pkg/models"
)

// CategoryCount is the number of products in one category.
type CategoryCount struct {
	Category models.Category `json:"category"`
	Label    string          `json:"label"`
	Count    int             `json:"count"`
}

// BrandCount is the number of products carrying one brand value.
type BrandCount struct {
	Brand string `json:"brand"`
	Count int    `json:"count"`
}

// Facets summarises a product set for filter controls.
type Facets struct {
	Categories []CategoryCount `json:"categories"`
	Brands     []BrandCount    `json:"brands"`
	OnDiscount int             `json:"onDiscount"`
	InStock    int             `json:"inStock"`
	Total      int             `json:"total"`
}

// ComputeFacets counts products per category (in category order, zero counts
// included) and per distinct non-empty brand (in collation order).
func ComputeFacets(products []models.Product) Facets {
	byCategory := make(map[models.Category]int)
	byBrand := make(map[string]int)
	f := Facets{Total: len(products)}

	for i := range products {
		p := &products[i]
		byCategory[p.Category]++
		if p.Brand != "" {
			byBrand[p.Brand]++
		}
		if p.OnDiscount() {
			f.OnDiscount++
		}
		if p.InStock {
			f.InStock++
		}
	}

	for _, c := range models.AllCategories() {
		f.Categories = append(f.Categories, CategoryCount{Category: c, Label: c.Label(), Count: byCategory[c]})
	}

	f.Brands = make([]BrandCount, 0, len(byBrand))
	for b, n := range byBrand {
		f.Brands = append(f.Brands, BrandCount{Brand: b, Count: n})
	}
	col := newCollator()
	sort.Slice(f.Brands, func(a, b int) bool {
		if c := col.CompareString(f.Brands[a].Brand, f.Brands[b].Brand); c != 0 {
			return c < 0
		}
		return f.Brands[a].Brand < f.Brands[b].Brand
	})
	return f
}
