package catalog

import (
	"strings"

	"github.com/lupertojoele-max/cbk-sub000/pkg/models"
)

// Search returns the products whose name, description or brand contains
// query, ignoring case. A blank query returns products itself.
func Search(products []models.Product, query string) []models.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return products
	}

	out := make([]models.Product, 0, len(products))
	for i := range products {
		p := &products[i]
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q) ||
			strings.Contains(strings.ToLower(p.Brand), q) {
			out = append(out, *p)
		}
	}
	return out
}

// FilterCategory keeps the products of category c. An empty c keeps all.
func FilterCategory(products []models.Product, c models.Category) []models.Product {
	if c == "" {
		return products
	}
	out := make([]models.Product, 0, len(products))
	for i := range products {
		if products[i].Category == c {
			out = append(out, products[i])
		}
	}
	return out
}

// FilterBrand keeps the products whose brand equals brand exactly. An empty
// brand keeps all.
func FilterBrand(products []models.Product, brand string) []models.Product {
	if brand == "" {
		return products
	}
	out := make([]models.Product, 0, len(products))
	for i := range products {
		if products[i].Brand == brand {
			out = append(out, products[i])
		}
	}
	return out
}
