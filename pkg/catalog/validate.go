package catalog

import (
	"errors"
	"fmt"

	"github.com/lupertojoele-max/cbk-sub000/pkg/models"
)

// Issue describes a single problem found in a catalog document.
type Issue struct {
	ProductID string `json:"product_id"`
	Field     string `json:"field"`
	Message   string `json:"message"`
	Fatal     bool   `json:"fatal"`
}

func (i Issue) Error() string {
	return fmt.Sprintf("product %q: %s: %s", i.ProductID, i.Field, i.Message)
}

// Validate checks the collection invariants. Duplicate or missing ids and
// slugs, and unknown categories, are fatal. Unparsable prices and original prices
// that do not exceed the price are reported as warnings.
func Validate(products []models.Product) []Issue {
	var issues []Issue
	ids := make(map[string]struct{}, len(products))
	slugs := make(map[string]struct{}, len(products))

	for i := range products {
		p := &products[i]

		if p.ID == "" {
			issues = append(issues, Issue{ProductID: fmt.Sprintf("#%d", i), Field: "id", Message: "missing", Fatal: true})
		} else if _, dup := ids[p.ID]; dup {
			issues = append(issues, Issue{ProductID: p.ID, Field: "id", Message: "duplicate", Fatal: true})
		}
		ids[p.ID] = struct{}{}

		if p.Slug == "" {
			issues = append(issues, Issue{ProductID: p.ID, Field: "slug", Message: "missing", Fatal: true})
		} else if _, dup := slugs[p.Slug]; dup {
			issues = append(issues, Issue{ProductID: p.ID, Field: "slug", Message: "duplicate " + p.Slug, Fatal: true})
		}
		slugs[p.Slug] = struct{}{}

		if !p.Category.Valid() {
			issues = append(issues, Issue{ProductID: p.ID, Field: "category", Message: fmt.Sprintf("unknown category %q", p.Category), Fatal: true})
		}

		if _, ok := p.PriceValue(); !ok {
			issues = append(issues, Issue{ProductID: p.ID, Field: "price", Message: fmt.Sprintf("not a non-negative decimal: %q", p.Price)})
		}
		if p.OriginalPrice != "" && !p.OnDiscount() {
			issues = append(issues, Issue{ProductID: p.ID, Field: "originalPrice", Message: fmt.Sprintf("%q is not a genuine reduction from %q", p.OriginalPrice, p.Price)})
		}
	}
	return issues
}

// Fatal joins the fatal issues into a single error, or returns nil.
func Fatal(issues []Issue) error {
	var errs []error
	for _, i := range issues {
		if i.Fatal {
			errs = append(errs, i)
		}
	}
	return errors.Join(errs...)
}
