package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lupertojoele-max/cbk-sub000/pkg/models"
)

var (
	// ErrNotFound is returned for unknown pages, subcategories and products.
	ErrNotFound = errors.New("not found")
	// ErrInvalidQuery is returned for query parameters outside their domain.
	ErrInvalidQuery = errors.New("invalid query")
)

// Matches reports whether p satisfies the rule. Criteria are tried in order:
// exact brand, then name keyword, then keyword over name, brand and
// description. An empty rule matches everything.
func (r Rule) Matches(p *models.Product) bool {
	if r.Empty() {
		return true
	}
	for _, b := range r.Brands {
		if p.Brand == b {
			return true
		}
	}

	name := strings.ToLower(p.Name)
	for _, kw := range r.NameKeywords {
		if strings.Contains(name, strings.ToLower(kw)) {
			return true
		}
	}

	if len(r.Keywords) == 0 {
		return false
	}
	text := strings.ToLower(p.Name + " " + p.Brand + " " + p.Description)
	for _, kw := range r.Keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// MatchesSubcategory reports whether p belongs to sub on page. The category
// must be one of the page categories. A pre-assigned subcategory decides
// membership unless sub has an empty rule, in which case every product of
// the page qualifies.
func MatchesSubcategory(p *models.Product, page *Page, sub *Subcategory) bool {
	if !page.HasCategory(p.Category) {
		return false
	}
	if sub.Empty() {
		return true
	}
	if p.Subcategory != "" {
		return p.Subcategory == sub.Slug
	}
	return sub.Matches(p)
}

// Resolution is a page and subcategory pair looked up from a rule set.
type Resolution struct {
	Page        *Page
	Subcategory *Subcategory
}

// Resolve looks up a page and one of its subcategories.
func (rs *RuleSet) Resolve(pageID, slug string) (Resolution, error) {
	page, ok := rs.Page(pageID)
	if !ok {
		return Resolution{}, fmt.Errorf("page %q: %w", pageID, ErrNotFound)
	}
	sub, ok := page.Subcategory(slug)
	if !ok {
		return Resolution{}, fmt.Errorf("subcategory %q on page %q: %w", slug, pageID, ErrNotFound)
	}
	return Resolution{Page: page, Subcategory: sub}, nil
}

// Matches reports whether p belongs to the resolved subcategory.
func (r Resolution) Matches(p *models.Product) bool {
	return MatchesSubcategory(p, r.Page, r.Subcategory)
}

// FilterSubcategory returns the products belonging to the resolution, in
// input order.
func FilterSubcategory(products []models.Product, r Resolution) []models.Product {
	out := make([]models.Product, 0, len(products))
	for i := range products {
		if r.Matches(&products[i]) {
			out = append(out, products[i])
		}
	}
	return out
}
