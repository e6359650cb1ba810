package catalog

import (
	"fmt"

	"github.com/lupertojoele-max/cbk-sub000/pkg/models"
)

// Query describes one listing request. Zero values mean "no constraint",
// except PageNumber and PageSize: a PageNumber below 1 means the first page
// and a non-positive PageSize means PageSize.
type Query struct {
	Page        string
	Subcategory string
	Category    models.Category
	Brand       string
	Search      string
	Sort        SortKey
	PageNumber  int
	PageSize    int
}

// Pagination is the listing metadata handed to the presentation layer.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalCount  int   `json:"totalCount"`
	PageSize    int   `json:"pageSize"`
	Window      []int `json:"window"`
}

// Result is one page of a filtered, sorted listing.
type Result struct {
	Items       []models.Product
	Pagination  Pagination
	Page        *Page
	Subcategory *Subcategory
}

// SectionsResult is a filtered, sorted listing split into type-group sections.
type SectionsResult struct {
	Sections    []Section
	TotalCount  int
	Page        *Page
	Subcategory *Subcategory
}

// Select applies the filters of q in order: page and subcategory, category,
// brand, free-text search, then sort. The input is never modified.
func Select(products []models.Product, rules *RuleSet, q Query) ([]models.Product, Resolution, error) {
	var res Resolution
	if q.Category != "" && !q.Category.Valid() {
		return nil, res, fmt.Errorf("category %q: %w", q.Category, ErrInvalidQuery)
	}

	selected := products
	switch {
	case q.Page != "" && q.Subcategory != "":
		var err error
		res, err = rules.Resolve(q.Page, q.Subcategory)
		if err != nil {
			return nil, res, err
		}
		selected = FilterSubcategory(selected, res)
	case q.Page != "":
		page, ok := rules.Page(q.Page)
		if !ok {
			return nil, res, fmt.Errorf("page %q: %w", q.Page, ErrNotFound)
		}
		res.Page = page
		selected = filterPage(selected, page)
	case q.Subcategory != "":
		return nil, res, fmt.Errorf("subcategory %q without page: %w", q.Subcategory, ErrInvalidQuery)
	}

	selected = FilterCategory(selected, q.Category)
	selected = FilterBrand(selected, q.Brand)
	selected = Search(selected, q.Search)
	return Sort(selected, q.Sort), res, nil
}

func filterPage(products []models.Product, page *Page) []models.Product {
	out := make([]models.Product, 0, len(products))
	for i := range products {
		if page.HasCategory(products[i].Category) {
			out = append(out, products[i])
		}
	}
	return out
}

// Run selects products for q and returns the requested page.
func Run(products []models.Product, rules *RuleSet, q Query) (Result, error) {
	selected, res, err := Select(products, rules, q)
	if err != nil {
		return Result{}, err
	}

	size := q.PageSize
	if size <= 0 {
		size = PageSize
	}
	current := q.PageNumber
	if current < 1 {
		current = 1
	}

	items, total := Paginate(selected, size, current)
	return Result{
		Items: items,
		Pagination: Pagination{
			CurrentPage: current,
			TotalPages:  total,
			TotalCount:  len(selected),
			PageSize:    size,
			Window:      PageWindow(current, total, WindowSize),
		},
		Page:        res.Page,
		Subcategory: res.Subcategory,
	}, nil
}

// RunSections selects products for q and buckets them by the page type
// groups. A page is required.
func RunSections(products []models.Product, rules *RuleSet, q Query) (SectionsResult, error) {
	if q.Page == "" {
		return SectionsResult{}, fmt.Errorf("sections need a page: %w", ErrInvalidQuery)
	}
	selected, res, err := Select(products, rules, q)
	if err != nil {
		return SectionsResult{}, err
	}
	return SectionsResult{
		Sections:    Bucket(selected, res.Page.TypeGroups, res.Page.Other()),
		TotalCount:  len(selected),
		Page:        res.Page,
		Subcategory: res.Subcategory,
	}, nil
}
