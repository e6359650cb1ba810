// Package catalog provides the filter engine that narrows, sorts, paginates
// and groups the product catalog for the storefront pages.
package catalog

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/lupertojoele-max/cbk-sub000/pkg/models"
)

// Source supplies the product collection. Implementations return a copy the
// engine may reorder freely.
type Source interface {
	Entries() ([]models.Product, error)
}

// Engine runs queries against a product source and a rule table.
type Engine struct {
	src     Source
	rules   *RuleSet
	logger  *zap.Logger
	metrics *Metrics
}

// NewEngine creates a new filter engine. metrics may be nil.
func NewEngine(src Source, rules *RuleSet, logger *zap.Logger, metrics *Metrics) *Engine {
	return &Engine{src: src, rules: rules, logger: logger, metrics: metrics}
}

// Rules returns the rule table the engine classifies with.
func (e *Engine) Rules() *RuleSet {
	return e.rules
}

// Products returns the full collection in catalog order.
func (e *Engine) Products() ([]models.Product, error) {
	products, err := e.src.Entries()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	e.metrics.setProducts(len(products))
	return products, nil
}

// Query returns one page of the listing described by q.
func (e *Engine) Query(q Query) (Result, error) {
	products, err := e.Products()
	if err != nil {
		e.metrics.observe("list", "error", 0)
		return Result{}, err
	}

	res, err := Run(products, e.rules, q)
	if err != nil {
		e.metrics.observe("list", outcome(err), 0)
		return Result{}, err
	}
	e.metrics.observe("list", "ok", res.Pagination.TotalCount)
	e.logger.Debug("catalog query",
		zap.String("page", q.Page),
		zap.String("subcategory", q.Subcategory),
		zap.String("sort", q.Sort.String()),
		zap.Int("matched", res.Pagination.TotalCount),
	)
	return res, nil
}

// Sections returns the listing described by q grouped into type-group
// sections.
func (e *Engine) Sections(q Query) (SectionsResult, error) {
	products, err := e.Products()
	if err != nil {
		e.metrics.observe("sections", "error", 0)
		return SectionsResult{}, err
	}

	res, err := RunSections(products, e.rules, q)
	if err != nil {
		e.metrics.observe("sections", outcome(err), 0)
		return SectionsResult{}, err
	}
	e.metrics.observe("sections", "ok", res.TotalCount)
	return res, nil
}

// Product looks a product up by slug.
func (e *Engine) Product(slug string) (models.Product, error) {
	products, err := e.Products()
	if err != nil {
		return models.Product{}, err
	}
	for i := range products {
		if products[i].Slug == slug {
			e.metrics.observe("product", "ok", 1)
			return products[i], nil
		}
	}
	e.metrics.observe("product", "not_found", 0)
	return models.Product{}, fmt.Errorf("product %q: %w", slug, ErrNotFound)
}

// Facets summarises the whole collection.
func (e *Engine) Facets() (Facets, error) {
	products, err := e.Products()
	if err != nil {
		return Facets{}, err
	}
	return ComputeFacets(products), nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidQuery):
		return "invalid"
	default:
		return "error"
	}
}
