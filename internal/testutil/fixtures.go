package testutil

import (
	"errors"

	"github.com/google/uuid"

	"github.com/lupertojoele-max/cbk-sub000/pkg/models"
)

// NewProduct returns a Product with sensible defaults, suitable for test
// fixtures. Unless WithSlug is given, the slug is derived from the final name
// plus a short id suffix so fixtures never collide.
func NewProduct(opts ...func(*models.Product)) models.Product {
	p := models.Product{
		ID:          uuid.New().String(),
		Name:        "Ricambio Test",
		Category:    models.CategoryTelai,
		Brand:       "Varie",
		Price:       "10.00",
		Description: "articolo di prova",
		InStock:     true,
	}
	for _, opt := range opts {
		opt(&p)
	}
	if p.Slug == "" {
		p.Slug = models.Slugify(p.Name) + "-" + p.ID[:8]
	}
	return p
}

// WithID sets the product id.
func WithID(id string) func(*models.Product) {
	return func(p *models.Product) { p.ID = id }
}

// WithName sets the product name.
func WithName(name string) func(*models.Product) {
	return func(p *models.Product) { p.Name = name }
}

// WithSlug sets the product slug.
func WithSlug(slug string) func(*models.Product) {
	return func(p *models.Product) { p.Slug = slug }
}

// WithBrand sets the product brand.
func WithBrand(brand string) func(*models.Product) {
	return func(p *models.Product) { p.Brand = brand }
}

// WithCategory sets the product category.
func WithCategory(c models.Category) func(*models.Product) {
	return func(p *models.Product) { p.Category = c }
}

// WithSubcategory sets the pre-assigned subcategory.
func WithSubcategory(slug string) func(*models.Product) {
	return func(p *models.Product) { p.Subcategory = slug }
}

// WithPrice sets the price and original price. Pass "" for no original price.
func WithPrice(price, original string) func(*models.Product) {
	return func(p *models.Product) {
		p.Price = price
		p.OriginalPrice = original
	}
}

// WithDescription sets the description.
func WithDescription(d string) func(*models.Product) {
	return func(p *models.Product) { p.Description = d }
}

// WithFeatured marks the product as featured.
func WithFeatured() func(*models.Product) {
	return func(p *models.Product) { p.Featured = true }
}

// Source is an in-memory product source. Entries returns a fresh copy.
type Source struct {
	Products []models.Product
	Err      error
}

// NewSource returns a Source over products.
func NewSource(products ...models.Product) *Source {
	return &Source{Products: products}
}

// FailingSource returns a Source whose Entries always fails.
func FailingSource() *Source {
	return &Source{Err: errors.New("catalog unavailable")}
}

// Entries implements the catalog engine's product source.
func (s *Source) Entries() ([]models.Product, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	cp := make([]models.Product, len(s.Products))
	copy(cp, s.Products)
	return cp, nil
}
