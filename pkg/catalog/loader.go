// Package catalog loads the product catalog document ({"products": [...]})
// either from the embedded sample or from a file on disk.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/lupertojoele-max/cbk-sub000/pkg/models"
)

//go:embed products.json
var catalogRawData []byte

// catalogFile is the top-level structure of a catalog document.
type catalogFile struct {
	Products []models.Product `json:"products"`
}

// Catalog provides lazy-loaded, read-only access to a product collection.
type Catalog struct {
	once     sync.Once
	source   func() ([]byte, error)
	products []models.Product
	warnings []Issue
	err      error
}

// NewCatalog creates a Catalog that parses the embedded sample document on
// first access.
func NewCatalog() *Catalog {
	return &Catalog{source: func() ([]byte, error) { return catalogRawData, nil }}
}

// Open creates a Catalog backed by the document at path. The file is read on
// first access.
func Open(path string) *Catalog {
	return &Catalog{source: func() ([]byte, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("catalog: read %q: %w", path, err)
		}
		return data, nil
	}}
}

// Entries returns a copy of all products.
func (c *Catalog) Entries() ([]models.Product, error) {
	c.once.Do(c.load)
	if c.err != nil {
		return nil, c.err
	}
	cp := make([]models.Product, len(c.products))
	copy(cp, c.products)
	return cp, nil
}

// Warnings returns the non-fatal issues found while loading.
func (c *Catalog) Warnings() []Issue {
	c.once.Do(c.load)
	return c.warnings
}

// load reads and validates the catalog document.
func (c *Catalog) load() {
	data, err := c.source()
	if err != nil {
		c.err = err
		return
	}
	c.products, c.warnings, c.err = Decode(bytes.NewReader(data))
}

// Decode parses a catalog document from r and validates it. Fatal issues are
// returned as a single joined error; warnings are returned alongside the
// products.
func Decode(r io.Reader) ([]models.Product, []Issue, error) {
	var f catalogFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, nil, fmt.Errorf("catalog: parse json: %w", err)
	}
	issues := Validate(f.Products)
	if err := Fatal(issues); err != nil {
		return nil, nil, fmt.Errorf("catalog: invalid document: %w", err)
	}
	return f.Products, issues, nil
}

// Encode writes products as a catalog document.
func Encode(w io.Writer, products []models.Product) error {
	if products == nil {
		products = []models.Product{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(catalogFile{Products: products})
}
