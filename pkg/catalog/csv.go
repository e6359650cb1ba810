package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/lupertojoele-max/cbk-sub000/pkg/models"
)

// csvHeaders returns the CSV column headers.
func csvHeaders() []string {
	return []string{
		"id", "name", "slug", "category", "subcategory", "brand",
		"price", "original_price", "description", "in_stock", "featured",
		"image", "source_url",
	}
}

// csvColumnCount is the number of columns in the CSV format.
const csvColumnCount = 13

// productToCSVRow converts a product to a CSV row (matching csvHeaders order).
func productToCSVRow(p models.Product) []string {
	return []string{
		p.ID,
		p.Name,
		p.Slug,
		string(p.Category),
		p.Subcategory,
		p.Brand,
		p.Price,
		p.OriginalPrice,
		p.Description,
		strconv.FormatBool(p.InStock),
		strconv.FormatBool(p.Featured),
		p.Image,
		p.SourceURL,
	}
}

// csvRowToProduct parses a CSV row into a Product. A blank slug is derived
// from the name.
func csvRowToProduct(row []string) (models.Product, error) {
	if len(row) < csvColumnCount {
		return models.Product{}, fmt.Errorf("expected %d columns, got %d", csvColumnCount, len(row))
	}
	r := row[:csvColumnCount]

	p := models.Product{
		ID:            r[0],
		Name:          r[1],
		Slug:          r[2],
		Subcategory:   r[4],
		Brand:         r[5],
		Price:         r[6],
		OriginalPrice: r[7],
		Description:   r[8],
		Image:         r[11],
		SourceURL:     r[12],
	}

	c, err := models.ParseCategory(r[3])
	if err != nil {
		return models.Product{}, err
	}
	p.Category = c

	if p.InStock, err = parseCSVBool(r[9]); err != nil {
		return models.Product{}, fmt.Errorf("invalid in_stock: %w", err)
	}
	if p.Featured, err = parseCSVBool(r[10]); err != nil {
		return models.Product{}, fmt.Errorf("invalid featured: %w", err)
	}

	if p.Slug == "" {
		p.Slug = models.Slugify(p.Name)
	}
	return p, nil
}

func parseCSVBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}

// WriteCSV writes products with a header row.
func WriteCSV(w io.Writer, products []models.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeaders()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i := range products {
		if err := cw.Write(productToCSVRow(products[i])); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a CSV export produced by WriteCSV and validates the result
// like Decode does.
func ReadCSV(r io.Reader) ([]models.Product, []Issue, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("catalog: csv: missing header")
		}
		return nil, nil, fmt.Errorf("catalog: csv header: %w", err)
	}

	var products []models.Product
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("catalog: csv line %d: %w", line, err)
		}
		p, err := csvRowToProduct(row)
		if err != nil {
			return nil, nil, fmt.Errorf("catalog: csv line %d: %w", line, err)
		}
		products = append(products, p)
	}

	issues := Validate(products)
	if err := Fatal(issues); err != nil {
		return nil, nil, fmt.Errorf("catalog: invalid document: %w", err)
	}
	return products, issues, nil
}
