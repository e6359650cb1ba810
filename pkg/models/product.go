package models

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Product is a single catalog record. Records are supplied externally and
// treated as read-only by every consumer in this module.
type Product struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Slug          string   `json:"slug"`
	Category      Category `json:"category"`
	Subcategory   string   `json:"subcategory,omitempty"`
	Brand         string   `json:"brand"`
	Price         string   `json:"price"`
	OriginalPrice string   `json:"originalPrice,omitempty"`
	Description   string   `json:"description"`
	InStock       bool     `json:"inStock"`
	Featured      bool     `json:"featured,omitempty"`
	Image         string   `json:"image,omitempty"`
	SourceURL     string   `json:"sourceUrl,omitempty"`
}

// ParsePrice parses a plain decimal price string such as "12.50", "12,50" or
// "€ 1250.00". Only digits with at most one decimal separator are accepted:
// signs, exponents, hex floats and trailing text ("12.50 EUR") report false.
func ParsePrice(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "€")
	s = strings.TrimSuffix(s, "€")
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", ".")
	if !isDecimal(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func isDecimal(s string) bool {
	digits, dots := 0, 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

// PriceValue returns the parsed price.
func (p Product) PriceValue() (float64, bool) {
	return ParsePrice(p.Price)
}

// OnDiscount reports whether the product carries a genuine price reduction:
// both prices parse and the original price is strictly greater.
func (p Product) OnDiscount() bool {
	price, ok := ParsePrice(p.Price)
	if !ok {
		return false
	}
	original, ok := ParsePrice(p.OriginalPrice)
	if !ok {
		return false
	}
	return original > price
}

// DiscountPercent returns the rounded discount percentage, or 0 when the
// product is not on discount.
func (p Product) DiscountPercent() int {
	if !p.OnDiscount() {
		return 0
	}
	price, _ := ParsePrice(p.Price)
	original, _ := ParsePrice(p.OriginalPrice)
	return int(math.Round((original - price) / original * 100))
}

// Slugify derives a URL-safe identifier from a product name:
// "Disco Freno CRG V11 KZ" becomes "disco-freno-crg-v11-kz".
func Slugify(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	b.Grow(len(folded))
	dash := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
