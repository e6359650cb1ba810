package models

import "fmt"

// Category is the coarse, mandatory product partition. The set is closed:
// catalog documents and rule tables referencing any other value are rejected
// at load time.
type Category string

const (
	CategoryTelai           Category = "telai"
	CategoryMotoreRicambi   Category = "motore-ricambi"
	CategoryFreniAccessori  Category = "freni-accessori"
	CategoryRuotePneumatici Category = "ruote-pneumatici"
	CategoryCarburazione    Category = "carburazione"
	CategoryTrasmissione    Category = "trasmissione"
	CategoryElettronica     Category = "elettronica"
	CategoryAbbigliamento   Category = "abbigliamento"
	CategoryAttrezzatura    Category = "attrezzatura"
	CategoryLubrificanti    Category = "lubrificanti"
)

// CategoryLabel maps a Category to its Italian display label.
var CategoryLabel = map[Category]string{
	CategoryTelai:           "Telai",
	CategoryMotoreRicambi:   "Motore e Ricambi",
	CategoryFreniAccessori:  "Freni e Accessori",
	CategoryRuotePneumatici: "Ruote e Pneumatici",
	CategoryCarburazione:    "Carburazione e Alimentazione",
	CategoryTrasmissione:    "Trasmissione",
	CategoryElettronica:     "Elettronica e Strumentazione",
	CategoryAbbigliamento:   "Abbigliamento e Sicurezza",
	CategoryAttrezzatura:    "Attrezzatura e Officina",
	CategoryLubrificanti:    "Lubrificanti e Chimici",
}

// AllCategories returns every known category in display order.
func AllCategories() []Category {
	return []Category{
		CategoryTelai,
		CategoryMotoreRicambi,
		CategoryFreniAccessori,
		CategoryRuotePneumatici,
		CategoryCarburazione,
		CategoryTrasmissione,
		CategoryElettronica,
		CategoryAbbigliamento,
		CategoryAttrezzatura,
		CategoryLubrificanti,
	}
}

// Valid reports whether c belongs to the closed category set.
func (c Category) Valid() bool {
	_, ok := CategoryLabel[c]
	return ok
}

// Label returns the display label for c, or the raw value for unknown
// categories.
func (c Category) Label() string {
	if label, ok := CategoryLabel[c]; ok {
		return label
	}
	return string(c)
}

// ParseCategory converts s into a Category, rejecting unknown values.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}
