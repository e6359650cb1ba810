package catalog

import (
	"fmt"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/lupertojoele-max/cbk-sub000/pkg/models"
)

// SortKey selects a listing order. The set of keys is closed: values can only
// come from the package variables below or from ParseSortKey. The zero value
// orders like SortFeatured.
type SortKey struct {
	name string
}

var (
	SortFeatured  = SortKey{"featured"}
	SortName      = SortKey{"name"}
	SortPriceAsc  = SortKey{"price-asc"}
	SortPriceDesc = SortKey{"price-desc"}
)

// SortKeys lists every key in display order.
func SortKeys() []SortKey {
	return []SortKey{SortFeatured, SortName, SortPriceAsc, SortPriceDesc}
}

// ParseSortKey maps a query value to a key. The empty string yields
// SortFeatured.
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return SortFeatured, nil
	}
	for _, k := range SortKeys() {
		if k.name == s {
			return k, nil
		}
	}
	return SortKey{}, fmt.Errorf("sort %q: %w", s, ErrInvalidQuery)
}

func (k SortKey) String() string {
	if k.name == "" {
		return SortFeatured.name
	}
	return k.name
}

// MarshalText implements encoding.TextMarshaler.
func (k SortKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *SortKey) UnmarshalText(b []byte) error {
	parsed, err := ParseSortKey(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// newCollator returns an Italian collator. Collators keep scratch buffers and
// must not be shared between goroutines.
func newCollator() *collate.Collator {
	return collate.New(language.Italian)
}

type priced struct {
	product models.Product
	price   float64
	ok      bool
}

// Sort returns a stably sorted copy of products. Products whose price does not
// parse sort after every priced product for both price orders.
func Sort(products []models.Product, key SortKey) []models.Product {
	out := make([]models.Product, len(products))
	copy(out, products)

	switch key {
	case SortFeatured, SortKey{}:
		col := newCollator()
		sort.SliceStable(out, func(a, b int) bool {
			if out[a].Featured != out[b].Featured {
				return out[a].Featured
			}
			return col.CompareString(out[a].Name, out[b].Name) < 0
		})
	case SortName:
		col := newCollator()
		sort.SliceStable(out, func(a, b int) bool {
			return col.CompareString(out[a].Name, out[b].Name) < 0
		})
	case SortPriceAsc, SortPriceDesc:
		sortByPrice(out, key == SortPriceDesc)
	}
	return out
}

func sortByPrice(products []models.Product, desc bool) {
	entries := make([]priced, len(products))
	for i := range products {
		v, ok := products[i].PriceValue()
		entries[i] = priced{product: products[i], price: v, ok: ok}
	}

	sort.SliceStable(entries, func(a, b int) bool {
		ea, eb := entries[a], entries[b]
		if ea.ok != eb.ok {
			return ea.ok
		}
		if !ea.ok {
			return false
		}
		if desc {
			return ea.price > eb.price
		}
		return ea.price < eb.price
	})

	for i := range entries {
		products[i] = entries[i].product
	}
}
