package catalog

import (
	"strings"

	"github.com/lupertojoele-max/cbk-sub000/pkg/models"
)

// Section is a labelled run of products in a grouped listing.
type Section struct {
	Label    string           `json:"label"`
	Products []models.Product `json:"products"`
}

// Bucket partitions products into sections. Each group, in order, claims the
// still unassigned products whose lowercased name it matches. What remains
// goes into a trailing section labelled otherLabel. Empty sections are
// omitted and products keep their input order within a section.
func Bucket(products []models.Product, groups []TypeGroup, otherLabel string) []Section {
	if otherLabel == "" {
		otherLabel = DefaultOtherLabel
	}

	names := make([]string, len(products))
	for i := range products {
		names[i] = strings.ToLower(products[i].Name)
	}

	remaining := make([]int, len(products))
	for i := range remaining {
		remaining[i] = i
	}

	sections := make([]Section, 0, len(groups)+1)
	for _, g := range groups {
		var matched []models.Product
		rest := make([]int, 0, len(remaining))
		for _, idx := range remaining {
			if g.Match(names[idx]) {
				matched = append(matched, products[idx])
			} else {
				rest = append(rest, idx)
			}
		}
		remaining = rest
		if len(matched) > 0 {
			sections = append(sections, Section{Label: g.Label, Products: matched})
		}
	}

	if len(remaining) > 0 {
		other := make([]models.Product, len(remaining))
		for i, idx := range remaining {
			other[i] = products[idx]
		}
		sections = append(sections, Section{Label: otherLabel, Products: other})
	}
	return sections
}
