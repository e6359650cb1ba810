package catalog

import "github.com/lupertojoele-max/cbk-sub000/pkg/models"

const (
	// PageSize is the number of products per listing page.
	PageSize = 24
	// WindowSize is the number of page buttons shown around the current page.
	WindowSize = 5
)

// TotalPages returns ceil(count/pageSize), at least 1.
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 {
		pageSize = PageSize
	}
	total := (count + pageSize - 1) / pageSize
	if total < 1 {
		return 1
	}
	return total
}

// Paginate returns the items of page (1-based) and the page count. A page
// outside 1..totalPages yields an empty slice, not an error.
func Paginate(products []models.Product, pageSize, page int) ([]models.Product, int) {
	if pageSize <= 0 {
		pageSize = PageSize
	}
	total := TotalPages(len(products), pageSize)
	if page < 1 || page > total || len(products) == 0 {
		return []models.Product{}, total
	}

	start := (page - 1) * pageSize
	end := min(start+pageSize, len(products))
	return products[start:end:end], total
}

// PageWindow returns up to width consecutive page numbers centred on current
// and clamped to 1..total. A current page out of range is clamped first.
func PageWindow(current, total, width int) []int {
	if total < 1 {
		total = 1
	}
	if width <= 0 {
		width = WindowSize
	}
	current = max(1, min(current, total))

	start := current - width/2
	end := start + width - 1
	if start < 1 {
		start, end = 1, width
	}
	if end > total {
		end = total
		start = max(1, end-width+1)
	}

	window := make([]int, 0, end-start+1)
	for n := start; n <= end; n++ {
		window = append(window, n)
	}
	return window
}
