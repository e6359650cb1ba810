package scraper

import (
	"strconv"
	"strings"
)

// NormalizePrice turns a shop price label such as "€ 1.234,50" or
// "89,00 €" into a dot-decimal string with two places ("1234.50"). Labels
// without digits ("Su richiesta") are returned trimmed and unchanged.
func NormalizePrice(label string) string {
	label = strings.TrimSpace(label)
	num := numericRun(label)
	if num == "" {
		return label
	}

	dots, commas := strings.Count(num, "."), strings.Count(num, ",")
	var decimal byte
	switch {
	case dots > 0 && commas > 0:
		decimal = num[max(strings.LastIndexByte(num, '.'), strings.LastIndexByte(num, ','))]
	case dots == 1 && len(num)-strings.IndexByte(num, '.')-1 != 3:
		decimal = '.'
	case commas == 1 && len(num)-strings.IndexByte(num, ',')-1 != 3:
		decimal = ','
	}

	var b strings.Builder
	for i := 0; i < len(num); i++ {
		switch c := num[i]; {
		case c == decimal:
			b.WriteByte('.')
		case c >= '0' && c <= '9':
			b.WriteByte(c)
		}
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return label
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// numericRun returns the first run of digits and separators that starts with
// a digit, without trailing separators.
func numericRun(s string) string {
	start := strings.IndexAny(s, "0123456789")
	if start < 0 {
		return ""
	}
	end := start
	for end < len(s) && strings.IndexByte("0123456789.,", s[end]) >= 0 {
		end++
	}
	return strings.TrimRight(s[start:end], ".,")
}
