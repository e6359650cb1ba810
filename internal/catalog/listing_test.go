package catalog

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lupertojoele-max/cbk-sub000/internal/testutil"
	pkgcatalog "github.com/lupertojoele-max/cbk-sub000/pkg/catalog"
	"github.com/lupertojoele-max/cbk-sub000/pkg/models"
)

func TestSearch(t *testing.T) {
	products := []models.Product{
		testutil.NewProduct(testutil.WithName("Olio Motul Kart"), testutil.WithBrand("Motul")),
		testutil.NewProduct(testutil.WithName("Spray Catena"), testutil.WithBrand("MOTUL")),
		testutil.NewProduct(testutil.WithName("Grasso"), testutil.WithDescription("compatibile con motul C4")),
		testutil.NewProduct(testutil.WithName("Cavalletto"), testutil.WithBrand("KG")),
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"motul", []string{"Olio Motul Kart", "Spray Catena", "Grasso"}},
		{"  CATENA ", []string{"Spray Catena"}},
		{"kg", []string{"Cavalletto"}},
		{"casco", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, names(Search(products, tt.query)))
		})
	}
}

func TestSearch_EmptyQueryReturnsInput(t *testing.T) {
	products := []models.Product{testutil.NewProduct(), testutil.NewProduct(), testutil.NewProduct()}

	for _, q := range []string{"", "   ", "\t"} {
		got := Search(products, q)
		require.Len(t, got, len(products))
		assert.Same(t, &products[0], &got[0], "query %q must return the same backing array", q)
		assert.Equal(t, products, got)
	}
}

func TestFilterBrand_Exact(t *testing.T) {
	products := []models.Product{
		testutil.NewProduct(testutil.WithBrand("CRG")),
		testutil.NewProduct(testutil.WithBrand("crg")),
		testutil.NewProduct(testutil.WithBrand("")),
	}
	assert.Len(t, FilterBrand(products, "CRG"), 1)
	assert.Len(t, FilterBrand(products, ""), 3)
}

func TestParseSortKey(t *testing.T) {
	tests := []struct {
		in      string
		want    SortKey
		wantErr bool
	}{
		{"", SortFeatured, false},
		{"featured", SortFeatured, false},
		{"name", SortName, false},
		{"price-asc", SortPriceAsc, false},
		{"price-desc", SortPriceDesc, false},
		{"PRICE-ASC", SortKey{}, true},
		{"rating", SortKey{}, true},
	}
	for _, tt := range tests {
		got, err := ParseSortKey(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSortKey(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSortKey(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	for _, k := range SortKeys() {
		round, err := ParseSortKey(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, round)
	}
	assert.Equal(t, "featured", SortKey{}.String())
}

func TestSort_Featured(t *testing.T) {
	products := []models.Product{
		testutil.NewProduct(testutil.WithName("Pignone")),
		testutil.NewProduct(testutil.WithName("Telaio"), testutil.WithFeatured()),
		testutil.NewProduct(testutil.WithName("assale")),
		testutil.NewProduct(testutil.WithName("Cilindro"), testutil.WithFeatured()),
		testutil.NewProduct(testutil.WithName("Ègida")),
	}

	got := names(Sort(products, SortFeatured))
	want := []string{"Cilindro", "Telaio", "assale", "Ègida", "Pignone"}
	assert.Equal(t, want, got)

	assert.Equal(t, got, names(Sort(products, SortKey{})), "zero key orders like featured")
	assert.Equal(t, "Pignone", products[0].Name, "input must not be reordered")
}

func TestSort_NameCollation(t *testing.T) {
	products := []models.Product{
		testutil.NewProduct(testutil.WithName("zeta")),
		testutil.NewProduct(testutil.WithName("Àncora")),
		testutil.NewProduct(testutil.WithName("Beta")),
		testutil.NewProduct(testutil.WithName("alfa")),
	}
	assert.Equal(t, []string{"alfa", "Àncora", "Beta", "zeta"}, names(Sort(products, SortName)))
}

func TestSort_Price(t *testing.T) {
	products := []models.Product{
		testutil.NewProduct(testutil.WithName("a"), testutil.WithPrice("su richiesta", "")),
		testutil.NewProduct(testutil.WithName("b"), testutil.WithPrice("12,50", "")),
		testutil.NewProduct(testutil.WithName("c"), testutil.WithPrice("100.00", "")),
		testutil.NewProduct(testutil.WithName("d"), testutil.WithPrice("", "")),
		testutil.NewProduct(testutil.WithName("e"), testutil.WithPrice("12.5", "")),
		testutil.NewProduct(testutil.WithName("f"), testutil.WithPrice("€ 9.90", "")),
	}

	// Unparsable prices trail in both directions and keep their order.
	assert.Equal(t, []string{"f", "b", "e", "c", "a", "d"}, names(Sort(products, SortPriceAsc)))
	assert.Equal(t, []string{"c", "b", "e", "f", "a", "d"}, names(Sort(products, SortPriceDesc)))
}

func TestSort_Idempotent(t *testing.T) {
	products, err := pkgcatalog.NewCatalog().Entries()
	require.NoError(t, err)

	for _, k := range SortKeys() {
		once := Sort(products, k)
		twice := Sort(once, k)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("sorting by %s twice changed the order", k)
		}
	}
}

func TestPaginate(t *testing.T) {
	products := make([]models.Product, 50)
	for i := range products {
		products[i] = testutil.NewProduct(testutil.WithName(fmt.Sprintf("p%02d", i)))
	}

	tests := []struct {
		page      int
		wantLen   int
		wantFirst string
	}{
		{1, 24, "p00"},
		{2, 24, "p24"},
		{3, 2, "p48"},
		{4, 0, ""},
		{0, 0, ""},
		{-1, 0, ""},
	}
	for _, tt := range tests {
		items, total := Paginate(products, PageSize, tt.page)
		if total != 3 {
			t.Errorf("page %d: totalPages = %d, want 3", tt.page, total)
		}
		if len(items) != tt.wantLen {
			t.Errorf("page %d: len = %d, want %d", tt.page, len(items), tt.wantLen)
			continue
		}
		if tt.wantLen > 0 && items[0].Name != tt.wantFirst {
			t.Errorf("page %d: first = %q, want %q", tt.page, items[0].Name, tt.wantFirst)
		}
		if items == nil {
			t.Errorf("page %d: got nil slice", tt.page)
		}
	}
}

func TestPaginate_EmptyHasOnePage(t *testing.T) {
	items, total := Paginate(nil, PageSize, 1)
	assert.Empty(t, items)
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, TotalPages(0, PageSize))
	assert.Equal(t, 2, TotalPages(25, 24))
	assert.Equal(t, 1, TotalPages(24, 24))
}

func TestPageWindow(t *testing.T) {
	tests := []struct {
		current, total int
		want           []int
	}{
		{1, 1, []int{1}},
		{2, 3, []int{1, 2, 3}},
		{1, 10, []int{1, 2, 3, 4, 5}},
		{2, 10, []int{1, 2, 3, 4, 5}},
		{3, 10, []int{1, 2, 3, 4, 5}},
		{4, 10, []int{2, 3, 4, 5, 6}},
		{8, 10, []int{6, 7, 8, 9, 10}},
		{10, 10, []int{6, 7, 8, 9, 10}},
		{42, 10, []int{6, 7, 8, 9, 10}},
		{0, 0, []int{1}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PageWindow(tt.current, tt.total, WindowSize), "PageWindow(%d, %d)", tt.current, tt.total)
	}
}

func TestBucket(t *testing.T) {
	products := []models.Product{
		testutil.NewProduct(testutil.WithName("Kit Pistone Rotax")),
		testutil.NewProduct(testutil.WithName("Pistone TM KZ10C")),
		testutil.NewProduct(testutil.WithName("Cilindro IAME")),
		testutil.NewProduct(testutil.WithName("Frizione Centrifuga")),
		testutil.NewProduct(testutil.WithName("Guarnizione Base Cilindro")),
	}
	groups := []TypeGroup{
		ContainsGroup("Cilindri", "cilindro"),
		NewTypeGroup("Pistoni", func(n string) bool { return strings.Contains(n, "pistone") && !strings.Contains(n, "kit") }),
		ContainsGroup("Kit", "kit", "guarnizion"),
		ContainsGroup("Scarico", "marmitta"),
	}

	sections := Bucket(products, groups, "")

	require.Len(t, sections, 4)
	assert.Equal(t, "Cilindri", sections[0].Label)
	assert.Equal(t, []string{"Cilindro IAME", "Guarnizione Base Cilindro"}, names(sections[0].Products))
	assert.Equal(t, []string{"Pistone TM KZ10C"}, names(sections[1].Products))
	assert.Equal(t, []string{"Kit Pistone Rotax"}, names(sections[2].Products))
	assert.Equal(t, DefaultOtherLabel, sections[3].Label, "empty Scarico group is omitted")
	assert.Equal(t, []string{"Frizione Centrifuga"}, names(sections[3].Products))
}

func TestBucket_NoLeftovers(t *testing.T) {
	products := []models.Product{testutil.NewProduct(testutil.WithName("Casco"))}
	sections := Bucket(products, []TypeGroup{ContainsGroup("Caschi", "casco")}, "Altro")
	require.Len(t, sections, 1)
	assert.Equal(t, "Caschi", sections[0].Label)

	assert.Empty(t, Bucket(nil, []TypeGroup{ContainsGroup("Caschi", "casco")}, "Altro"))
}
