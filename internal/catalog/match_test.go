package catalog

import (
	"errors"
	"testing"

	"github.com/lupertojoele-max/cbk-sub000/internal/testutil"
	"github.com/lupertojoele-max/cbk-sub000/pkg/models"
)

func TestRule_Matches(t *testing.T) {
	rule := Rule{
		Brands:       []string{"CRG"},
		NameKeywords: []string{"crg"},
		Keywords:     []string{"kz"},
	}

	tests := []struct {
		name    string
		product models.Product
		want    bool
	}{
		{"exact brand", testutil.NewProduct(testutil.WithName("Disco Freno"), testutil.WithBrand("CRG")), true},
		{"brand differs in case", testutil.NewProduct(testutil.WithName("Disco Freno"), testutil.WithBrand("crg")), false},
		{"name keyword ignores case", testutil.NewProduct(testutil.WithName("Pinza CRG NA3"), testutil.WithBrand("Varie")), true},
		{"keyword in description", testutil.NewProduct(testutil.WithName("Pinza"), testutil.WithDescription("per motori KZ")), true},
		{"keyword in brand", testutil.NewProduct(testutil.WithName("Pinza"), testutil.WithBrand("KZ Parts")), true},
		{"no criterion", testutil.NewProduct(testutil.WithName("Pastiglia Generica"), testutil.WithBrand("Varie")), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rule.Matches(&tt.product); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRule_EmptyMatchesEverything(t *testing.T) {
	p := testutil.NewProduct()
	if !(Rule{}).Matches(&p) {
		t.Error("empty rule should match")
	}
}

func TestRule_KeywordsOnlyWhenListed(t *testing.T) {
	rule := Rule{NameKeywords: []string{"casco"}}
	p := testutil.NewProduct(testutil.WithName("Tuta"), testutil.WithDescription("abbinabile al casco"))
	if rule.Matches(&p) {
		t.Error("name keywords must not look at the description")
	}
}

// The two-product scenario from the storefront: only the CRG disc belongs to
// the CRG subcategory.
func TestMatchesSubcategory_CRGScenario(t *testing.T) {
	products := []models.Product{
		testutil.NewProduct(testutil.WithName("Disco Freno CRG V11 KZ"), testutil.WithBrand("CRG"), testutil.WithCategory(models.CategoryFreniAccessori)),
		testutil.NewProduct(testutil.WithName("Pastiglia Generica"), testutil.WithBrand("Varie"), testutil.WithCategory(models.CategoryFreniAccessori)),
	}
	page := &Page{
		ID:            "ricambi-telaio",
		Categories:    []models.Category{models.CategoryFreniAccessori},
		Subcategories: []Subcategory{{Slug: "crg", Rule: Rule{Brands: []string{"CRG"}, NameKeywords: []string{"crg"}}}},
	}

	got := FilterSubcategory(products, Resolution{Page: page, Subcategory: &page.Subcategories[0]})
	if len(got) != 1 || got[0].Name != "Disco Freno CRG V11 KZ" {
		t.Errorf("got %v, want only the CRG disc", names(got))
	}
}

func TestMatchesSubcategory(t *testing.T) {
	page := &Page{
		ID:         "ricambi-telaio",
		Categories: []models.Category{models.CategoryFreniAccessori, models.CategoryTelai},
		Subcategories: []Subcategory{
			{Slug: "freni", Rule: Rule{NameKeywords: []string{"freno"}}},
			{Slug: "crg", Rule: Rule{Brands: []string{"CRG"}}},
			{Slug: "tutti"},
		},
	}
	freni, crg, tutti := &page.Subcategories[0], &page.Subcategories[1], &page.Subcategories[2]

	tests := []struct {
		name    string
		product models.Product
		sub     *Subcategory
		want    bool
	}{
		{
			name:    "category outside page",
			product: testutil.NewProduct(testutil.WithName("Pompa Freno"), testutil.WithCategory(models.CategoryMotoreRicambi)),
			sub:     freni,
			want:    false,
		},
		{
			name:    "inferred by rule",
			product: testutil.NewProduct(testutil.WithName("Pompa Freno"), testutil.WithCategory(models.CategoryFreniAccessori)),
			sub:     freni,
			want:    true,
		},
		{
			name:    "pre-assigned wins over rule",
			product: testutil.NewProduct(testutil.WithName("Tubo Treccia"), testutil.WithSubcategory("freni"), testutil.WithCategory(models.CategoryFreniAccessori)),
			sub:     freni,
			want:    true,
		},
		{
			name:    "pre-assigned elsewhere excludes rule match",
			product: testutil.NewProduct(testutil.WithName("Disco Freno"), testutil.WithBrand("CRG"), testutil.WithSubcategory("freni"), testutil.WithCategory(models.CategoryFreniAccessori)),
			sub:     crg,
			want:    false,
		},
		{
			name:    "empty rule ignores pre-assignment",
			product: testutil.NewProduct(testutil.WithSubcategory("freni"), testutil.WithCategory(models.CategoryTelai)),
			sub:     tutti,
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesSubcategory(&tt.product, page, tt.sub); got != tt.want {
				t.Errorf("MatchesSubcategory() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	rs, err := DefaultRules()
	if err != nil {
		t.Fatalf("DefaultRules: %v", err)
	}

	res, err := rs.Resolve("ricambi-telaio", "crg")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Page.ID != "ricambi-telaio" || res.Subcategory.Label != "Ricambi CRG" {
		t.Errorf("resolved %q/%q", res.Page.ID, res.Subcategory.Label)
	}

	for _, tc := range [][2]string{{"kart", "crg"}, {"motore", "crg"}, {"motore", ""}} {
		if _, err := rs.Resolve(tc[0], tc[1]); !errors.Is(err, ErrNotFound) {
			t.Errorf("Resolve(%q, %q) err = %v, want ErrNotFound", tc[0], tc[1], err)
		}
	}
}

func names(products []models.Product) []string {
	out := make([]string, len(products))
	for i := range products {
		out[i] = products[i].Name
	}
	return out
}
