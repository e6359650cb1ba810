package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/lupertojoele-max/cbk-sub000/pkg/models"
)

// DefaultOtherLabel names the trailing section for products no type group claims.
const DefaultOtherLabel = "Altri Ricambi"

const rulesSchemaURL = "https://cbk.local/schemas/catalog/rules.schema.json"

//go:embed rules.yaml
var defaultRulesData []byte

//go:embed rules.schema.json
var rulesSchemaData []byte

var (
	rulesSchemaOnce sync.Once
	rulesSchema     *jsonschema.Schema
	rulesSchemaErr  error
)

// Rule classifies a product into a subcategory. Brands are compared exactly
// against the product brand, NameKeywords are substrings of the lowercased
// name and Keywords are substrings of name, brand and description together.
type Rule struct {
	Brands       []string `yaml:"brands,omitempty" json:"brands,omitempty"`
	NameKeywords []string `yaml:"nameKeywords,omitempty" json:"nameKeywords,omitempty"`
	Keywords     []string `yaml:"keywords,omitempty" json:"keywords,omitempty"`
}

// Empty reports whether the rule has no criteria at all.
func (r Rule) Empty() bool {
	return len(r.Brands) == 0 && len(r.NameKeywords) == 0 && len(r.Keywords) == 0
}

// Subcategory is a named slice of a page.
type Subcategory struct {
	Slug  string `yaml:"slug" json:"slug"`
	Label string `yaml:"label" json:"label"`
	Rule  `yaml:",inline"`
}

// TypeGroup is a labelled predicate over a lowercased product name.
type TypeGroup struct {
	Label    string   `yaml:"label" json:"label"`
	Contains []string `yaml:"contains,omitempty" json:"contains,omitempty"`
	Expr     string   `yaml:"expr,omitempty" json:"expr,omitempty"`

	pred func(lowerName string) bool
}

// NewTypeGroup builds a group from a Go predicate.
func NewTypeGroup(label string, pred func(lowerName string) bool) TypeGroup {
	return TypeGroup{Label: label, pred: pred}
}

// ContainsGroup builds a group matching names that contain any of the terms.
func ContainsGroup(label string, terms ...string) TypeGroup {
	g := TypeGroup{Label: label, Contains: terms}
	g.pred = containsAny(terms)
	return g
}

// Match reports whether the lowercased name belongs to the group.
func (g TypeGroup) Match(lowerName string) bool {
	if g.pred == nil {
		return containsAny(g.Contains)(lowerName)
	}
	return g.pred(lowerName)
}

func containsAny(terms []string) func(string) bool {
	lowered := make([]string, len(terms))
	for i, t := range terms {
		lowered[i] = strings.ToLower(t)
	}
	return func(name string) bool {
		for _, t := range lowered {
			if strings.Contains(name, t) {
				return true
			}
		}
		return false
	}
}

// Page is a storefront page backed by one or more categories.
type Page struct {
	ID            string            `yaml:"id" json:"id"`
	Label         string            `yaml:"label" json:"label"`
	Categories    []models.Category `yaml:"categories" json:"categories"`
	Subcategories []Subcategory     `yaml:"subcategories" json:"subcategories"`
	TypeGroups    []TypeGroup       `yaml:"typeGroups,omitempty" json:"typeGroups,omitempty"`
	OtherLabel    string            `yaml:"otherLabel,omitempty" json:"otherLabel,omitempty"`
}

// HasCategory reports whether c is one of the page categories.
func (p *Page) HasCategory(c models.Category) bool {
	for _, pc := range p.Categories {
		if pc == c {
			return true
		}
	}
	return false
}

// Subcategory returns the subcategory with the given slug.
func (p *Page) Subcategory(slug string) (*Subcategory, bool) {
	for i := range p.Subcategories {
		if p.Subcategories[i].Slug == slug {
			return &p.Subcategories[i], true
		}
	}
	return nil, false
}

// Other returns the label of the trailing section.
func (p *Page) Other() string {
	if p.OtherLabel == "" {
		return DefaultOtherLabel
	}
	return p.OtherLabel
}

// RuleSet is the ordered table of pages.
type RuleSet struct {
	pages []Page
}

type rulesFile struct {
	Pages []Page `yaml:"pages"`
}

// NewRuleSet builds a rule set from pages constructed in code. It applies the
// same semantic checks as ParseRules. The caller's pages are left untouched.
func NewRuleSet(pages ...Page) (*RuleSet, error) {
	env, err := newExprEnv()
	if err != nil {
		return nil, err
	}
	rs := &RuleSet{pages: clonePages(pages)}
	if err := rs.compile(env); err != nil {
		return nil, err
	}
	return rs, nil
}

// DefaultRules parses the embedded rule table.
func DefaultRules() (*RuleSet, error) {
	return ParseRules(defaultRulesData)
}

// LoadRulesFile parses the rule table at path.
func LoadRulesFile(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rules: read %q: %w", path, err)
	}
	return ParseRules(data)
}

// ParseRules validates a YAML rule table against the rules schema, then
// decodes it and compiles every type-group expression.
func ParseRules(data []byte) (*RuleSet, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("rules: parse yaml: %w", err)
	}
	if err := validateRulesDocument(doc); err != nil {
		return nil, err
	}

	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("rules: decode: %w", err)
	}
	return NewRuleSet(f.Pages...)
}

func validateRulesDocument(doc any) error {
	rulesSchemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(rulesSchemaURL, bytes.NewReader(rulesSchemaData)); err != nil {
			rulesSchemaErr = fmt.Errorf("rules schema load failed: %w", err)
			return
		}
		rulesSchema, rulesSchemaErr = c.Compile(rulesSchemaURL)
	})
	if rulesSchemaErr != nil {
		return rulesSchemaErr
	}

	// The validator works on JSON values, so round-trip the YAML tree.
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("rules: convert to json: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("rules: convert to json: %w", err)
	}
	if err := rulesSchema.Validate(v); err != nil {
		return fmt.Errorf("rules: schema validation failed: %w", err)
	}
	return nil
}

func newExprEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(cel.Variable("name", cel.StringType))
	if err != nil {
		return nil, fmt.Errorf("rules: cel env: %w", err)
	}
	return env, nil
}

// compile checks cross-field invariants and binds group predicates.
func (rs *RuleSet) compile(env *cel.Env) error {
	var errs []error
	pageIDs := make(map[string]struct{}, len(rs.pages))

	for pi := range rs.pages {
		page := &rs.pages[pi]
		if page.ID == "" {
			errs = append(errs, fmt.Errorf("page #%d: missing id", pi))
		}
		if _, dup := pageIDs[page.ID]; dup {
			errs = append(errs, fmt.Errorf("page %q: duplicate id", page.ID))
		}
		pageIDs[page.ID] = struct{}{}

		if len(page.Categories) == 0 {
			errs = append(errs, fmt.Errorf("page %q: no categories", page.ID))
		}
		for _, c := range page.Categories {
			if !c.Valid() {
				errs = append(errs, fmt.Errorf("page %q: unknown category %q", page.ID, c))
			}
		}

		slugs := make(map[string]struct{}, len(page.Subcategories))
		for si := range page.Subcategories {
			sub := &page.Subcategories[si]
			sub.NameKeywords = lowerAll(sub.NameKeywords)
			sub.Keywords = lowerAll(sub.Keywords)
			if sub.Slug == "" {
				errs = append(errs, fmt.Errorf("page %q: subcategory without slug", page.ID))
			}
			if _, dup := slugs[sub.Slug]; dup {
				errs = append(errs, fmt.Errorf("page %q: duplicate subcategory %q", page.ID, sub.Slug))
			}
			slugs[sub.Slug] = struct{}{}
		}

		for gi := range page.TypeGroups {
			g := &page.TypeGroups[gi]
			switch {
			case g.pred != nil:
			case g.Expr != "" && len(g.Contains) > 0:
				errs = append(errs, fmt.Errorf("page %q: group %q: contains and expr are exclusive", page.ID, g.Label))
			case g.Expr != "":
				pred, err := compileExpr(env, g.Expr)
				if err != nil {
					errs = append(errs, fmt.Errorf("page %q: group %q: %w", page.ID, g.Label, err))
					continue
				}
				g.pred = pred
			case len(g.Contains) > 0:
				g.pred = containsAny(g.Contains)
			default:
				errs = append(errs, fmt.Errorf("page %q: group %q: no predicate", page.ID, g.Label))
			}
		}
	}
	return errors.Join(errs...)
}

func compileExpr(env *cel.Env, expr string) (func(string) bool, error) {
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile: %w", issues.Err())
	}
	if ast.OutputType().String() != cel.BoolType.String() {
		return nil, fmt.Errorf("compile: expression yields %s, want bool", ast.OutputType())
	}
	prg, err := env.Program(ast, cel.CostLimit(10000))
	if err != nil {
		return nil, fmt.Errorf("program: %w", err)
	}
	return func(name string) bool {
		out, _, err := prg.Eval(map[string]any{"name": name})
		if err != nil {
			return false
		}
		b, ok := out.Value().(bool)
		return ok && b
	}, nil
}

func lowerAll(terms []string) []string {
	if terms == nil {
		return nil
	}
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = strings.ToLower(t)
	}
	return out
}

func clonePages(pages []Page) []Page {
	out := make([]Page, len(pages))
	for i, p := range pages {
		p.Categories = slices.Clone(p.Categories)
		p.Subcategories = slices.Clone(p.Subcategories)
		p.TypeGroups = slices.Clone(p.TypeGroups)
		out[i] = p
	}
	return out
}

// Pages returns the pages in table order.
func (rs *RuleSet) Pages() []Page {
	return rs.pages
}

// Page returns the page with the given id.
func (rs *RuleSet) Page(id string) (*Page, bool) {
	for i := range rs.pages {
		if rs.pages[i].ID == id {
			return &rs.pages[i], true
		}
	}
	return nil, false
}
