package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/lupertojoele-max/cbk-sub000/internal/server"
	pkgcatalog "github.com/lupertojoele-max/cbk-sub000/pkg/catalog"
	"github.com/lupertojoele-max/cbk-sub000/pkg/models"
)

// ProductView is a product as served to clients, with derived pricing flags.
type ProductView struct {
	models.Product
	CategoryLabel   string `json:"categoryLabel"`
	OnDiscount      bool   `json:"onDiscount"`
	DiscountPercent int    `json:"discountPercent,omitempty"`
}

// NewProductView derives the client view of p.
func NewProductView(p models.Product) ProductView {
	return ProductView{
		Product:         p,
		CategoryLabel:   p.Category.Label(),
		OnDiscount:      p.OnDiscount(),
		DiscountPercent: p.DiscountPercent(),
	}
}

func productViews(products []models.Product) []ProductView {
	views := make([]ProductView, len(products))
	for i := range products {
		views[i] = NewProductView(products[i])
	}
	return views
}

// PageSummary identifies the page a listing was resolved against.
type PageSummary struct {
	ID         string            `json:"id"`
	Label      string            `json:"label"`
	Categories []models.Category `json:"categories"`
}

// SubcategorySummary identifies a subcategory.
type SubcategorySummary struct {
	Slug  string `json:"slug"`
	Label string `json:"label"`
}

// ListResponse is the response for the paginated listing endpoints.
type ListResponse struct {
	Items       []ProductView       `json:"items"`
	Pagination  Pagination          `json:"pagination"`
	Page        *PageSummary        `json:"page,omitempty"`
	Subcategory *SubcategorySummary `json:"subcategory,omitempty"`
}

// SectionView is one type-group section of a grouped listing.
type SectionView struct {
	Label string        `json:"label"`
	Count int           `json:"count"`
	Items []ProductView `json:"items"`
}

// SectionsResponse is the response for the grouped listing endpoint.
type SectionsResponse struct {
	Sections    []SectionView       `json:"sections"`
	TotalCount  int                 `json:"totalCount"`
	Page        *PageSummary        `json:"page,omitempty"`
	Subcategory *SubcategorySummary `json:"subcategory,omitempty"`
}

// PageView describes a configured page and its subcategories.
type PageView struct {
	ID            string               `json:"id"`
	Label         string               `json:"label"`
	Categories    []CategoryCount      `json:"categories"`
	Subcategories []SubcategorySummary `json:"subcategories"`
}

// NewListResponse shapes a listing result for clients.
func NewListResponse(res Result) ListResponse {
	resp := ListResponse{
		Items:      productViews(res.Items),
		Pagination: res.Pagination,
	}
	resp.Page, resp.Subcategory = summaries(res.Page, res.Subcategory)
	return resp
}

// NewSectionsResponse shapes a grouped listing for clients.
func NewSectionsResponse(res SectionsResult) SectionsResponse {
	resp := SectionsResponse{
		Sections:   make([]SectionView, len(res.Sections)),
		TotalCount: res.TotalCount,
	}
	for i, s := range res.Sections {
		resp.Sections[i] = SectionView{Label: s.Label, Count: len(s.Products), Items: productViews(s.Products)}
	}
	resp.Page, resp.Subcategory = summaries(res.Page, res.Subcategory)
	return resp
}

// Handler serves the catalog API.
type Handler struct {
	engine *Engine
	logger *zap.Logger
}

// NewHandler creates a new catalog API handler.
func NewHandler(engine *Engine, logger *zap.Logger) *Handler {
	return &Handler{engine: engine, logger: logger}
}

// RegisterRoutes implements server.RouteRegistrar.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/catalog/products", h.handleListProducts)
	mux.HandleFunc("GET /api/v1/catalog/products/{slug}", h.handleGetProduct)
	mux.HandleFunc("GET /api/v1/catalog/pages", h.handleListPages)
	mux.HandleFunc("GET /api/v1/catalog/pages/{page}/{subcategory}", h.handleSubcategory)
	mux.HandleFunc("GET /api/v1/catalog/pages/{page}/{subcategory}/sections", h.handleSections)
	mux.HandleFunc("GET /api/v1/catalog/facets", h.handleFacets)
	mux.HandleFunc("GET /api/v1/catalog/export.csv", h.handleExport)
}

// handleListProducts returns one page of the full catalog.
//
//	@Summary		List products
//	@Description	Returns a paginated product listing filtered by category, brand and free text.
//	@Tags			catalog
//	@Produce		json
//	@Param			category query string false "Category id (telai, motore-ricambi, ...)"
//	@Param			brand query string false "Exact brand"
//	@Param			q query string false "Free-text search over name, description and brand"
//	@Param			sort query string false "featured, name, price-asc or price-desc" default(featured)
//	@Param			page query int false "1-based page number" default(1)
//	@Success		200 {object} ListResponse
//	@Failure		400 {object} server.Problem
//	@Failure		500 {object} server.Problem
//	@Router			/catalog/products [get]
func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r)
	if err != nil {
		server.BadRequest(w, err.Error(), r.URL.Path)
		return
	}
	h.serveList(w, r, q)
}

// handleSubcategory returns one page of a subcategory listing.
//
//	@Summary		List a subcategory
//	@Description	Returns the products of a page subcategory, filtered, sorted and paginated.
//	@Tags			catalog
//	@Produce		json
//	@Param			page path string true "Page id"
//	@Param			subcategory path string true "Subcategory slug"
//	@Param			brand query string false "Exact brand"
//	@Param			q query string false "Free-text search"
//	@Param			sort query string false "Sort key" default(featured)
//	@Param			page query int false "1-based page number" default(1)
//	@Success		200 {object} ListResponse
//	@Failure		400 {object} server.Problem
//	@Failure		404 {object} server.Problem
//	@Router			/catalog/pages/{page}/{subcategory} [get]
func (h *Handler) handleSubcategory(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r)
	if err != nil {
		server.BadRequest(w, err.Error(), r.URL.Path)
		return
	}
	q.Page = r.PathValue("page")
	q.Subcategory = r.PathValue("subcategory")
	h.serveList(w, r, q)
}

func (h *Handler) serveList(w http.ResponseWriter, r *http.Request, q Query) {
	res, err := h.engine.Query(q)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, NewListResponse(res))
}

// handleSections returns a subcategory listing grouped by product type.
//
//	@Summary		Grouped subcategory listing
//	@Tags			catalog
//	@Produce		json
//	@Param			page path string true "Page id"
//	@Param			subcategory path string true "Subcategory slug"
//	@Success		200 {object} SectionsResponse
//	@Failure		400 {object} server.Problem
//	@Failure		404 {object} server.Problem
//	@Router			/catalog/pages/{page}/{subcategory}/sections [get]
func (h *Handler) handleSections(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r)
	if err != nil {
		server.BadRequest(w, err.Error(), r.URL.Path)
		return
	}
	q.Page = r.PathValue("page")
	q.Subcategory = r.PathValue("subcategory")

	res, err := h.engine.Sections(q)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, NewSectionsResponse(res))
}

// handleGetProduct returns a single product by slug.
//
//	@Summary		Get product
//	@Tags			catalog
//	@Produce		json
//	@Param			slug path string true "Product slug"
//	@Success		200 {object} ProductView
//	@Failure		404 {object} server.Problem
//	@Router			/catalog/products/{slug} [get]
func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.engine.Product(r.PathValue("slug"))
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NewProductView(p))
}

// handleListPages returns the configured pages with their subcategories.
//
//	@Summary		List pages
//	@Tags			catalog
//	@Produce		json
//	@Success		200 {array} PageView
//	@Router			/catalog/pages [get]
func (h *Handler) handleListPages(w http.ResponseWriter, r *http.Request) {
	pages := h.engine.Rules().Pages()
	out := make([]PageView, 0, len(pages))
	for i := range pages {
		p := &pages[i]
		pv := PageView{
			ID:            p.ID,
			Label:         p.Label,
			Categories:    make([]CategoryCount, 0, len(p.Categories)),
			Subcategories: make([]SubcategorySummary, 0, len(p.Subcategories)),
		}
		for _, c := range p.Categories {
			pv.Categories = append(pv.Categories, CategoryCount{Category: c, Label: c.Label()})
		}
		for _, s := range p.Subcategories {
			pv.Subcategories = append(pv.Subcategories, SubcategorySummary{Slug: s.Slug, Label: s.Label})
		}
		out = append(out, pv)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleFacets returns category and brand counts for the filter controls.
//
//	@Summary		Catalog facets
//	@Tags			catalog
//	@Produce		json
//	@Success		200 {object} Facets
//	@Failure		500 {object} server.Problem
//	@Router			/catalog/facets [get]
func (h *Handler) handleFacets(w http.ResponseWriter, r *http.Request) {
	f, err := h.engine.Facets()
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// handleExport streams the whole catalog as CSV.
//
//	@Summary		Export catalog
//	@Tags			catalog
//	@Produce		text/csv
//	@Success		200 {string} string
//	@Failure		500 {object} server.Problem
//	@Router			/catalog/export.csv [get]
func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	products, err := h.engine.Products()
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="catalogo.csv"`)
	if err := pkgcatalog.WriteCSV(w, products); err != nil {
		h.logger.Warn("csv export interrupted", zap.Error(err))
	}
}

func (h *Handler) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		server.NotFound(w, err.Error(), r.URL.Path)
	case errors.Is(err, ErrInvalidQuery):
		server.BadRequest(w, err.Error(), r.URL.Path)
	default:
		h.logger.Error("catalog request failed", zap.String("path", r.URL.Path), zap.Error(err))
		server.InternalError(w, "failed to load catalog", r.URL.Path)
	}
}

// parseListQuery reads the shared listing parameters.
func parseListQuery(r *http.Request) (Query, error) {
	v := r.URL.Query()
	q := Query{
		Brand:      v.Get("brand"),
		Search:     v.Get("q"),
		PageNumber: 1,
	}

	if c := strings.TrimSpace(v.Get("category")); c != "" {
		cat, err := models.ParseCategory(c)
		if err != nil {
			return Query{}, err
		}
		q.Category = cat
	}

	key, err := ParseSortKey(v.Get("sort"))
	if err != nil {
		return Query{}, fmt.Errorf("sort must be one of featured, name, price-asc, price-desc")
	}
	q.Sort = key

	if s := v.Get("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return Query{}, fmt.Errorf("page must be a positive integer")
		}
		q.PageNumber = n
	}
	return q, nil
}

func summaries(page *Page, sub *Subcategory) (*PageSummary, *SubcategorySummary) {
	var ps *PageSummary
	var ss *SubcategorySummary
	if page != nil {
		ps = &PageSummary{ID: page.ID, Label: page.Label, Categories: page.Categories}
	}
	if sub != nil {
		ss = &SubcategorySummary{Slug: sub.Slug, Label: sub.Label}
	}
	return ps, ss
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
