// Package scraper populates a catalog document from the listing and detail
// pages of a third-party shop. Requests are sequential and spaced by a fixed
// delay; an item that fails is logged and skipped.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/lupertojoele-max/cbk-sub000/internal/config"
	pkgcatalog "github.com/lupertojoele-max/cbk-sub000/pkg/catalog"
	"github.com/lupertojoele-max/cbk-sub000/pkg/models"
)

// maxListingPages bounds how many "next" links are followed per listing URL.
const maxListingPages = 100

// Stats summarizes a run.
type Stats struct {
	Products int `json:"products"`
	Skipped  int `json:"skipped"`
	Images   int `json:"images"`
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Scraper) { s.client = c }
}

// Scraper walks the configured category listings and writes the resulting
// catalog document.
type Scraper struct {
	cfg      config.ScraperConfig
	client   *http.Client
	limiter  *rate.Limiter
	sanitize *bluemonday.Policy
	logger   *zap.Logger

	seen     map[string]struct{}
	slugs    map[string]struct{}
	products []models.Product
	stats    Stats
}

// New creates a Scraper. Every category key in cfg.Categories must name a
// catalog category.
func New(cfg config.ScraperConfig, logger *zap.Logger, opts ...Option) (*Scraper, error) {
	var errs []error
	for key := range cfg.Categories {
		if _, err := models.ParseCategory(key); err != nil {
			errs = append(errs, err)
		}
	}
	if cfg.Output == "" {
		errs = append(errs, errors.New("output path is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("scraper: %w", err)
	}

	limit := rate.Inf
	if cfg.Delay > 0 {
		limit = rate.Every(cfg.Delay)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	s := &Scraper{
		cfg:      cfg,
		client:   &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(limit, 1),
		sanitize: bluemonday.StrictPolicy(),
		logger:   logger.Named("scraper"),
		seen:     make(map[string]struct{}),
		slugs:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run scrapes every configured category in catalog order. The output file is
// rewritten after each category, so an interrupted run leaves a valid
// document behind.
func (s *Scraper) Run(ctx context.Context) (Stats, error) {
	if s.cfg.ImageDir != "" {
		if err := os.MkdirAll(s.cfg.ImageDir, 0o755); err != nil {
			return s.snapshot(), fmt.Errorf("scraper: create image dir: %w", err)
		}
	}

	for _, cat := range models.AllCategories() {
		listings := s.cfg.Categories[string(cat)]
		if len(listings) == 0 {
			continue
		}
		before := len(s.products)
		for _, listing := range listings {
			if err := s.scrapeListing(ctx, cat, listing); err != nil {
				return s.snapshot(), err
			}
		}
		if err := s.write(); err != nil {
			return s.snapshot(), err
		}
		s.logger.Info("category done",
			zap.String("category", string(cat)),
			zap.Int("products", len(s.products)-before),
			zap.Int("total", len(s.products)),
		)
	}
	return s.snapshot(), nil
}

// snapshot reports the products written so far.
func (s *Scraper) snapshot() Stats {
	st := s.stats
	st.Products = len(s.products)
	return st
}

// scrapeListing follows a listing and its "next" links. Only a cancelled
// context aborts the run.
func (s *Scraper) scrapeListing(ctx context.Context, cat models.Category, listing string) error {
	visited := make(map[string]struct{})
	next := listing
	for n := 0; next != "" && n < maxListingPages; n++ {
		if _, ok := visited[next]; ok {
			break
		}
		visited[next] = struct{}{}

		doc, pageURL, err := s.fetchDocument(ctx, next)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn("listing failed", zap.String("url", next), zap.Error(err))
			return nil
		}

		for _, link := range resolveAll(pageURL, doc.Find(s.cfg.Selectors.ProductLink), "href") {
			if _, dup := s.seen[link]; dup {
				continue
			}
			s.seen[link] = struct{}{}

			p, err := s.scrapeProduct(ctx, cat, link)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.stats.Skipped++
				s.logger.Warn("product skipped", zap.String("url", link), zap.Error(err))
				continue
			}
			s.products = append(s.products, p)
		}

		next = ""
		if s.cfg.Selectors.NextPage != "" {
			if links := resolveAll(pageURL, doc.Find(s.cfg.Selectors.NextPage).First(), "href"); len(links) > 0 {
				next = links[0]
			}
		}
	}
	return nil
}

func (s *Scraper) scrapeProduct(ctx context.Context, cat models.Category, link string) (models.Product, error) {
	doc, pageURL, err := s.fetchDocument(ctx, link)
	if err != nil {
		return models.Product{}, err
	}
	p, imageURL, err := s.parseProduct(doc, pageURL)
	if err != nil {
		return models.Product{}, err
	}

	p.ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(link)).String()
	p.Category = cat
	p.SourceURL = link
	p.Slug = s.uniqueSlug(p.Name)
	p.Image = imageURL

	if imageURL != "" && s.cfg.ImageDir != "" {
		local, err := s.downloadImage(ctx, imageURL, p.Slug)
		if err != nil {
			if ctx.Err() != nil {
				return models.Product{}, ctx.Err()
			}
			s.logger.Warn("image download failed", zap.String("url", imageURL), zap.Error(err))
		} else {
			p.Image = local
			s.stats.Images++
		}
	}
	return p, nil
}

// parseProduct extracts the product fields from a detail page. The returned
// image URL is absolute.
func (s *Scraper) parseProduct(doc *goquery.Document, pageURL *url.URL) (models.Product, string, error) {
	sel := s.cfg.Selectors

	name := text(doc.Find(sel.Name).First())
	if name == "" {
		name, _ = doc.Find("meta[property='og:title']").Attr("content")
		name = strings.TrimSpace(name)
	}
	if name == "" {
		return models.Product{}, "", errors.New("no product name")
	}

	price := NormalizePrice(text(doc.Find(sel.Price).First()))
	if price == "" {
		return models.Product{}, "", errors.New("no price")
	}

	p := models.Product{
		Name:    name,
		Price:   price,
		Brand:   text(doc.Find(sel.Brand).First()),
		InStock: sel.OutOfStock == "" || doc.Find(sel.OutOfStock).Length() == 0,
	}
	if p.Brand == "" {
		brand, _ := doc.Find("meta[property='product:brand']").Attr("content")
		p.Brand = strings.TrimSpace(brand)
	}
	if sel.OriginalPrice != "" {
		p.OriginalPrice = NormalizePrice(text(doc.Find(sel.OriginalPrice).First()))
		if !p.OnDiscount() {
			p.OriginalPrice = ""
		}
	}
	if sel.Description != "" {
		if raw, err := doc.Find(sel.Description).First().Html(); err == nil {
			p.Description = s.plainText(raw)
		}
	}

	var imageURL string
	if sel.Image != "" {
		img := doc.Find(sel.Image).First()
		if links := resolveAll(pageURL, img, "src", "data-src"); len(links) > 0 {
			imageURL = links[0]
		}
	}
	return p, imageURL, nil
}

// plainText strips all markup and collapses whitespace.
func (s *Scraper) plainText(raw string) string {
	// Block-level closers become spaces so adjacent paragraphs do not fuse.
	raw = strings.NewReplacer("</p>", " </p>", "<br>", " <br>", "<br/>", " <br/>", "</li>", " </li>").Replace(raw)
	return strings.Join(strings.Fields(html.UnescapeString(s.sanitize.Sanitize(raw))), " ")
}

func (s *Scraper) uniqueSlug(name string) string {
	base := models.Slugify(name)
	if base == "" {
		base = "prodotto"
	}
	slug := base
	for n := 2; ; n++ {
		if _, taken := s.slugs[slug]; !taken {
			break
		}
		slug = base + "-" + strconv.Itoa(n)
	}
	s.slugs[slug] = struct{}{}
	return slug
}

func (s *Scraper) fetchDocument(ctx context.Context, rawURL string) (*goquery.Document, *url.URL, error) {
	resp, err := s.get(ctx, rawURL)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", rawURL, err)
	}
	return doc, resp.Request.URL, nil
}

// get waits for the limiter and performs a GET. Non-200 answers are errors.
func (s *Scraper) get(ctx context.Context, rawURL string) (*http.Response, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if s.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", s.cfg.UserAgent)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}
	return resp, nil
}

func (s *Scraper) downloadImage(ctx context.Context, imageURL, slug string) (string, error) {
	resp, err := s.get(ctx, imageURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	ext := path.Ext(resp.Request.URL.Path)
	if ext == "" || len(ext) > 5 {
		ext = ".jpg"
	}
	dest := filepath.Join(s.cfg.ImageDir, slug+strings.ToLower(ext))

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", dest, err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(dest)
		return "", fmt.Errorf("write %s: %w", dest, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", dest, err)
	}
	return filepath.ToSlash(dest), nil
}

// write replaces the output document atomically.
func (s *Scraper) write() error {
	dir := filepath.Dir(s.cfg.Output)
	tmp, err := os.CreateTemp(dir, ".cbk-scrape-*.json")
	if err != nil {
		return fmt.Errorf("scraper: create temp output: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := pkgcatalog.Encode(tmp, s.products); err != nil {
		tmp.Close()
		return fmt.Errorf("scraper: encode output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("scraper: close temp output: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.cfg.Output); err != nil {
		return fmt.Errorf("scraper: replace output: %w", err)
	}
	return nil
}

func text(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(sel.Text()), " ")
}

// resolveAll returns the absolute URLs found in the first non-empty attribute
// of each selected node, in document order.
func resolveAll(base *url.URL, sel *goquery.Selection, attrs ...string) []string {
	var out []string
	sel.Each(func(_ int, node *goquery.Selection) {
		for _, attr := range attrs {
			v, ok := node.Attr(attr)
			v = strings.TrimSpace(v)
			if !ok || v == "" {
				continue
			}
			ref, err := url.Parse(v)
			if err != nil {
				return
			}
			abs := base.ResolveReference(ref)
			abs.Fragment = ""
			out = append(out, abs.String())
			return
		}
	})
	return out
}
