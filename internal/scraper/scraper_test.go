package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lupertojoele-max/cbk-sub000/internal/config"
	"github.com/lupertojoele-max/cbk-sub000/internal/testutil"
	pkgcatalog "github.com/lupertojoele-max/cbk-sub000/pkg/catalog"
	"github.com/lupertojoele-max/cbk-sub000/pkg/models"
)

var shopPages = map[string]string{
	"/list/telai": `<html><body>
		<div class="product-item"><a class="product-link" href="/p/telaio-crg">Telaio CRG</a></div>
		<div class="product-item"><a class="product-link" href="../p/telaio-otk#reviews">Telaio OTK</a></div>
		<a class="next" href="/list/telai?p=2">Avanti</a>
	</body></html>`,
	"/list/telai?p=2": `<html><body>
		<div class="product-item"><a class="product-link" href="/p/telaio-crg">Telaio CRG</a></div>
		<div class="product-item"><a class="product-link" href="/p/rimosso">Rimosso</a></div>
	</body></html>`,
	"/list/freni": `<html><body>
		<div class="product-item"><a class="product-link" href="/p/disco">Disco</a></div>
		<div class="product-item"><a class="product-link" href="/p/senza-prezzo">Senza prezzo</a></div>
	</body></html>`,
	"/p/telaio-crg": `<html><body>
		<h1 class="product-name"> Telaio CRG
			Road Rebel </h1>
		<div class="price"><span class="current">€ 1.290,00</span><span class="old">€ 1.490,00</span></div>
		<span class="product-brand">CRG</span>
		<div class="product-description"><p>Telaio <b>omologato</b></p><p>CIK &amp; FIA</p><script>alert(1)</script></div>
	</body></html>`,
	"/p/telaio-otk": `<html><head><meta property="product:brand" content="OTK"></head><body>
		<h1 class="product-name">Telaio CRG Road Rebel</h1>
		<div class="price"><span class="current">990,00 €</span><span class="old">990,00 €</span></div>
		<span class="out-of-stock">Esaurito</span>
	</body></html>`,
	"/p/disco": `<html><head><meta property="og:title" content="Disco Freno V11"></head><body>
		<div class="price"><span class="current">89,00 €</span></div>
		<div class="product-image"><img data-src="/img/disco.PNG"></div>
	</body></html>`,
	"/p/senza-prezzo": `<html><body><h1 class="product-name">Pinza</h1></body></html>`,
}

func newShop(t *testing.T, onRequest func(r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if onRequest != nil {
			onRequest(r)
		}
		if r.URL.Path == "/img/disco.PNG" {
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte("\x89PNG fake"))
			return
		}
		page, ok := shopPages[r.URL.RequestURI()]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func shopConfig(t *testing.T, base string) config.ScraperConfig {
	t.Helper()
	dir := t.TempDir()
	return config.ScraperConfig{
		Output:    filepath.Join(dir, "products.json"),
		ImageDir:  filepath.Join(dir, "images"),
		UserAgent: "cbk-test",
		Categories: map[string][]string{
			"freni-accessori": {base + "/list/freni"},
			"telai":           {base + "/list/telai"},
		},
		Selectors: config.SelectorConfig{
			ProductLink:   ".product-item a.product-link",
			NextPage:      "a.next",
			Name:          "h1.product-name",
			Price:         ".price .current",
			OriginalPrice: ".price .old",
			Brand:         ".product-brand",
			Description:   ".product-description",
			Image:         ".product-image img",
			OutOfStock:    ".out-of-stock",
		},
	}
}

func TestScraper_Run(t *testing.T) {
	var (
		mu     sync.Mutex
		agents []string
	)
	srv := newShop(t, func(r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		agents = append(agents, r.UserAgent())
	})
	cfg := shopConfig(t, srv.URL)

	core, logs := observer.New(zapcore.WarnLevel)
	s, err := New(cfg, zap.New(core))
	require.NoError(t, err)

	stats, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{Products: 3, Skipped: 2, Images: 1}, stats)
	assert.Equal(t, 2, logs.FilterMessage("product skipped").Len())
	mu.Lock()
	defer mu.Unlock()
	for _, ua := range agents {
		assert.Equal(t, "cbk-test", ua)
	}

	products, err := pkgcatalog.Open(cfg.Output).Entries()
	require.NoError(t, err)
	require.Len(t, products, 3)

	crg := products[0]
	assert.Equal(t, uuid.NewSHA1(uuid.NameSpaceURL, []byte(srv.URL+"/p/telaio-crg")).String(), crg.ID)
	assert.Equal(t, "Telaio CRG Road Rebel", crg.Name)
	assert.Equal(t, "telaio-crg-road-rebel", crg.Slug)
	assert.Equal(t, models.CategoryTelai, crg.Category)
	assert.Equal(t, "1290.00", crg.Price)
	assert.Equal(t, "1490.00", crg.OriginalPrice)
	assert.Equal(t, "CRG", crg.Brand)
	assert.Equal(t, "Telaio omologato CIK & FIA", crg.Description)
	assert.True(t, crg.InStock)
	assert.Equal(t, srv.URL+"/p/telaio-crg", crg.SourceURL)

	otk := products[1]
	assert.Equal(t, "telaio-crg-road-rebel-2", otk.Slug, "colliding slugs get a numeric suffix")
	assert.Equal(t, "OTK", otk.Brand)
	assert.Empty(t, otk.OriginalPrice, "an original price equal to the price is dropped")
	assert.False(t, otk.InStock)
	assert.Equal(t, srv.URL+"/p/telaio-otk", otk.SourceURL, "fragments are stripped")

	disco := products[2]
	assert.Equal(t, models.CategoryFreniAccessori, disco.Category)
	assert.Equal(t, "Disco Freno V11", disco.Name)
	assert.Equal(t, "89.00", disco.Price)
	assert.Equal(t, filepath.ToSlash(filepath.Join(cfg.ImageDir, "disco-freno-v11.png")), disco.Image)
	data, err := os.ReadFile(filepath.Join(cfg.ImageDir, "disco-freno-v11.png"))
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG fake", string(data))
}

func TestScraper_WithoutImageDirKeepsRemoteURL(t *testing.T) {
	srv := newShop(t, nil)
	cfg := shopConfig(t, srv.URL)
	cfg.ImageDir = ""
	delete(cfg.Categories, "telai")

	s, err := New(cfg, testutil.Logger())
	require.NoError(t, err)
	stats, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Images)

	products, err := pkgcatalog.Open(cfg.Output).Entries()
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, srv.URL+"/img/disco.PNG", products[0].Image)
}

func TestScraper_InterruptedRunLeavesValidDocument(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv := newShop(t, func(r *http.Request) {
		if r.URL.Path == "/list/freni" {
			cancel()
		}
	})
	cfg := shopConfig(t, srv.URL)

	s, err := New(cfg, testutil.Logger())
	require.NoError(t, err)
	_, err = s.Run(ctx)
	require.True(t, errors.Is(err, context.Canceled), "err = %v", err)

	products, err := pkgcatalog.Open(cfg.Output).Entries()
	require.NoError(t, err)
	assert.Len(t, products, 2, "the telai category was flushed before the interruption")
}

func TestNew_RejectsUnknownCategory(t *testing.T) {
	cfg := config.ScraperConfig{
		Output:     filepath.Join(t.TempDir(), "out.json"),
		Categories: map[string][]string{"kart-completi": {"http://example.invalid"}},
	}
	_, err := New(cfg, testutil.Logger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown category "kart-completi"`)

	_, err = New(config.ScraperConfig{}, testutil.Logger())
	assert.ErrorContains(t, err, "output path is required")
}

func TestNormalizePrice(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"€ 1.234,50", "1234.50"},
		{"89,00 €", "89.00"},
		{"€12", "12.00"},
		{"12.5", "12.50"},
		{"1.290", "1290.00"},
		{"1.234.567", "1234567.00"},
		{"Prezzo: 4.350,00 € IVA inclusa.", "4350.00"},
		{"0", "0.00"},
		{"  Su richiesta ", "Su richiesta"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePrice(tt.in))
		})
	}
}

func TestPlainText(t *testing.T) {
	s, err := New(config.ScraperConfig{Output: "out.json"}, testutil.Logger())
	require.NoError(t, err)

	got := s.plainText(`<ul><li>Peso: 2 kg</li><li>Foro &lt;8 mm&gt;</li></ul><style>p{}</style>`)
	assert.Equal(t, "Peso: 2 kg Foro <8 mm>", got)
}
