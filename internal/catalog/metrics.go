package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records engine activity. A nil *Metrics is valid and records nothing.
type Metrics struct {
	queries  *prometheus.CounterVec
	results  prometheus.Histogram
	products prometheus.Gauge
}

// NewMetrics registers the catalog collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		queries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cbk",
			Subsystem: "catalog",
			Name:      "queries_total",
			Help:      "Catalog engine queries by kind and outcome.",
		}, []string{"kind", "outcome"}),
		results: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cbk",
			Subsystem: "catalog",
			Name:      "query_results",
			Help:      "Number of products matched by a query before pagination.",
			Buckets:   []float64{0, 1, 5, 24, 100, 500, 1000, 5000},
		}),
		products: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "cbk",
			Subsystem: "catalog",
			Name:      "products",
			Help:      "Products in the loaded catalog.",
		}),
	}
}

func (m *Metrics) observe(kind, result string, matched int) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(kind, result).Inc()
	if result == "ok" {
		m.results.Observe(float64(matched))
	}
}

func (m *Metrics) setProducts(n int) {
	if m == nil {
		return
	}
	m.products.Set(float64(n))
}
