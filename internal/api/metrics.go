package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront-catalog-service/internal/catalog"
	"storefront-catalog-service/internal/domain"
)

const metricsNamespace = "storefront_catalog"

// Metrics holds the service's prometheus collectors.
type Metrics struct {
	registry    *prometheus.Registry
	queries     *prometheus.CounterVec
	resultSize  prometheus.Histogram
	itemsLoaded prometheus.Gauge
	version     prometheus.Gauge
	reloads     *prometheus.CounterVec
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "queries_total",
			Help:      "Catalog queries served, by sort key.",
		}, []string{"sort"}),
		resultSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "query_result_items",
			Help:      "Number of items matching a catalog query.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		itemsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "items_loaded",
			Help:      "Items in the current catalog snapshot.",
		}),
		version: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "snapshot_version",
			Help:      "Version of the current catalog snapshot.",
		}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "reloads_total",
			Help:      "Catalog reload attempts, by outcome.",
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(m.queries, m.resultSize, m.itemsLoaded, m.version, m.reloads)
	return m
}

// ObserveQuery records one query and the size of its result.
func (m *Metrics) ObserveQuery(key domain.SortKey, matched int) {
	label := string(key)
	if key == domain.SortNone {
		label = "default"
	}
	m.queries.WithLabelValues(label).Inc()
	m.resultSize.Observe(float64(matched))
}

// ObserveLoad is a catalog.LoadObserver.
func (m *Metrics) ObserveLoad(snap *catalog.Snapshot, err error) {
	if err != nil {
		m.reloads.WithLabelValues("failure").Inc()
		return
	}
	m.reloads.WithLabelValues("success").Inc()
	m.itemsLoaded.Set(float64(len(snap.Items)))
	m.version.Set(float64(snap.Version))
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
