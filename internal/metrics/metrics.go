// Package metrics exposes Prometheus instrumentation for document analyses.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "clauserisk"

// Analysis outcomes
const (
	OutcomeOK               = "ok"
	OutcomeEmpty            = "empty"
	OutcomeInputError       = "input_error"
	OutcomeModelUnavailable = "model_unavailable"
	OutcomeError            = "error"
)

// Catalog cache lookups
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// Metrics holds the collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	analyses      *prometheus.CounterVec
	clauses       prometheus.Histogram
	anomalous     prometheus.Counter
	embedDuration *prometheus.HistogramVec
	catalogCache  *prometheus.CounterVec
}

// New creates and registers all collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Document analyses by outcome.",
		}, []string{"outcome"}),
		clauses: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "clauses_per_document",
			Help:      "Number of clauses segmented per analyzed document.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		anomalous: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "anomalous_clauses_total",
			Help:      "Clauses labeled ANOMALOUS.",
		}),
		embedDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "embedding_request_duration_seconds",
			Help:      "Latency of embedding provider calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
		catalogCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_cache_total",
			Help:      "Catalog embedding cache lookups by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		m.analyses,
		m.clauses,
		m.anomalous,
		m.embedDuration,
		m.catalogCache,
		prometheus.NewGoCollector(),
	)

	return m
}

// ObserveAnalysis records one finished analysis
func (m *Metrics) ObserveAnalysis(outcome string, clauses, anomalous int) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(outcome).Inc()
	if outcome == OutcomeOK || outcome == OutcomeEmpty {
		m.clauses.Observe(float64(clauses))
		m.anomalous.Add(float64(anomalous))
	}
}

// ObserveEmbedding records the latency of one provider call
func (m *Metrics) ObserveEmbedding(provider string, d time.Duration) {
	if m == nil {
		return
	}
	m.embedDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// CatalogLookup records a catalog cache hit or miss
func (m *Metrics) CatalogLookup(result string) {
	if m == nil {
		return
	}
	m.catalogCache.WithLabelValues(result).Inc()
}

// Registry returns the private registry every collector is registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
