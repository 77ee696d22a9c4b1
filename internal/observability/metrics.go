package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// query resolution pipeline.
type Metrics struct {
	QueriesTotal    *prometheus.CounterVec // label: outcome
	ResolveDuration prometheus.Histogram

	// Upstream fetch metrics.
	FetchDuration prometheus.Histogram
	FetchErrors   prometheus.Counter

	// Data-quality metrics.
	DaysDropped        prometheus.Counter
	RainfallMismatches prometheus.Counter

	// Optional collaborator metrics.
	PublishErrors   prometheus.Counter
	PolishFallbacks prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.QueriesTotal,
		m.ResolveDuration,
		m.FetchDuration,
		m.FetchErrors,
		m.DaysDropped,
		m.RainfallMismatches,
		m.PublishErrors,
		m.PolishFallbacks,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		QueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bdwrf",
			Name:      "queries_total",
			Help:      "Resolved queries by outcome.",
		}, []string{"outcome"}),
		ResolveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bdwrf",
			Name:      "resolve_duration_seconds",
			Help:      "Duration of a complete interpret-retrieve-compose cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 15},
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bdwrf",
			Name:      "fetch_duration_seconds",
			Help:      "Upstream table page fetch duration.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bdwrf",
			Name:      "fetch_errors_total",
			Help:      "Upstream fetch failures, counted per name-variant attempt.",
		}),
		DaysDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bdwrf",
			Name:      "days_dropped_total",
			Help:      "Forecast days discarded for missing mandatory parameters.",
		}),
		RainfallMismatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bdwrf",
			Name:      "rainfall_mismatches_total",
			Help:      "Days where the duplicated rainfall rows disagreed beyond tolerance.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bdwrf",
			Name:      "publish_errors_total",
			Help:      "Failed attempts to publish resolved-query events.",
		}),
		PolishFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bdwrf",
			Name:      "polish_fallbacks_total",
			Help:      "Explanations where the polisher output was rejected or errored and the deterministic template was used instead.",
		}),
	}
}
