package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the ingestion
// engine.
type Metrics struct {
	RowsParsed  prometheus.Counter
	RowsSkipped prometheus.Counter

	FetchRequests *prometheus.CounterVec // labels: category, outcome={success,not_found,error}
	FetchDuration prometheus.Histogram

	DatasetsSaved prometheus.Counter
	MergedRows    prometheus.Histogram
}

// NewMetrics creates and registers all ingestion metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RowsParsed,
		m.RowsSkipped,
		m.FetchRequests,
		m.FetchDuration,
		m.DatasetsSaved,
		m.MergedRows,
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
		RowsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ndbc",
			Name:      "rows_parsed_total",
			Help:      "Total observation rows parsed from raw feeds.",
		}),
		RowsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ndbc",
			Name:      "rows_skipped_total",
			Help:      "Total malformed feed lines skipped during parsing.",
		}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ndbc",
			Name:      "fetch_requests_total",
			Help:      "Feed fetches by category and outcome.",
		}, []string{"category", "outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ndbc",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of one feed fetch.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		DatasetsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ndbc",
			Name:      "datasets_saved_total",
			Help:      "Datasets persisted to the store.",
		}),
		MergedRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ndbc",
			Name:      "merged_rows",
			Help:      "Row count of datasets produced by the merge engine.",
			Buckets:   []float64{10, 100, 1000, 10000, 100000, 1000000},
		}),
	}
}
