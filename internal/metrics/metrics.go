// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names.
const (
	MetricHTTPRequestsTotal       = "http_requests_total"
	MetricHTTPRequestDuration     = "http_request_duration_seconds"
	MetricRecommendPassesTotal    = "recommend_passes_total"
	MetricRecommendMatched        = "recommend_matched_suppliers"
	MetricRecommendEmptyTotal     = "recommend_empty_results_total"
	MetricDirectoryEventsTotal    = "directory_events_total"
	MetricSupplierImportRowsTotal = "supplier_import_rows_total"
)

// Sources of a ranking pass, used as the "source" label.
const (
	SourceInline    = "inline"
	SourceUpload    = "upload"
	SourceDirectory = "directory"
	SourceStream    = "stream"
)

// Metrics contains the service collectors. All methods are safe for
// concurrent use and tolerate a nil receiver.
type Metrics struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	passes       *prometheus.CounterVec
	matched      *prometheus.HistogramVec
	empty        *prometheus.CounterVec
	dirEvents    *prometheus.CounterVec
	importedRows *prometheus.CounterVec
}

// New creates the collectors without registering them.
func New() *Metrics {
	return &Metrics{
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricHTTPRequestsTotal,
				Help: "Total HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricHTTPRequestDuration,
				Help:    "HTTP request latency by method and route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		passes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricRecommendPassesTotal,
				Help: "Ranking passes by source and sort mode",
			},
			[]string{"source", "sort"},
		),
		matched: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricRecommendMatched,
				Help:    "Suppliers left after the commodity filter, per pass",
				Buckets: []float64{0, 1, 3, 5, 10, 25, 50, 100, 250, 1000},
			},
			[]string{"source"},
		),
		empty: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricRecommendEmptyTotal,
				Help: "Ranking passes that produced no recommendation",
			},
			[]string{"source"},
		),
		dirEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricDirectoryEventsTotal,
				Help: "Supplier directory change events by kind",
			},
			[]string{"kind"},
		),
		importedRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricSupplierImportRowsTotal,
				Help: "Spreadsheet rows seen during supplier import by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// Register registers all collectors with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Collectors returns every collector, mostly for tests.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.httpRequests,
		m.httpDuration,
		m.passes,
		m.matched,
		m.empty,
		m.dirEvents,
		m.importedRows,
	}
}

func (m *Metrics) ObserveHTTP(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(seconds)
}

// ObservePass records one ranking pass.
func (m *Metrics) ObservePass(source, sort string, matched, returned int) {
	if m == nil {
		return
	}
	m.passes.WithLabelValues(source, sort).Inc()
	m.matched.WithLabelValues(source).Observe(float64(matched))
	if returned == 0 {
		m.empty.WithLabelValues(source).Inc()
	}
}

func (m *Metrics) IncDirectoryEvent(kind string) {
	if m == nil {
		return
	}
	m.dirEvents.WithLabelValues(kind).Inc()
}

func (m *Metrics) AddImportedRows(outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.importedRows.WithLabelValues(outcome).Add(float64(n))
}
