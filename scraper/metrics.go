package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the scrape stage.
type Metrics struct {
	Registry         *prometheus.Registry
	RequestsTotal    prometheus.Counter
	RequestDuration  prometheus.Histogram
	PagesTotal       prometheus.Counter
	ItemsParsedTotal prometheus.Counter
	ErrorsTotal      *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_requests_total",
			Help: "Total HTTP requests issued by the scraper.",
		},
	)
	requestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scraper_request_duration_seconds",
			Help:    "HTTP request latency for listing page fetches.",
			Buckets: prometheus.DefBuckets,
		},
	)
	pages := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_pages_total",
			Help: "Total listing pages that yielded product entries.",
		},
	)
	itemsParsed := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_items_parsed_total",
			Help: "Total product entries parsed into the snapshot.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_errors_total",
			Help: "Total fetch errors by classified type.",
		},
		[]string{"error_type"},
	)

	registry.MustRegister(requests, requestDuration, pages, itemsParsed, errorsTotal)

	return &Metrics{
		Registry:         registry,
		RequestsTotal:    requests,
		RequestDuration:  requestDuration,
		PagesTotal:       pages,
		ItemsParsedTotal: itemsParsed,
		ErrorsTotal:      errorsTotal,
	}
}

// IncRequests increments the requests counter.
func (m *Metrics) IncRequests() {
	if m == nil {
		return
	}
	m.RequestsTotal.Inc()
}

// ObserveDuration records one request's latency.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.Observe(d.Seconds())
}

// IncPages increments the non-empty page counter.
func (m *Metrics) IncPages() {
	if m == nil {
		return
	}
	m.PagesTotal.Inc()
}

// IncItems increments the parsed item counter.
func (m *Metrics) IncItems() {
	if m == nil {
		return
	}
	m.ItemsParsedTotal.Inc()
}

// IncError increments the error counter for a classified type.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
