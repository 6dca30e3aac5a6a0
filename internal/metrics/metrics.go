package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "entcal"

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	FilterResults   prometheus.Histogram
	ICalExports     prometheus.Counter
	SnapshotRefresh *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})
	m.HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
	m.FilterResults = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "filter_results",
		Help:      "Events left after applying a filter set",
		Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
	})
	m.ICalExports = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ical_exports_total",
		Help:      "iCalendar files produced",
	})
	m.SnapshotRefresh = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshot_refresh_total",
		Help:      "Approved-events snapshot refreshes by result",
	}, []string{"result"})

	m.registry.MustRegister(
		m.HTTPRequests,
		m.HTTPDuration,
		m.FilterResults,
		m.ICalExports,
		m.SnapshotRefresh,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveFilter records the size of a filtered list. Safe on a nil receiver
// so the CLI can run without metrics.
func (m *Metrics) ObserveFilter(n int) {
	if m == nil {
		return
	}
	m.FilterResults.Observe(float64(n))
}

func (m *Metrics) IncICalExport() {
	if m == nil {
		return
	}
	m.ICalExports.Inc()
}

func (m *Metrics) IncSnapshotRefresh(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.SnapshotRefresh.WithLabelValues(result).Inc()
}

// ObserveHTTP records one finished request. route is the matched pattern,
// not the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
