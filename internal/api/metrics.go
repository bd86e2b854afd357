package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the dashboard's prometheus collectors on a private registry
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	queries         *prometheus.CounterVec
	queryDuration   *prometheus.HistogramVec
	sessions        prometheus.Gauge
}

// NewMetrics registers all collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "launchboard",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "launchboard",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "launchboard",
			Name:      "queries_total",
			Help:      "Dashboard queries by name, cache use and outcome.",
		}, []string{"query", "cached", "ok"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "launchboard",
			Name:      "query_duration_seconds",
			Help:      "Dashboard query latency.",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
		}, []string{"query"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "launchboard",
			Name:      "websocket_sessions",
			Help:      "Open websocket dashboard sessions.",
		}),
	}

	m.registry.MustRegister(
		m.requests,
		m.requestDuration,
		m.queries,
		m.queryDuration,
		m.sessions,
		collectors.NewGoCollector(),
	)
	return m
}

// ObserveRequest records one HTTP request
func (m *Metrics) ObserveRequest(method, route, status string, d time.Duration) {
	m.requests.WithLabelValues(method, route, status).Inc()
	m.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// ObserveQuery implements launches.Observer
func (m *Metrics) ObserveQuery(query string, cached bool, d time.Duration, err error) {
	m.queries.WithLabelValues(query, strconv.FormatBool(cached), strconv.FormatBool(err == nil)).Inc()
	m.queryDuration.WithLabelValues(query).Observe(d.Seconds())
}

// SessionOpened increments the open session gauge
func (m *Metrics) SessionOpened() {
	m.sessions.Inc()
}

// SessionClosed decrements the open session gauge
func (m *Metrics) SessionClosed() {
	m.sessions.Dec()
}

// Handler serves the registry in the exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
