package middleware

import (
	"net/http"
	"strconv"
	"time"

	"tourops/internal/model"
	"tourops/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tourops"

// Metrics owns the prometheus registry of the service. A nil *Metrics is a
// valid no-op.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inflight        prometheus.Gauge
	backend         *prometheus.GaugeVec
	changesTotal    *prometheus.CounterVec
}

// NewMetrics registers the HTTP and storage collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_inflight",
			Help:      "Requests being served.",
		}),
		backend: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "storage_backend_info",
			Help:      "Always 1, labelled with the storage backend in use.",
		}, []string{"backend"}),
		changesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "record_changes_total",
			Help:      "Committed mutations by record kind and action.",
		}, []string{"kind", "action"}),
	}
	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.inflight,
		m.backend,
		m.changesTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// SetBackend records which storage backend was selected.
func (m *Metrics) SetBackend(b repository.Backend) {
	if m == nil {
		return
	}
	m.backend.Reset()
	m.backend.WithLabelValues(string(b)).Set(1)
}

// ObserveChange counts a committed mutation.
func (m *Metrics) ObserveChange(kind model.Kind, action model.ChangeAction) {
	if m == nil {
		return
	}
	m.changesTotal.WithLabelValues(string(kind), string(action)).Inc()
}

// Middleware instruments request counts and latency.
func (m *Metrics) Middleware() gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		m.inflight.Inc()
		defer m.inflight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		method := c.Request.Method
		m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
