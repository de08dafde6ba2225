package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thoreinstein/ccdir/internal/catalog"
	"github.com/thoreinstein/ccdir/internal/resource"
)

// Metrics is the server's Prometheus metric set, on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	resources *prometheus.GaugeVec
	problems  prometheus.Gauge
	reloads   prometheus.Counter
}

// NewMetrics registers the HTTP and catalog metrics plus the Go runtime
// collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ccdir_http_requests_total",
			Help: "Total number of HTTP requests received.",
		}, []string{"route", "method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ccdir_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		resources: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ccdir_catalog_resources",
			Help: "Resources in the served catalog by type.",
		}, []string{"type"}),
		problems: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ccdir_catalog_problems",
			Help: "Content files that failed to load.",
		}),
		reloads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ccdir_catalog_reloads_total",
			Help: "Successful catalog reloads.",
		}),
	}
	m.registry.MustRegister(
		m.requests, m.duration, m.resources, m.problems, m.reloads,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveCatalog records the size of c.
func (m *Metrics) ObserveCatalog(c *catalog.Catalog) {
	if c == nil {
		return
	}
	counts := make(map[resource.ResourceType]int)
	for _, r := range c.Resources() {
		counts[r.Type]++
	}
	for _, t := range resource.Types() {
		m.resources.WithLabelValues(string(t)).Set(float64(counts[t]))
	}
	m.problems.Set(float64(len(c.Problems())))
}

// ObserveReload counts a reload and records the new catalog.
func (m *Metrics) ObserveReload(c *catalog.Catalog) {
	m.reloads.Inc()
	m.ObserveCatalog(c)
}

// Middleware records request count and latency by route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
