package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPMetrics exposes request counters and latency per route.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	gatherer prometheus.Gatherer
}

func NewHTTPMetrics(service string, reg *prometheus.Registry) *HTTPMetrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "bigode",
			Subsystem:   "http",
			Name:        "requests_total",
			Help:        "Total HTTP requests handled",
			ConstLabels: prometheus.Labels{"service": service},
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   "bigode",
			Subsystem:   "http",
			Name:        "request_duration_seconds",
			Help:        "Latency of HTTP requests",
			ConstLabels: prometheus.Labels{"service": service},
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),
		gatherer: reg,
	}
	reg.MustRegister(m.requests, m.latency)
	return m
}

// Registerer lets other components add collectors next to the HTTP ones.
func (m *HTTPMetrics) Registerer() prometheus.Registerer {
	if reg, ok := m.gatherer.(prometheus.Registerer); ok {
		return reg
	}
	return prometheus.DefaultRegisterer
}

// Handler serves /metrics and records every other request.
func (m *HTTPMetrics) Handler(next http.Handler) http.Handler {
	exposer := promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			exposer.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.latency.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
