// Package metrics exposes the Prometheus collectors used across the storefront.
package metrics

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the application collectors. A nil *Metrics is valid and
// records nothing, which keeps services usable in tests without a registry.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	orderTransitions *prometheus.CounterVec
	notifications    *prometheus.CounterVec
	catalogCache     *prometheus.CounterVec
	uploadAttempts   *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nowiht_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		orderTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nowiht_order_transitions_total",
			Help: "Order status transitions applied.",
		}, []string{"from", "to"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nowiht_notifications_total",
			Help: "Order notification deliveries by result.",
		}, []string{"result"}),
		catalogCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nowiht_catalog_cache_total",
			Help: "Catalog cache lookups by result.",
		}, []string{"result"}),
		uploadAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nowiht_upload_attempts_total",
			Help: "Image upload storage attempts by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.orderTransitions,
		m.notifications,
		m.catalogCache,
		m.uploadAttempts,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// Middleware counts requests by their matched route pattern.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if m == nil {
			return err
		}
		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		route := c.Route().Path
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		return err
	}
}

func (m *Metrics) OrderTransition(from, to string) {
	if m == nil {
		return
	}
	m.orderTransitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) Notification(ok bool) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(result(ok)).Inc()
}

func (m *Metrics) CatalogCache(hit bool) {
	if m == nil {
		return
	}
	label := "miss"
	if hit {
		label = "hit"
	}
	m.catalogCache.WithLabelValues(label).Inc()
}

func (m *Metrics) UploadAttempt(ok bool) {
	if m == nil {
		return
	}
	m.uploadAttempts.WithLabelValues(result(ok)).Inc()
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
