package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := New()
	m.OrderTransition("pending", "processing")
	m.OrderTransition("pending", "processing")
	m.Notification(false)
	m.CatalogCache(true)
	m.UploadAttempt(true)

	if got := testutil.ToFloat64(m.orderTransitions.WithLabelValues("pending", "processing")); got != 2 {
		t.Fatalf("expected 2 transitions, got %v", got)
	}
	if got := testutil.ToFloat64(m.notifications.WithLabelValues("failure")); got != 1 {
		t.Fatalf("expected 1 failed notification, got %v", got)
	}
	if got := testutil.ToFloat64(m.catalogCache.WithLabelValues("hit")); got != 1 {
		t.Fatalf("expected 1 cache hit, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.OrderTransition("a", "b")
	m.Notification(true)
	m.CatalogCache(false)
	m.UploadAttempt(false)
}

func TestHandlerAndMiddleware(t *testing.T) {
	m := New()
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/metrics", m.Handler())
	app.Get("/api/v1/products/:slug", func(c *fiber.Ctx) error { return c.SendString("ok") })

	if _, err := app.Test(httptest.NewRequest("GET", "/api/v1/products/linen-shirt", nil)); err != nil {
		t.Fatal(err)
	}
	res, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(body), `nowiht_http_requests_total{method="GET",route="/api/v1/products/:slug",status="200"} 1`) {
		t.Fatalf("request counter missing from exposition:\n%s", body)
	}
}
