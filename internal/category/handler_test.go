package category

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func newTestApp() *fiber.App {
	h := NewHandler(NewService(NewInMemoryRepository(seed()), staticCounter{"tops": 3}))
	app := fiber.New()
	h.RegisterPublicRoutes(app)
	h.RegisterAdminRoutes(app.Group("/api/v1/admin"))
	return app
}

func TestPublicRoutes(t *testing.T) {
	app := newTestApp()

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/categories", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	var tree []*Node
	if err := json.NewDecoder(res.Body).Decode(&tree); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(tree) != 2 || tree[0].Slug != "women" {
		t.Fatalf("unexpected tree %+v", tree)
	}

	res, _ = app.Test(httptest.NewRequest("GET", "/api/v1/categories/dresses", nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	res, _ = app.Test(httptest.NewRequest("GET", "/api/v1/categories/archive", nil))
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("inactive category should be hidden, got %d", res.StatusCode)
	}
}

func TestAdminRoutes(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("DELETE", "/api/v1/admin/categories/women", nil)
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409 when deleting a parent, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("PUT", "/api/v1/admin/categories/women", strings.NewReader(`{"name":"Women","parentId":"tops"}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for a cycle, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("POST", "/api/v1/admin/categories", strings.NewReader(`{"name":"Knitwear","parentId":"women","sortOrder":3}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", res.StatusCode)
	}

	res, _ = app.Test(httptest.NewRequest("POST", "/api/v1/admin/categories/recount", nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 on recount, got %d", res.StatusCode)
	}
	res, _ = app.Test(httptest.NewRequest("GET", "/api/v1/admin/categories/tops", nil))
	var tops Category
	json.NewDecoder(res.Body).Decode(&tops)
	if tops.ProductCount != 3 {
		t.Fatalf("expected recount to store 3, got %d", tops.ProductCount)
	}
}
