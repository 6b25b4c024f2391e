package product

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

func makeAppWithProductHandler(h *Handler) *fiber.App {
	app := fiber.New()
	h.RegisterPublicRoutes(app)
	h.RegisterAdminRoutes(app.Group("/api/v1/admin"))
	return app
}

func TestProductRoutesRegistered(t *testing.T) {
	app := makeAppWithProductHandler(NewHandler(NewService(NewInMemoryRepository(nil), nil, nil)))

	routes := map[string]bool{}
	for _, grp := range app.Stack() {
		for _, r := range grp {
			routes[r.Method+" "+r.Path] = true
		}
	}
	for _, want := range []string{
		"GET /api/v1/products",
		"GET /api/v1/products/:slug",
		"GET /api/v1/products/:id/related",
		"POST /api/v1/products/you-may-also-like",
		"GET /api/v1/admin/products/export",
		"POST /api/v1/admin/products/import",
		"PUT /api/v1/admin/products/:id",
	} {
		if !routes[want] {
			t.Fatalf("expected route %q to be registered", want)
		}
	}
}

func TestListProducts(t *testing.T) {
	app := makeAppWithProductHandler(NewHandler(NewService(NewInMemoryRepository(seedCatalog()), nil, nil)))

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/products?sort=price-desc&category=hoodies", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var page Page
	if err := json.NewDecoder(res.Body).Decode(&page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Total != 2 || page.Items[0].Slug != "zip-hoodie" {
		t.Fatalf("unexpected page %+v", page)
	}

	res, _ = app.Test(httptest.NewRequest("GET", "/api/v1/products?minPrice=abc", nil))
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for bad minPrice, got %d", res.StatusCode)
	}
}

func TestGetProductBySlug(t *testing.T) {
	app := makeAppWithProductHandler(NewHandler(NewService(NewInMemoryRepository(seedCatalog()), nil, nil)))

	res, _ := app.Test(httptest.NewRequest("GET", "/api/v1/products/oversized-hoodie", nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), `"views":1`) {
		t.Fatalf("expected view to be counted: %s", b)
	}

	res, _ = app.Test(httptest.NewRequest("GET", "/api/v1/products/draft-tee", nil))
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for draft, got %d", res.StatusCode)
	}
}

func TestRelatedAndYouMayAlsoLike(t *testing.T) {
	app := makeAppWithProductHandler(NewHandler(NewService(NewInMemoryRepository(seedCatalog()), nil, nil)))

	res, _ := app.Test(httptest.NewRequest("GET", "/api/v1/products/oversized-hoodie/related", nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var related []Product
	_ = json.NewDecoder(res.Body).Decode(&related)
	if len(related) != 1 || related[0].Slug != "zip-hoodie" {
		t.Fatalf("unexpected related %+v", related)
	}

	req := httptest.NewRequest("POST", "/api/v1/products/you-may-also-like",
		strings.NewReader(`{"productIds":["22222222-2222-2222-2222-222222222222"],"limit":5}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ = app.Test(req)
	var suggestions []Product
	_ = json.NewDecoder(res.Body).Decode(&suggestions)
	if len(suggestions) != 1 || suggestions[0].Slug != "oversized-hoodie" {
		t.Fatalf("unexpected suggestions %+v", suggestions)
	}
}

func TestAdminCreateProduct(t *testing.T) {
	app := makeAppWithProductHandler(NewHandler(NewService(NewInMemoryRepository(nil), nil, nil)))

	body := `{"name":"Wide Leg Pants","price":1450,"stock":0,"status":"published","colors":[{"name":"Ecru"}]}`
	req := httptest.NewRequest("POST", "/api/v1/admin/products", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", res.StatusCode)
	}
	var created Product
	_ = json.NewDecoder(res.Body).Decode(&created)
	if created.Slug != "wide-leg-pants" || created.InStock || created.Colors[0].Hex != "#F5F0E1" {
		t.Fatalf("unexpected created product %+v", created)
	}

	req = httptest.NewRequest("POST", "/api/v1/admin/products", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409 for duplicate slug, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("POST", "/api/v1/admin/products", strings.NewReader(`{"price":-5}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), `"price"`) || !strings.Contains(string(b), `"name"`) {
		t.Fatalf("expected field errors, got %s", b)
	}

	res, _ = app.Test(httptest.NewRequest("DELETE", "/api/v1/admin/products/"+created.ID, nil))
	if res.StatusCode != fiber.StatusNoContent {
		t.Fatalf("expected 204, got %d", res.StatusCode)
	}
}

func TestAdminImportExport(t *testing.T) {
	repo := NewInMemoryRepository(seedCatalog())
	app := makeAppWithProductHandler(NewHandler(NewService(repo, nil, nil)))

	res, _ := app.Test(httptest.NewRequest("GET", "/api/v1/admin/products/export", nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	exported, _ := io.ReadAll(res.Body)
	if _, err := excelize.OpenReader(bytes.NewReader(exported)); err != nil {
		t.Fatalf("export is not a workbook: %v", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "products.xlsx")
	_, _ = fw.Write(exported)
	_ = mw.Close()

	req := httptest.NewRequest("POST", "/api/v1/admin/products/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var result ImportResult
	_ = json.NewDecoder(res.Body).Decode(&result)
	if result.Updated != 3 || result.Created != 0 || len(result.Errors) != 0 {
		t.Fatalf("re-importing an export should update every row, got %+v", result)
	}
}
