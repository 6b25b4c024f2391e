package recommended

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nowiht/storefront-backend/internal/product"
)

func catalogService(t *testing.T) *product.Service {
	t.Helper()
	now := time.Now().UTC()
	compare := 1000.0
	seed := []product.Product{
		{ID: "a", Slug: "a", Name: "A", Status: product.StatusPublished, SoldCount: 50, CreatedAt: now.AddDate(0, -2, 0)},
		{ID: "b", Slug: "b", Name: "B", Status: product.StatusPublished, SoldCount: 5, CreatedAt: now.AddDate(0, 0, -1)},
		{ID: "c", Slug: "c", Name: "C", Status: product.StatusPublished, SoldCount: 20, CreatedAt: now.AddDate(0, 0, -20),
			Price: 700, CompareAtPrice: &compare, IsOnSale: true},
		{ID: "d", Slug: "d", Name: "D", Status: product.StatusDraft, SoldCount: 500, CreatedAt: now},
	}
	return product.NewService(product.NewInMemoryRepository(seed), nil, nil)
}

func slugs(list []product.Product) []string {
	out := make([]string, len(list))
	for i, p := range list {
		out[i] = p.Slug
	}
	return out
}

func TestHome(t *testing.T) {
	svc := NewService(catalogService(t))

	home, err := svc.Home(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, slugs(home.BestSellers))
	assert.Equal(t, []string{"b", "c"}, slugs(home.NewArrivals))
	assert.Equal(t, []string{"c"}, slugs(home.OnSale))
	assert.Len(t, home.Trending, 2)
}

func TestCollectionPaging(t *testing.T) {
	svc := NewService(catalogService(t))

	page, err := svc.Collection(context.Background(), BestSellers, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b"}, slugs(page))

	empty, err := svc.Collection(context.Background(), BestSellers, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCollectionRoutes(t *testing.T) {
	app := fiber.New()
	NewHandler(NewService(catalogService(t))).RegisterPublicRoutes(app)

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/collections/home?limit=1", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	var home HomeCollections
	require.NoError(t, json.NewDecoder(res.Body).Decode(&home))
	assert.Equal(t, []string{"a"}, slugs(home.BestSellers))

	res, _ = app.Test(httptest.NewRequest("GET", "/api/v1/collections/new-arrivals?limit=5", nil))
	var arrivals []product.Product
	require.NoError(t, json.NewDecoder(res.Body).Decode(&arrivals))
	assert.Equal(t, []string{"b", "c", "a"}, slugs(arrivals))

	res, _ = app.Test(httptest.NewRequest("GET", "/api/v1/collections/clearance", nil))
	assert.Equal(t, fiber.StatusNotFound, res.StatusCode)
}
