package address

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// fakeAuth injects a jwt.Token into locals when X-User-Email is provided.
func fakeAuth(c *fiber.Ctx) error {
	if v := c.Get("X-User-Email"); v != "" {
		c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"user_id": "u-1", "email": v}})
	}
	return c.Next()
}

func newTestApp() *fiber.App {
	h := NewHandler(NewService(NewInMemoryRepository(nil)))
	app := fiber.New()
	app.Use(fakeAuth)
	h.RegisterProtectedRoutes(app)
	return app
}

func send(t *testing.T, app *fiber.App, method, path, email, body string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if email != "" {
		req.Header.Set("X-User-Email", email)
	}
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(res.Body)
	return res.StatusCode, []byte(buf.String())
}

func TestAddressRoutes(t *testing.T) {
	app := newTestApp()

	status, body := send(t, app, "POST", "/api/v1/account/addresses", "ayse@example.com",
		`{"title":"Home","fullName":"Ayse Yilmaz","line1":"Bagdat Cd. 10","city":"Istanbul","country":"TR"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", status, body)
	}
	var created Address
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !created.IsDefault {
		t.Fatalf("first address should be default")
	}
	if strings.Contains(string(body), "ayse@example.com") {
		t.Fatalf("owner email leaked into response: %s", body)
	}

	status, _ = send(t, app, "GET", "/api/v1/account/addresses/"+created.ID, "other@example.com", "")
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404 for another owner, got %d", status)
	}

	status, body = send(t, app, "GET", "/api/v1/account/addresses", "ayse@example.com", "")
	var list []Address
	json.Unmarshal(body, &list)
	if status != fiber.StatusOK || len(list) != 1 {
		t.Fatalf("unexpected list %d %s", status, body)
	}

	status, _ = send(t, app, "PUT", "/api/v1/account/addresses/"+created.ID, "ayse@example.com",
		`{"fullName":"Ayse Yilmaz","line1":"","city":"Istanbul","country":"TR"}`)
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for missing line1, got %d", status)
	}

	status, _ = send(t, app, "DELETE", "/api/v1/account/addresses/"+created.ID, "ayse@example.com", "")
	if status != fiber.StatusNoContent {
		t.Fatalf("expected 204, got %d", status)
	}
}

func TestAddressRoutes_RequireIdentity(t *testing.T) {
	app := newTestApp()
	status, _ := send(t, app, "GET", "/api/v1/account/addresses", "", "")
	if status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", status)
	}
}
