package preferences

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

func fakeAuth(c *fiber.Ctx) error {
	if v := c.Get("X-User-Email"); v != "" {
		c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"user_id": "u-1", "email": v}})
	}
	return c.Next()
}

func newTestApp() *fiber.App {
	app := fiber.New()
	app.Use(fakeAuth)
	NewHandler(NewService(NewInMemoryRepository())).RegisterProtectedRoutes(app)
	return app
}

func TestGet_ReturnsDefaults(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("GET", "/api/v1/account/preferences", nil)
	req.Header.Set("X-User-Email", "ayse@example.com")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	var p Preferences
	if err := json.NewDecoder(res.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Language != LanguageEN || p.Currency != "TRY" || p.FitPreference != "regular" || p.PreferredSizes == nil {
		t.Fatalf("unexpected defaults %+v", p)
	}
}

func TestUpdate_PartialAndPersistent(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("PUT", "/api/v1/account/preferences",
		strings.NewReader(`{"language":"TR","preferredSizes":["m","s","M"],"fitPreference":"loose","newsletter":true}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Email", "ayse@example.com")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("PUT", "/api/v1/account/preferences", strings.NewReader(`{"currency":"eur"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Email", "ayse@example.com")
	res, _ = app.Test(req)
	var p Preferences
	json.NewDecoder(res.Body).Decode(&p)

	if p.Language != LanguageTR || p.Currency != "EUR" || !p.Newsletter || p.FitPreference != "loose" {
		t.Fatalf("unexpected preferences %+v", p)
	}
	if strings.Join(p.PreferredSizes, ",") != "M,S" {
		t.Fatalf("expected de-duplicated sizes, got %v", p.PreferredSizes)
	}
}

func TestUpdate_RejectsUnknownValues(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("PUT", "/api/v1/account/preferences",
		strings.NewReader(`{"language":"de","currency":"JPY","preferredSizes":["XXXL"],"fitPreference":"baggy"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Email", "ayse@example.com")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}
	var body struct {
		Errors map[string]string `json:"errors"`
	}
	json.NewDecoder(res.Body).Decode(&body)
	for _, f := range []string{"language", "currency", "preferredSizes", "fitPreference"} {
		if _, ok := body.Errors[f]; !ok {
			t.Fatalf("expected error for %s, got %v", f, body.Errors)
		}
	}
}

func TestRoutes_RequireIdentity(t *testing.T) {
	res, _ := newTestApp().Test(httptest.NewRequest("GET", "/api/v1/account/preferences", nil))
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.StatusCode)
	}
}
