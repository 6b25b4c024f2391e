package logger

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	require.Error(t, err)
}

func TestMiddleware_LogsAndPropagatesRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	app := fiber.New()
	app.Use(Middleware(zap.New(core)))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/missing", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNotFound) })

	req := httptest.NewRequest("GET", "/ok", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", res.Header.Get(RequestIDHeader))

	res2, err := app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	assert.NotEmpty(t, res2.Header.Get(RequestIDHeader))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "request", entries[0].Message)
	assert.Equal(t, "abc-123", entries[0].ContextMap()["request_id"])
	assert.Equal(t, "request rejected", entries[1].Message)
	assert.EqualValues(t, 404, entries[1].ContextMap()["status"])
}

func TestFromCtx_AddsRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	t.Cleanup(zap.ReplaceGlobals(zap.New(core)))

	app := fiber.New()
	app.Use(Middleware(zap.NewNop()))
	app.Get("/work", func(c *fiber.Ctx) error {
		FromCtx(c).Info("working")
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest("GET", "/work", nil)
	req.Header.Set(RequestIDHeader, "req-7")
	_, err := app.Test(req)
	require.NoError(t, err)

	entries := logs.FilterMessage("working").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-7", entries[0].ContextMap()["request_id"])
}
