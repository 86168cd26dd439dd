package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := Logger
	Logger = slog.New(&ctxHandler{slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})})
	t.Cleanup(func() { Logger = prev })
	return &buf
}

func TestStructuredLogger(t *testing.T) {
	buf := captureLogs(t)

	app := fiber.New()
	app.Use(requestid.New(), ContextMiddleware(), StructuredLogger())
	app.Get("/health/live", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/get_post/:id", func(c *fiber.Ctx) error {
		if c.Params("id") == "0" {
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.SendStatus(fiber.StatusOK)
	})

	_, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/health/live", nil))
	require.NoError(t, err)
	assert.Empty(t, buf.String(), "probes are not logged")

	_, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/get_post/7", nil))
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, "route=/get_post/:id")
	assert.Contains(t, out, "request_id=")

	buf.Reset()
	_, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/get_post/0", nil))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "status=404")
}

func TestNewLogger(t *testing.T) {
	l := NewLogger("production")
	_, ok := l.Handler().(*ctxHandler)
	assert.True(t, ok)
	assert.False(t, NewLogger("test").Enabled(context.Background(), slog.LevelInfo), "tests only log warnings")
}
