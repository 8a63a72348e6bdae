package middleware

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(AccessLog(log, "/health"))
	app.Get("/health", func(c fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/ok", func(c fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/missing", func(c fiber.Ctx) error { return fiber.NewError(fiber.StatusNotFound, "nope") })
	app.Get("/boom", func(c fiber.Ctx) error { return assert.AnError })

	tests := []struct {
		path   string
		status int
		level  string
	}{
		{path: "/ok", status: fiber.StatusOK, level: "info"},
		{path: "/missing", status: fiber.StatusNotFound, level: "warn"},
		{path: "/boom", status: fiber.StatusInternalServerError, level: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			buf.Reset()
			req := httptest.NewRequest(fiber.MethodGet, tt.path, nil)
			req.Header.Set("User-Agent", "access-log-test")

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			entries := decodeLines(t, &buf)
			require.Len(t, entries, 1)
			entry := entries[0]
			assert.Equal(t, tt.level, entry["level"])
			assert.Equal(t, "API", entry["message"])
			assert.Equal(t, tt.path, entry["path"])
			assert.EqualValues(t, tt.status, entry["status"])
			assert.Equal(t, "access-log-test", entry["user_agent"])
			assert.Equal(t, resp.Header.Get(fiber.HeaderXRequestID), entry["request_id"])
		})
	}

	t.Run("SkippedPath", func(t *testing.T) {
		buf.Reset()
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/health", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Zero(t, buf.Len())
	})
}

func TestStatusOf(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c fiber.Ctx) error {
		c.Status(fiber.StatusAccepted)
		assert.Equal(t, fiber.StatusAccepted, statusOf(c, nil))
		assert.Equal(t, fiber.StatusConflict, statusOf(c, fiber.ErrConflict))
		assert.Equal(t, fiber.StatusInternalServerError, statusOf(c, assert.AnError))
		return nil
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
}
