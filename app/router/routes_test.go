package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/amirphl/counter-api/app/dto"
	"github.com/amirphl/counter-api/app/handlers"
	"github.com/amirphl/counter-api/app/router"
	businessflow "github.com/amirphl/counter-api/business_flow"
	"github.com/amirphl/counter-api/config"
	"github.com/amirphl/counter-api/repository"
	testingutil "github.com/amirphl/counter-api/testing"
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type failingStore struct{}

func (failingStore) Ping(context.Context) error { return errors.New("database is unreachable") }

func newTestApp(t *testing.T, testDB *testingutil.TestDB, health router.HealthChecker) *fiber.App {
	t.Helper()

	cfg, err := config.Parse(map[string]string{"APP_ENV": "test"})
	require.NoError(t, err)

	log := zerolog.Nop()
	repo := repository.NewCountRecordRepository(testDB.DB)
	flow := businessflow.NewCountFlow(repo, testDB.DB, log)
	handler := handlers.NewCountHandler(flow, log, 5*time.Second)

	r := router.NewFiberRouter(cfg, log, handler, health)
	r.SetupRoutes()
	return r.GetApp()
}

func call(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func errorCode(t *testing.T, raw []byte) string {
	t.Helper()
	envelope := decode[struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}](t, raw)
	assert.False(t, envelope.Success)
	return envelope.Error.Code
}

func TestLatestCountEndpoints(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		app := newTestApp(t, testDB, testDB.Database)

		resp, raw := call(t, app, fiber.MethodGet, "/api/count", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"count": 1}`, string(raw))

		for want := int64(2); want <= 4; want++ {
			resp, raw = call(t, app, fiber.MethodPost, "/api/count/increment", nil)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)
			got := decode[dto.IncrementCountResponse](t, raw)
			assert.Equal(t, want, got.Count)
			assert.Equal(t, "Count incremented successfully", got.Message)
		}

		resp, raw = call(t, app, fiber.MethodGet, "/api/count", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"count": 4}`, string(raw))
		assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))

		return nil
	})
	require.NoError(t, err)
}

func TestCountCRUDEndpoints(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		app := newTestApp(t, testDB, testDB.Database)

		resp, raw := call(t, app, fiber.MethodPost, "/counts/", map[string]any{"count_number": 10, "description": "visits"})
		require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
		created := decode[dto.CountView](t, raw)
		assert.Equal(t, int64(10), created.CountNumber)
		require.NotNil(t, created.Description)
		assert.Equal(t, "visits", *created.Description)
		assert.Nil(t, created.UpdatedAt)
		item := "/counts/" + strconv.FormatUint(uint64(created.ID), 10)

		t.Run("Get", func(t *testing.T) {
			resp, raw := call(t, app, fiber.MethodGet, item, nil)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.Equal(t, created, decode[dto.CountView](t, raw))
		})

		t.Run("List", func(t *testing.T) {
			_, _ = call(t, app, fiber.MethodPost, "/counts", map[string]any{"count_number": 20})
			_, _ = call(t, app, fiber.MethodPost, "/counts", map[string]any{"count_number": 30})

			resp, raw := call(t, app, fiber.MethodGet, "/counts/", nil)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.Len(t, decode[[]dto.CountView](t, raw), 3)

			resp, raw = call(t, app, fiber.MethodGet, "/counts/?skip=1&limit=1", nil)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)
			page := decode[[]dto.CountView](t, raw)
			require.Len(t, page, 1)
			assert.Equal(t, int64(20), page[0].CountNumber)

			resp, raw = call(t, app, fiber.MethodGet, "/counts/?limit=0", nil)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.JSONEq(t, `[]`, string(raw))
		})

		t.Run("PartialUpdate", func(t *testing.T) {
			resp, raw := call(t, app, fiber.MethodPut, item, `{"count_number": 11}`)
			require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
			updated := decode[dto.CountView](t, raw)
			assert.Equal(t, int64(11), updated.CountNumber)
			assert.Equal(t, "visits", *updated.Description)
			assert.NotNil(t, updated.UpdatedAt)

			resp, raw = call(t, app, fiber.MethodPut, item, `{"description": null}`)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)
			updated = decode[dto.CountView](t, raw)
			assert.Equal(t, int64(11), updated.CountNumber)
			assert.Nil(t, updated.Description)

			resp, raw = call(t, app, fiber.MethodPut, item, `{}`)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.Equal(t, updated, decode[dto.CountView](t, raw))
		})

		t.Run("IncrementByID", func(t *testing.T) {
			resp, raw := call(t, app, fiber.MethodPost, item+"/increment", nil)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.Equal(t, int64(12), decode[dto.CountView](t, raw).CountNumber)

			resp, raw = call(t, app, fiber.MethodPost, item+"/increment?by=-5", nil)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.Equal(t, int64(7), decode[dto.CountView](t, raw).CountNumber)
		})

		t.Run("Export", func(t *testing.T) {
			resp, raw := call(t, app, fiber.MethodGet, "/counts/export", nil)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.Equal(t, "attachment; filename=counts.xlsx", resp.Header.Get(fiber.HeaderContentDisposition))

			xl, err := excelize.OpenReader(bytes.NewReader(raw))
			require.NoError(t, err)
			defer func() { _ = xl.Close() }()
			rows, err := xl.GetRows("counts")
			require.NoError(t, err)
			assert.Len(t, rows, 4)
		})

		t.Run("Delete", func(t *testing.T) {
			resp, raw := call(t, app, fiber.MethodDelete, item, nil)
			require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
			assert.Empty(t, raw)

			resp, raw = call(t, app, fiber.MethodGet, item, nil)
			require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
			assert.Equal(t, "COUNT_NOT_FOUND", errorCode(t, raw))

			resp, raw = call(t, app, fiber.MethodDelete, item, nil)
			require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
			assert.Equal(t, "COUNT_NOT_FOUND", errorCode(t, raw))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestCountEndpointErrors(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		app := newTestApp(t, testDB, testDB.Database)

		resp, raw := call(t, app, fiber.MethodPost, "/counts/", map[string]any{"count_number": 1})
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
		item := "/counts/" + strconv.FormatUint(uint64(decode[dto.CountView](t, raw).ID), 10)

		tests := []struct {
			name   string
			method string
			path   string
			body   any
			status int
			code   string
		}{
			{name: "create without count_number", method: fiber.MethodPost, path: "/counts/", body: `{"description": "x"}`, status: 400, code: "VALIDATION_ERROR"},
			{name: "create with long description", method: fiber.MethodPost, path: "/counts/", body: map[string]any{"count_number": 1, "description": strings.Repeat("d", 256)}, status: 400, code: "VALIDATION_ERROR"},
			{name: "create with malformed json", method: fiber.MethodPost, path: "/counts/", body: `{"count_number": `, status: 400, code: "INVALID_REQUEST"},
			{name: "create with wrong type", method: fiber.MethodPost, path: "/counts/", body: `{"count_number": "ten"}`, status: 400, code: "INVALID_REQUEST"},
			{name: "update null count_number", method: fiber.MethodPut, path: item, body: `{"count_number": null}`, status: 400, code: "VALIDATION_ERROR"},
			{name: "update missing row", method: fiber.MethodPut, path: "/counts/99999", body: `{"count_number": 2}`, status: 404, code: "COUNT_NOT_FOUND"},
			{name: "get missing row", method: fiber.MethodGet, path: "/counts/99999", status: 404, code: "COUNT_NOT_FOUND"},
			{name: "increment missing row", method: fiber.MethodPost, path: "/counts/99999/increment", status: 404, code: "COUNT_NOT_FOUND"},
			{name: "non-numeric id", method: fiber.MethodGet, path: "/counts/abc", status: 400, code: "INVALID_ID"},
			{name: "fractional id", method: fiber.MethodGet, path: "/counts/1.5", status: 400, code: "INVALID_ID"},
			{name: "negative skip", method: fiber.MethodGet, path: "/counts/?skip=-1", status: 400, code: "VALIDATION_ERROR"},
			{name: "non-numeric limit", method: fiber.MethodGet, path: "/counts/?limit=many", status: 400, code: "INVALID_QUERY"},
			{name: "non-numeric step", method: fiber.MethodPost, path: item + "/increment?by=two", status: 400, code: "INVALID_QUERY"},
			{name: "unknown route", method: fiber.MethodGet, path: "/nowhere", status: 404, code: "NOT_FOUND"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				resp, raw := call(t, app, tt.method, tt.path, tt.body)
				assert.Equal(t, tt.status, resp.StatusCode, string(raw))
				assert.Equal(t, tt.code, errorCode(t, raw))
			})
		}

		t.Run("IdsThatNameNoRow", func(t *testing.T) {
			ids := []string{"0", "-1", "99999", "9223372036854775808", "18446744073709551615"}
			methods := []string{fiber.MethodGet, fiber.MethodPut, fiber.MethodDelete}
			for _, id := range ids {
				for _, method := range methods {
					var body any
					if method == fiber.MethodPut {
						body = `{"count_number": 5}`
					}
					resp, raw := call(t, app, method, "/counts/"+id, body)
					assert.Equal(t, fiber.StatusNotFound, resp.StatusCode, "%s /counts/%s: %s", method, id, raw)
					assert.Equal(t, "COUNT_NOT_FOUND", errorCode(t, raw), "%s /counts/%s", method, id)
				}
			}

			resp, raw := call(t, app, fiber.MethodPost, "/counts/-1/increment", nil)
			assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
			assert.Equal(t, "COUNT_NOT_FOUND", errorCode(t, raw))
		})

		t.Run("FailedUpdateLeavesRow", func(t *testing.T) {
			resp, raw := call(t, app, fiber.MethodGet, item, nil)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.Equal(t, int64(1), decode[dto.CountView](t, raw).CountNumber)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestServiceEndpoints(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		app := newTestApp(t, testDB, testDB.Database)

		t.Run("Welcome", func(t *testing.T) {
			resp, raw := call(t, app, fiber.MethodGet, "/", nil)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)

			g := goldie.New(t)
			g.AssertJson(t, "welcome", decode[map[string]any](t, raw))
		})

		t.Run("Health", func(t *testing.T) {
			resp, raw := call(t, app, fiber.MethodGet, "/health", nil)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.JSONEq(t, `{"status": "healthy"}`, string(raw))
		})

		t.Run("Ready", func(t *testing.T) {
			resp, raw := call(t, app, fiber.MethodGet, "/ready", nil)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.JSONEq(t, `{"status": "ready", "database": "ok"}`, string(raw))
		})

		t.Run("NotReady", func(t *testing.T) {
			broken := newTestApp(t, testDB, failingStore{})
			resp, raw := call(t, broken, fiber.MethodGet, "/ready", nil)
			require.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
			assert.Equal(t, "unavailable", decode[dto.ReadinessResponse](t, raw).Status)
		})

		t.Run("Metrics", func(t *testing.T) {
			_, _ = call(t, app, fiber.MethodPost, "/api/count/increment", nil)

			resp, raw := call(t, app, fiber.MethodGet, "/metrics", nil)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)
			body := string(raw)
			assert.Contains(t, body, "http_requests_total")
			assert.Contains(t, body, `route="/api/count/increment"`)
			assert.Contains(t, body, `count_increments_total{target="latest"}`)
		})

		t.Run("SwaggerJSON", func(t *testing.T) {
			resp, raw := call(t, app, fiber.MethodGet, "/swagger.json", nil)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)
			doc := decode[map[string]any](t, raw)
			paths, ok := doc["paths"].(map[string]any)
			require.True(t, ok)
			assert.Contains(t, paths, "/api/count")
			assert.Contains(t, paths, "/counts/{id}")
		})

		return nil
	})
	require.NoError(t, err)
}

func TestCORS(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		app := newTestApp(t, testDB, testDB.Database)

		preflight := func(origin string) *http.Response {
			req := httptest.NewRequest(fiber.MethodOptions, "/counts/", nil)
			req.Header.Set(fiber.HeaderOrigin, origin)
			req.Header.Set(fiber.HeaderAccessControlRequestMethod, fiber.MethodPost)
			req.Header.Set(fiber.HeaderAccessControlRequestHeaders, "Content-Type")
			resp, err := app.Test(req)
			require.NoError(t, err)
			return resp
		}

		t.Run("AllowedOrigin", func(t *testing.T) {
			resp := preflight("http://localhost:5173")
			assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
			assert.Equal(t, "http://localhost:5173", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
			assert.Equal(t, "true", resp.Header.Get(fiber.HeaderAccessControlAllowCredentials))
			assert.Contains(t, resp.Header.Get(fiber.HeaderAccessControlAllowMethods), fiber.MethodPost)
		})

		t.Run("UnlistedOrigin", func(t *testing.T) {
			resp := preflight("https://evil.example.com")
			assert.Empty(t, resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
		})

		t.Run("SimpleRequest", func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/health", nil)
			req.Header.Set(fiber.HeaderOrigin, "http://127.0.0.1:3000")
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, "http://127.0.0.1:3000", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
		})

		return nil
	})
	require.NoError(t, err)
}
