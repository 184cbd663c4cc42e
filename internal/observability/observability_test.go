package observability

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/reimbursement-service/internal/config"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/tickets", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/api/tickets", "GET", 200, 30*time.Millisecond)
	m.RecordError("/api/tickets", "GET", "invalid_token")

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.TotalRequests)
	assert.Equal(t, int64(2), snap.Requests["GET /api/tickets|200"])
	assert.Equal(t, int64(1), snap.Errors["GET /api/tickets|invalid_token"])
	assert.InDelta(t, 20.0, snap.AverageLatencyMS, 0.001)

	snap.Requests["GET /api/tickets|200"] = 99
	assert.Equal(t, int64(2), m.Snapshot().Requests["GET /api/tickets|200"])
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "x")
}

func TestRequestLogger_RecordsRoutePattern(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	metrics := NewMetrics()

	app := fiber.New()
	app.Use(RequestLogger(zap.New(core), metrics))
	app.Get("/api/tickets/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusTeapot)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/tickets/42", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)

	assert.Equal(t, int64(1), metrics.Snapshot().Requests["GET /api/tickets/:id|418"])
	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "/api/tickets/42", entries[0].ContextMap()["path"])
}

func TestInitTracer_Disabled(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), config.TracingConfig{Enabled: false}, config.AppConfig{Name: "svc"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestTracingMiddlewarePassesThrough(t *testing.T) {
	app := fiber.New()
	app.Use(Tracing())
	app.Get("/health/live", func(c *fiber.Ctx) error {
		assert.NotNil(t, c.UserContext())
		return c.SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/health/live", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "not-a-level"}, config.AppConfig{Name: "svc", Env: "test"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
}
