package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/reimbursement-service/internal/observability"
)

const readyTimeout = 2 * time.Second

// Pinger is a dependency that can report its reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

type dependency struct {
	name string
	ping Pinger
}

// HealthHandler serves probes and the metrics snapshot.
type HealthHandler struct {
	serviceName string
	version     string
	deps        []dependency
	metrics     *observability.Metrics
}

// NewHealthHandler returns a new handler instance. redis is skipped when nil.
func NewHealthHandler(serviceName, version string, postgres, redis Pinger, metrics *observability.Metrics) *HealthHandler {
	deps := []dependency{{name: "postgres", ping: postgres}}
	if redis != nil {
		deps = append(deps, dependency{name: "redis", ping: redis})
	}
	return &HealthHandler{serviceName: serviceName, version: version, deps: deps, metrics: metrics}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready pings every dependency; any failure makes the service unready.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readyTimeout)
	defer cancel()

	report := make(map[string]string, len(h.deps))
	ready := true
	for _, dep := range h.deps {
		if err := dep.ping.Ping(ctx); err != nil {
			report[dep.name] = err.Error()
			ready = false
			continue
		}
		report[dep.name] = "ok"
	}

	if !ready {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success":      false,
			"error":        "one or more dependencies unavailable",
			"error_code":   fiber.StatusServiceUnavailable * 100,
			"dependencies": report,
		})
	}
	return c.JSON(fiber.Map{"status": "ready", "dependencies": report})
}

// Metrics reports in-process request counters.
func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(h.metrics.Snapshot())
}
