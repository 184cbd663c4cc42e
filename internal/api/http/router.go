package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/reimbursement-service/internal/api/http/handlers"
	"github.com/spec-kit/reimbursement-service/internal/auth"
	"github.com/spec-kit/reimbursement-service/internal/domain"
	"github.com/spec-kit/reimbursement-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Users   *handlers.UsersHandler
	Tickets *handlers.TicketsHandler
	Files   *handlers.FilesHandler
	Gate    *auth.Gate

	SuspendRequiresEmployer bool
	StaticPrefix            string
	StaticDir               string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	api := app.Group("/api")
	api.Post("/register", cfg.Users.Register)
	api.Post("/login", cfg.Users.Login)
	api.Post("/files/tickets/attachment", cfg.Files.UploadTicketAttachment)

	gate := cfg.Gate.Handle
	api.Get("/user/list", gate, cfg.Users.List)
	if cfg.SuspendRequiresEmployer {
		api.Put("/user/suspend", gate, auth.RequireRoleHandler(domain.RoleEmployer), cfg.Users.Suspend)
	} else {
		api.Put("/user/suspend", gate, cfg.Users.Suspend)
	}
	api.Get("/tickets", gate, cfg.Tickets.ListTickets)
	api.Post("/tickets", gate, cfg.Tickets.CreateTicket)
	api.Put("/tickets/:id/status", gate, cfg.Tickets.UpdateStatus)

	if cfg.StaticDir != "" {
		app.Static(cfg.StaticPrefix, cfg.StaticDir, fiber.Static{Browse: false})
	}
}

// AppConfig is the server level configuration for NewApp.
type AppConfig struct {
	Name       string
	BodyLimit  int
	Middleware MiddlewareConfig
	Routes     RouteConfig
}

// NewApp builds the fiber application with middlewares and routes attached.
func NewApp(cfg AppConfig, logger *zap.Logger, metrics *observability.Metrics) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               cfg.Name,
		BodyLimit:             cfg.BodyLimit,
		ErrorHandler:          ErrorHandler(logger),
		DisableStartupMessage: true,
	})
	RegisterMiddlewares(app, logger, metrics, cfg.Middleware)
	RegisterRoutes(app, cfg.Routes)
	return app
}
