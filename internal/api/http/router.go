package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/recommendation-console/internal/api/http/handlers"
	"github.com/spec-kit/recommendation-console/internal/api/http/views"
	"github.com/spec-kit/recommendation-console/internal/auth"
	"github.com/spec-kit/recommendation-console/internal/observability"
	"github.com/spec-kit/recommendation-console/internal/session"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Session    *session.Session
	Gate       *auth.Gate
	Metrics    *observability.Metrics
	Health     *handlers.HealthHandler
	Login      *handlers.LoginHandler
	Home       *handlers.HomeHandler
	SessionAPI *handlers.SessionHandler
}

// NewApp builds the fiber app rendering through engine. Every c.Render call
// is wrapped in views.LayoutName.
func NewApp(name string, engine fiber.Views) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:               name,
		Views:                 engine,
		ViewsLayout:           views.LayoutName,
		DisableStartupMessage: true,
	})
}

// RegisterRoutes wires HTTP routes. Health probes sit outside the session;
// everything after the gate sees only what the gate lets through.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	app.Use(session.Provide(cfg.Session))
	app.Get("/api/session", cfg.SessionAPI.Show)

	app.Use(gateMiddleware(cfg.Gate, cfg.Metrics))
	app.Get(LoginPath, cfg.Login.Show)
	app.Post(LoginPath, cfg.Login.Submit)
	app.Post(LogoutPath, cfg.Login.Logout)
	app.Get(RootPath, cfg.Home.Show)
	app.Post(RecommendationsPath, cfg.Home.Recommend)
}
