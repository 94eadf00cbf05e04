package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/recommendation-console/internal/auth"
	"github.com/spec-kit/recommendation-console/internal/domain"
	"github.com/spec-kit/recommendation-console/internal/observability"
	"github.com/spec-kit/recommendation-console/internal/session"
)

const (
	LoginPath           = "/login"
	RootPath            = "/"
	LogoutPath          = "/logout"
	RecommendationsPath = "/recommendations"
)

// NewConsoleGate returns the gate over the console's authenticated routes.
func NewConsoleGate() *auth.Gate {
	recommendationForm := auth.Region{
		Name:          domain.RegionRecommendationForm,
		RequiredRoles: []string{domain.RoleRecommender},
	}
	return auth.NewGate(LoginPath, RootPath,
		auth.Route{Path: RootPath, Regions: []auth.Region{
			{Name: domain.RegionItems, RequiredRoles: []string{domain.RoleViewer, domain.RoleRecommender}},
			recommendationForm,
			{Name: domain.RegionRecommendedItems},
		}},
		auth.Route{Path: RecommendationsPath, Regions: []auth.Region{recommendationForm}},
		auth.Route{Path: LogoutPath},
	)
}

// gateMiddleware re-evaluates the gate against the live session on every
// request and redirects when the decision says so.
func gateMiddleware(gate *auth.Gate, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision := gate.Decide(session.From(c).Snapshot(), c.Path())
		metrics.RecordGate(decision.State.String(), decision.Outcome.String())

		if decision.Outcome != auth.OutcomeRedirect {
			return c.Next()
		}
		status := fiber.StatusFound
		if c.Method() != fiber.MethodGet && c.Method() != fiber.MethodHead {
			status = fiber.StatusSeeOther
		}
		return c.Redirect(decision.RedirectTo, status)
	}
}
