package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/recommendation-console/internal/api/dto"
	"github.com/spec-kit/recommendation-console/internal/api/http/views"
	"github.com/spec-kit/recommendation-console/internal/auth"
	"github.com/spec-kit/recommendation-console/internal/domain"
	"github.com/spec-kit/recommendation-console/internal/service"
	"github.com/spec-kit/recommendation-console/internal/session"
	apperrors "github.com/spec-kit/recommendation-console/pkg/util"
)

const (
	itemsFallback          = "An unexpected error occurred while loading items."
	recommendationFallback = "An unexpected error occurred during recommendation generation."
)

// Catalog is the GraphQL surface the home page reads from.
type Catalog interface {
	Items(ctx context.Context) ([]domain.Item, error)
	GenerateRecommendations(ctx context.Context, preferences string) ([]domain.Item, error)
}

// HomeHandler renders the application root and accepts recommendation requests.
type HomeHandler struct {
	gate    *auth.Gate
	catalog Catalog
	board   *service.RecommendationBoard
	logger  *zap.Logger
}

// NewHomeHandler constructs handler.
func NewHomeHandler(gate *auth.Gate, catalog Catalog, board *service.RecommendationBoard, logger *zap.Logger) *HomeHandler {
	return &HomeHandler{gate: gate, catalog: catalog, board: board, logger: logger}
}

// Show handles GET /.
func (h *HomeHandler) Show(c *fiber.Ctx) error {
	return h.render(c, fiber.StatusOK, session.From(c).Snapshot(), "", "")
}

// Recommend handles POST /recommendations.
func (h *HomeHandler) Recommend(c *fiber.Ctx) error {
	snap := session.From(c).Snapshot()
	route, _ := h.gate.Route(c.Path())
	for _, region := range route.Regions {
		if h.gate.Authorize(snap, region) != auth.StateAuthorized {
			return renderDenied(c, snap)
		}
	}

	var form dto.RecommendationForm
	if err := c.BodyParser(&form); err != nil {
		return apperrors.NewValidationError("invalid recommendation form", nil)
	}

	items, err := h.catalog.GenerateRecommendations(c.UserContext(), form.Preferences)
	if err != nil {
		var domainErr *apperrors.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == "VALIDATION_FAILED" {
			return h.render(c, fiber.StatusBadRequest, snap, form.Preferences, domainErr.Message)
		}
		h.board.Clear()
		status, message := backendFailure(err, recommendationFallback)
		return h.render(c, status, snap, form.Preferences, message)
	}

	h.board.Set(items)
	return c.Redirect(h.gate.RootPath(), fiber.StatusSeeOther)
}

func (h *HomeHandler) render(c *fiber.Ctx, status int, snap session.Snapshot, preferences, formError string) error {
	page := views.HomePage{
		Layout:       pageLayout("Home", snap),
		ItemsAllowed: h.allowed(snap, domain.RegionItems),
		FormAllowed:  h.allowed(snap, domain.RegionRecommendationForm),
		Preferences:  preferences,
		FormError:    formError,
		Recommended:  h.board.Items(),
	}
	if page.ItemsAllowed {
		items, err := h.catalog.Items(c.UserContext())
		if err != nil {
			_, page.ItemsError = backendFailure(err, itemsFallback)
		} else {
			page.Items = items
		}
	}
	return c.Status(status).Render("home", page)
}

// allowed authorizes one region of the root route.
func (h *HomeHandler) allowed(snap session.Snapshot, name string) bool {
	route, ok := h.gate.Route(h.gate.RootPath())
	if !ok {
		return false
	}
	region, ok := route.Region(name)
	return ok && h.gate.Authorize(snap, region) == auth.StateAuthorized
}

// backendFailure picks the status and user-facing text for a catalog error.
func backendFailure(err error, fallback string) (int, string) {
	var gqlErr *service.GraphQLError
	if errors.As(err, &gqlErr) {
		return fiber.StatusBadGateway, gqlErr.Error()
	}
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) && domainErr.Code != "INTERNAL_ERROR" {
		return domainErr.HTTPStatus, domainErr.Message
	}
	return fiber.StatusInternalServerError, fallback
}
