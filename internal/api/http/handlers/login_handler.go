package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/recommendation-console/internal/api/dto"
	"github.com/spec-kit/recommendation-console/internal/api/http/views"
	"github.com/spec-kit/recommendation-console/internal/observability"
	"github.com/spec-kit/recommendation-console/internal/service"
	"github.com/spec-kit/recommendation-console/internal/session"
	apperrors "github.com/spec-kit/recommendation-console/pkg/util"
)

// Authenticator exchanges credentials for a token.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// LoginHandler serves the login form and the logout action.
type LoginHandler struct {
	auth      Authenticator
	metrics   *observability.Metrics
	logger    *zap.Logger
	rootPath  string
	loginPath string
}

// NewLoginHandler constructs handler.
func NewLoginHandler(auth Authenticator, metrics *observability.Metrics, logger *zap.Logger, rootPath, loginPath string) *LoginHandler {
	return &LoginHandler{auth: auth, metrics: metrics, logger: logger, rootPath: rootPath, loginPath: loginPath}
}

// Show handles GET /login.
func (h *LoginHandler) Show(c *fiber.Ctx) error {
	return h.renderForm(c, fiber.StatusOK, "", "")
}

// Submit handles POST /login.
func (h *LoginHandler) Submit(c *fiber.Ctx) error {
	var form dto.LoginForm
	if err := c.BodyParser(&form); err != nil {
		return apperrors.NewValidationError("invalid login form", nil)
	}
	if strings.TrimSpace(form.Username) == "" || form.Password == "" {
		return h.renderForm(c, fiber.StatusBadRequest, form.Username, "Username and password are required.")
	}

	token, err := h.auth.Login(c.UserContext(), form.Username, form.Password)
	if err != nil {
		var loginErr *service.LoginError
		if errors.As(err, &loginErr) {
			h.metrics.RecordLogin("rejected")
			return h.renderForm(c, fiber.StatusUnauthorized, form.Username, loginErr.Message)
		}
		h.metrics.RecordLogin("unreachable")
		domainErr := apperrors.ToDomainError(err)
		return h.renderForm(c, domainErr.HTTPStatus, form.Username, domainErr.Message)
	}
	if token == "" {
		h.metrics.RecordLogin("rejected")
		return h.renderForm(c, fiber.StatusBadGateway, form.Username, "Login failed: the server returned an empty token.")
	}

	if err := session.From(c).Login(c.UserContext(), token); err != nil {
		h.logger.Error("persist session token", zap.Error(err))
		return apperrors.NewInternalError(err)
	}
	h.metrics.RecordLogin("ok")
	return c.Redirect(h.rootPath, fiber.StatusSeeOther)
}

// Logout handles POST /logout.
func (h *LoginHandler) Logout(c *fiber.Ctx) error {
	if err := session.From(c).Logout(c.UserContext()); err != nil {
		h.logger.Error("clear session token", zap.Error(err))
		return apperrors.NewInternalError(err)
	}
	return c.Redirect(h.loginPath, fiber.StatusSeeOther)
}

func (h *LoginHandler) renderForm(c *fiber.Ctx, status int, username, message string) error {
	return c.Status(status).Render("login", views.LoginPage{
		Layout:   views.Layout{Title: "Login"},
		Username: username,
		Error:    message,
	})
}
