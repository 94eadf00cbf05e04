package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/recommendation-console/internal/api/dto"
	"github.com/spec-kit/recommendation-console/internal/session"
)

// SessionHandler exposes the console's session state as JSON.
type SessionHandler struct{}

// NewSessionHandler constructs handler.
func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

// Show handles GET /api/session.
func (h *SessionHandler) Show(c *fiber.Ctx) error {
	snap := session.From(c).Snapshot()
	resp := dto.SessionResponse{IsAuthenticated: snap.IsAuthenticated()}
	if user, ok := snap.User(); ok {
		roles := user.Roles
		if roles == nil {
			roles = []string{}
		}
		resp.User = &dto.SessionUser{Subject: user.Subject, Roles: roles}
		resp.ExpiresAt = user.ExpiresAt
	}
	if snap.DecodeErr != nil {
		resp.DecodeError = snap.DecodeErr.Error()
	}
	return c.JSON(resp)
}
