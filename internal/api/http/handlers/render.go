package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/recommendation-console/internal/api/http/views"
	"github.com/spec-kit/recommendation-console/internal/session"
)

func pageLayout(title string, snap session.Snapshot) views.Layout {
	return views.Layout{Title: title, Welcome: welcome(snap)}
}

// welcome is "Welcome, <subject> (<roles>)"; an undecodable token shows an
// empty subject and "No Roles".
func welcome(snap session.Snapshot) string {
	if !snap.IsAuthenticated() {
		return ""
	}
	user, _ := snap.User()
	return fmt.Sprintf("Welcome, %s (%s)", user.Subject, user.RoleList())
}

func renderDenied(c *fiber.Ctx, snap session.Snapshot) error {
	return c.Status(fiber.StatusForbidden).Render("denied", views.DeniedPage{
		Layout: pageLayout("Access Denied", snap),
	})
}
