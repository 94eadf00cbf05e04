package session

import (
	"github.com/gofiber/fiber/v2"
)

const localsKey = "console_session"

// MisuseError reports session access from a handler that is not mounted
// behind Provide. It signals a wiring defect and is raised as a panic.
type MisuseError struct {
	Op string
}

func (e *MisuseError) Error() string {
	return "session: " + e.Op + " used outside a session provider; mount session.Provide first"
}

// Provide attaches s to every request that passes through it.
func Provide(s *Session) fiber.Handler {
	if s == nil {
		panic(&MisuseError{Op: "Provide(nil)"})
	}
	return func(c *fiber.Ctx) error {
		c.Locals(localsKey, s)
		return c.Next()
	}
}

// From returns the session attached by Provide. It panics with *MisuseError
// when no provider ran for this request.
func From(c *fiber.Ctx) *Session {
	s, ok := c.Locals(localsKey).(*Session)
	if !ok || s == nil {
		panic(&MisuseError{Op: "From"})
	}
	return s
}
