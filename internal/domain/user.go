package domain

import (
	"strings"
	"time"
)

// Identity is the subject and role set derived from a session token's claims.
type Identity struct {
	Subject   string
	Roles     []string
	ExpiresAt *time.Time
}

// RoleList returns the roles for display, or "No Roles" when empty.
func (i Identity) RoleList() string {
	if len(i.Roles) == 0 {
		return "No Roles"
	}
	return strings.Join(i.Roles, ", ")
}
