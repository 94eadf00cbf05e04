package auth

import (
	"slices"
	"strings"

	"github.com/spec-kit/recommendation-console/internal/domain"
)

// NormalizeRole maps "recommender" and "ROLE_RECOMMENDER" to the same claim value.
func NormalizeRole(role string) string {
	if strings.HasPrefix(role, domain.RolePrefix) {
		return role
	}
	return domain.RolePrefix + strings.ToUpper(role)
}

// HasRole reports whether identity carries role. A nil identity has no roles.
func HasRole(identity *domain.Identity, role string) bool {
	if identity == nil {
		return false
	}
	return slices.Contains(identity.Roles, NormalizeRole(role))
}
