package authz

import (
	"slices"

	"github.com/taskplane/taskplane/internal/models"
)

// CheckRoles enforces a required-role set on an operation.
//
// An empty required set allows any authenticated principal. An absent
// principal, or one without a valid role, is denied (fail closed).
// The check is pure and performs no I/O, so it can run before any data
// access; unauthorized attempts never touch storage.
func CheckRoles(required []models.Role, p *models.Principal) bool {
	if len(required) == 0 {
		return true
	}

	if p == nil || !p.Role.Valid() {
		return false
	}

	return slices.Contains(required, p.Role)
}
