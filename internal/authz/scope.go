// Package authz implements the pure authorization rules for the two-level
// organization hierarchy: org-scope resolution, single-entity access checks
// and role gating. Nothing in this package performs I/O; callers resolve
// organizations from storage and pass them in.
package authz

import (
	"slices"

	"github.com/google/uuid"
	"github.com/taskplane/taskplane/internal/models"
)

// OrgScope is the result of resolving which organizations a principal may
// operate over.
type OrgScope struct {
	// AllowedOrgIDs holds the principal's own org first, then any accessible
	// children in input order, without duplicates. Empty when the principal's
	// organization could not be resolved (fail closed).
	AllowedOrgIDs []uuid.UUID

	// CanAccessChildren is true only for an OWNER in a root organization.
	CanAccessChildren bool

	// IsRootOrg is true when the principal's organization has no parent.
	IsRootOrg bool
}

// Allows reports whether the given organization is inside the scope.
func (s OrgScope) Allows(orgID uuid.UUID) bool {
	return slices.Contains(s.AllowedOrgIDs, orgID)
}

// ResolveOrgScope computes the set of organization ids a principal may
// operate over.
//
// Rules:
//   - OWNER in a root org sees its own org plus all direct children.
//   - Every other combination sees the principal's own org only. A principal
//     in a child org never sees its parent or siblings, regardless of role.
//   - A nil principalOrg resolves to an empty scope, never to the caller's
//     own org by default. Callers must verify the organization lookup
//     succeeded before trusting the result.
func ResolveOrgScope(p models.Principal, principalOrg *models.Organization, children []*models.Organization) OrgScope {
	if principalOrg == nil {
		return OrgScope{}
	}

	isRoot := principalOrg.IsRoot()
	canAccessChildren := isRoot && p.Role == models.RoleOwner

	allowed := []uuid.UUID{p.OrgID}
	if canAccessChildren {
		for _, child := range children {
			if !slices.Contains(allowed, child.OrgID) {
				allowed = append(allowed, child.OrgID)
			}
		}
	}

	return OrgScope{
		AllowedOrgIDs:     allowed,
		CanAccessChildren: canAccessChildren,
		IsRootOrg:         isRoot,
	}
}

// CanAccessOrg decides single-entity cross-org access. It must agree with
// ResolveOrgScope for every org that appears in the resolved scope.
//
// Same-org access is always allowed, independent of role. Cross-org access
// is allowed only for an OWNER in a root org targeting a resolved direct
// child of that org; an unresolved target (nil targetOrg) denies.
func CanAccessOrg(p models.Principal, targetOrgID uuid.UUID, principalOrg, targetOrg *models.Organization) bool {
	if p.OrgID == targetOrgID {
		return true
	}

	if principalOrg == nil || !principalOrg.IsRoot() || p.Role != models.RoleOwner {
		return false
	}

	return targetOrg != nil && targetOrg.ParentID != nil && *targetOrg.ParentID == p.OrgID
}
