// Package server implements the org-scoped services behind the guarded
// HTTP surface: the task service and the audit service. Both resolve a
// principal's organization scope through the same hierarchy rule before
// touching any entity data.
package server

import (
	"context"
	"errors"

	"github.com/taskplane/taskplane/internal/authz"
	"github.com/taskplane/taskplane/internal/models"
	"github.com/taskplane/taskplane/internal/store"
)

// scopeResolver resolves a principal's org scope against the organization
// store. A missing organization resolves to an empty scope, never to the
// principal's own org by default.
type scopeResolver struct {
	orgs store.OrganizationStore
}

func (r scopeResolver) resolve(ctx context.Context, p models.Principal) (authz.OrgScope, error) {
	org, err := r.orgs.Get(ctx, p.OrgID)
	if err != nil {
		if errors.Is(err, store.ErrOrganizationNotFound) {
			// Fail closed: an unresolvable org grants access to nothing.
			return authz.OrgScope{}, nil
		}
		return authz.OrgScope{}, err
	}

	var children []*models.Organization
	if org.IsRoot() {
		children, err = r.orgs.ListChildren(ctx, org.OrgID)
		if err != nil {
			return authz.OrgScope{}, err
		}
	}

	return authz.ResolveOrgScope(p, org, children), nil
}
