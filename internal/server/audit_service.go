package server

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/taskplane/taskplane/internal/models"
	"github.com/taskplane/taskplane/internal/store"
)

// Audit listing limits. Requested limits are clamped to [1, MaxAuditLimit];
// a missing or non-positive limit falls back to DefaultAuditLimit.
const (
	DefaultAuditLimit = 100
	MaxAuditLimit     = 500
)

// AuditRecord holds the fields captured for one guarded request.
type AuditRecord struct {
	Principal  *models.Principal // nil only if the guarded layer never ran
	Action     models.AuditAction
	EntityType string
	EntityID   *uuid.UUID // nil for collection-level operations
	Allowed    bool       // true for 2xx outcomes
	IPAddress  string
	Changes    string
}

// AuditActor is the redacted view of the acting user exposed on audit
// listings: id, email and role only.
type AuditActor struct {
	ID    uuid.UUID   `json:"id"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

// AuditLogEntry is the external view of a persisted audit entry. The raw
// changes payload is not exposed.
type AuditLogEntry struct {
	ID             uuid.UUID          `json:"id"`
	Action         models.AuditAction `json:"action"`
	EntityType     string             `json:"entityType"`
	EntityID       *uuid.UUID         `json:"entityId"`
	OrganizationID uuid.UUID          `json:"organizationId"`
	Allowed        bool               `json:"allowed"`
	IPAddress      string             `json:"ipAddress,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
	Actor          *AuditActor        `json:"user"`
}

// AuditService records one audit entry per guarded request and serves
// scoped audit history. Writes are best-effort: a failed write is logged
// and swallowed so the guarded operation's own outcome always propagates
// unchanged to the caller.
type AuditService struct {
	audits store.AuditStore
	scope  scopeResolver
}

// NewAuditService creates a new audit service.
func NewAuditService(audits store.AuditStore, orgs store.OrganizationStore) *AuditService {
	return &AuditService{
		audits: audits,
		scope:  scopeResolver{orgs: orgs},
	}
}

// Record persists one audit entry. Failures are logged, never returned:
// audit persistence must not alter the outcome of the operation it
// describes.
func (s *AuditService) Record(ctx context.Context, rec AuditRecord) {
	entryID, err := uuid.NewV7()
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to generate audit entry id")
		return
	}

	entry := &models.AuditEntry{
		EntryID:    entryID,
		Action:     rec.Action,
		EntityType: rec.EntityType,
		EntityID:   rec.EntityID,
		Allowed:    rec.Allowed,
		IPAddress:  rec.IPAddress,
		Changes:    rec.Changes,
		CreatedAt:  time.Now(),
	}

	if rec.Principal != nil {
		userID := rec.Principal.UserID
		entry.UserID = &userID
		entry.UserEmail = rec.Principal.Email
		entry.UserRole = rec.Principal.Role
		entry.OrgID = rec.Principal.OrgID
	}

	if err := s.audits.Append(ctx, entry); err != nil {
		zerolog.Ctx(ctx).Error().
			Err(err).
			Str("entity_type", rec.EntityType).
			Str("action", string(rec.Action)).
			Msg("failed to append audit entry")
	}
}

// ListForPrincipal returns audit history scoped by the same hierarchy rule
// as entity listing: a root-org OWNER sees its own and its children's
// entries, everyone else sees only their own org's. Entries are newest
// first, capped at the clamped limit.
func (s *AuditService) ListForPrincipal(ctx context.Context, p models.Principal, limit int) ([]*AuditLogEntry, error) {
	if limit <= 0 {
		limit = DefaultAuditLimit
	}
	if limit > MaxAuditLimit {
		limit = MaxAuditLimit
	}

	scope, err := s.scope.resolve(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve org scope: %w", err)
	}

	if len(scope.AllowedOrgIDs) == 0 {
		return []*AuditLogEntry{}, nil
	}

	entries, err := s.audits.ListByOrgs(ctx, scope.AllowedOrgIDs, limit)
	if err != nil {
		return nil, err
	}

	result := make([]*AuditLogEntry, 0, len(entries))
	for _, entry := range entries {
		view := &AuditLogEntry{
			ID:             entry.EntryID,
			Action:         entry.Action,
			EntityType:     entry.EntityType,
			EntityID:       entry.EntityID,
			OrganizationID: entry.OrgID,
			Allowed:        entry.Allowed,
			IPAddress:      entry.IPAddress,
			CreatedAt:      entry.CreatedAt,
		}
		if entry.UserID != nil {
			view.Actor = &AuditActor{
				ID:    *entry.UserID,
				Email: entry.UserEmail,
				Role:  entry.UserRole,
			}
		}
		result = append(result, view)
	}

	return result, nil
}
