package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/taskplane/taskplane/internal/models"
)

// AuditStore defines the interface for the append-only audit log. Entries
// are never updated or deleted once written.
type AuditStore interface {
	// Append persists a new audit entry.
	Append(ctx context.Context, entry *models.AuditEntry) error

	// ListByOrgs returns entries whose acting organization is in orgIDs,
	// newest first, capped at limit.
	ListByOrgs(ctx context.Context, orgIDs []uuid.UUID, limit int) ([]*models.AuditEntry, error)
}
