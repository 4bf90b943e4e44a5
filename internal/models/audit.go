package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction classifies the operation an audit entry records.
type AuditAction string

const (
	AuditActionCreate AuditAction = "CREATE"
	AuditActionRead   AuditAction = "READ"
	AuditActionUpdate AuditAction = "UPDATE"
	AuditActionDelete AuditAction = "DELETE"
)

// AuditEntry records the outcome of a single guarded request. Entries are
// append-only; they are never mutated or deleted.
//
// OrgID is the acting principal's organization, not the target entity's.
// Audit history is scoped by this field using the same hierarchy rule as
// task listing.
type AuditEntry struct {
	EntryID    uuid.UUID   // UUIDv7
	Action     AuditAction
	EntityType string     // resource name, e.g. "tasks"
	EntityID   *uuid.UUID // nil for collection-level reads
	UserID     *uuid.UUID // acting user, nil only if none was resolved
	UserEmail  string     // snapshot taken at record time
	UserRole   Role       // snapshot taken at record time
	OrgID      uuid.UUID
	Allowed    bool // true for 2xx outcomes, false for 4xx/5xx
	IPAddress  string
	Changes    string // optional serialized diff
	CreatedAt  time.Time
}
