package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization represents a tenant in the system. The hierarchy is exactly
// two levels deep: root organizations (ParentID is nil) and their direct
// children (ParentID references a root organization).
type Organization struct {
	OrgID     uuid.UUID  `json:"id"` // UUIDv7
	Name      string     `json:"name"`
	ParentID  *uuid.UUID `json:"parentId"` // nil marks a root organization
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// IsRoot returns true if the organization has no parent.
func (o *Organization) IsRoot() bool {
	return o.ParentID == nil
}
