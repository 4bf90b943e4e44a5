package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/taskplane/taskplane/internal/models"
)

// AuditStore implements store.AuditStore using in-memory storage. The log
// is append-only; entries are kept in insertion order.
type AuditStore struct {
	mu sync.RWMutex

	entries []*models.AuditEntry
}

// NewAuditStore creates a new in-memory audit store.
func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

// Append persists a new audit entry.
func (s *AuditStore) Append(ctx context.Context, entry *models.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *entry
	s.entries = append(s.entries, &clone)

	return nil
}

// ListByOrgs returns entries whose acting organization is in orgIDs, newest
// first, capped at limit. Insertion order stands in for creation order,
// which keeps ordering stable when timestamps collide.
func (s *AuditStore) ListByOrgs(ctx context.Context, orgIDs []uuid.UUID, limit int) ([]*models.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*models.AuditEntry{}
	for i := len(s.entries) - 1; i >= 0 && len(result) < limit; i-- {
		entry := s.entries[i]
		if !slices.Contains(orgIDs, entry.OrgID) {
			continue
		}

		clone := *entry
		result = append(result, &clone)
	}

	return result, nil
}

// Len returns the total number of entries in the log. Used by tests to
// assert exactly-once recording.
func (s *AuditStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}
