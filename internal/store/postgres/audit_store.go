package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/taskplane/taskplane/internal/models"
)

// AuditStore implements store.AuditStore using PostgreSQL. The audit_logs
// table is append-only; this store exposes no update or delete.
type AuditStore struct {
	pool *pgxpool.Pool
}

// NewAuditStore creates a new PostgreSQL-backed audit store.
func NewAuditStore(pool *pgxpool.Pool) *AuditStore {
	return &AuditStore{
		pool: pool,
	}
}

// Append persists a new audit entry.
func (s *AuditStore) Append(ctx context.Context, entry *models.AuditEntry) error {
	query := `
		INSERT INTO audit_logs (
			entry_id, action, entity_type, entity_id, user_id, user_email,
			user_role, org_id, allowed, ip_address, changes, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
	`

	_, err := s.pool.Exec(ctx, query,
		entry.EntryID,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		entry.UserID,
		entry.UserEmail,
		entry.UserRole,
		entry.OrgID,
		entry.Allowed,
		entry.IPAddress,
		entry.Changes,
		entry.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	log.Debug().
		Str("entry_id", entry.EntryID.String()).
		Str("entity_type", entry.EntityType).
		Bool("allowed", entry.Allowed).
		Msg("Appended audit entry")

	return nil
}

// ListByOrgs returns entries whose acting organization is in orgIDs, newest
// first, capped at limit.
func (s *AuditStore) ListByOrgs(ctx context.Context, orgIDs []uuid.UUID, limit int) ([]*models.AuditEntry, error) {
	if len(orgIDs) == 0 {
		return []*models.AuditEntry{}, nil
	}

	query := `
		SELECT entry_id, action, entity_type, entity_id, user_id, user_email,
			user_role, org_id, allowed, ip_address, changes, created_at
		FROM audit_logs
		WHERE org_id = ANY($1)
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, orgIDs, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	entries := []*models.AuditEntry{}
	for rows.Next() {
		var entry models.AuditEntry
		err := rows.Scan(
			&entry.EntryID,
			&entry.Action,
			&entry.EntityType,
			&entry.EntityID,
			&entry.UserID,
			&entry.UserEmail,
			&entry.UserRole,
			&entry.OrgID,
			&entry.Allowed,
			&entry.IPAddress,
			&entry.Changes,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit entries: %w", err)
	}

	return entries, nil
}
