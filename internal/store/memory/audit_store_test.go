package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/taskplane/taskplane/internal/models"
)

func newTestEntry(orgID uuid.UUID, allowed bool) *models.AuditEntry {
	userID := uuid.Must(uuid.NewV7())
	return &models.AuditEntry{
		EntryID:    uuid.Must(uuid.NewV7()),
		Action:     models.AuditActionRead,
		EntityType: "tasks",
		UserID:     &userID,
		OrgID:      orgID,
		Allowed:    allowed,
		CreatedAt:  time.Now(),
	}
}

func TestAuditStore_AppendAndList(t *testing.T) {
	st := NewAuditStore()
	ctx := context.Background()

	orgA := uuid.Must(uuid.NewV7())
	orgB := uuid.Must(uuid.NewV7())

	first := newTestEntry(orgA, true)
	second := newTestEntry(orgB, false)
	third := newTestEntry(orgA, false)

	for _, entry := range []*models.AuditEntry{first, second, third} {
		require.NoError(t, st.Append(ctx, entry))
	}

	t.Run("newest first, scoped to given orgs", func(t *testing.T) {
		entries, err := st.ListByOrgs(ctx, []uuid.UUID{orgA}, 100)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		require.Equal(t, third.EntryID, entries[0].EntryID)
		require.Equal(t, first.EntryID, entries[1].EntryID)
	})

	t.Run("limit caps the result", func(t *testing.T) {
		entries, err := st.ListByOrgs(ctx, []uuid.UUID{orgA, orgB}, 2)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		require.Equal(t, third.EntryID, entries[0].EntryID)
		require.Equal(t, second.EntryID, entries[1].EntryID)
	})

	t.Run("empty org set matches nothing", func(t *testing.T) {
		entries, err := st.ListByOrgs(ctx, nil, 100)
		require.NoError(t, err)
		require.Empty(t, entries)
	})
}

func TestAuditStore_Len(t *testing.T) {
	st := NewAuditStore()
	ctx := context.Background()

	require.Equal(t, 0, st.Len())

	require.NoError(t, st.Append(ctx, newTestEntry(uuid.Must(uuid.NewV7()), true)))
	require.Equal(t, 1, st.Len())
}
