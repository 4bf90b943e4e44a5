//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/taskplane/taskplane/internal/models"
	"github.com/taskplane/taskplane/internal/store"
)

func setupPostgresContainer(t *testing.T, ctx context.Context) (*pgxpool.Pool, func()) {
	// Start postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connString := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	pool, err := NewPool(ctx, &PoolConfig{ConnString: connString})
	require.NoError(t, err)

	err = Migrate(ctx, pool)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		_ = container.Terminate(ctx)
	}

	return pool, cleanup
}

func createOrg(t *testing.T, orgs *OrganizationStore, ctx context.Context, name string, parentID *uuid.UUID) *models.Organization {
	t.Helper()

	now := time.Now()
	org := &models.Organization{
		OrgID:     uuid.Must(uuid.NewV7()),
		Name:      name,
		ParentID:  parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, orgs.Create(ctx, org))
	return org
}

func TestIntegration_OrganizationStore(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	orgs := NewOrganizationStore(pool)

	root := createOrg(t, orgs, ctx, "root", nil)
	childA := createOrg(t, orgs, ctx, "child-a", &root.OrgID)
	childB := createOrg(t, orgs, ctx, "child-b", &root.OrgID)

	t.Run("get round trip", func(t *testing.T) {
		got, err := orgs.Get(ctx, childA.OrgID)
		require.NoError(t, err)
		require.Equal(t, "child-a", got.Name)
		require.NotNil(t, got.ParentID)
		require.Equal(t, root.OrgID, *got.ParentID)
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := orgs.Get(ctx, uuid.Must(uuid.NewV7()))
		require.ErrorIs(t, err, store.ErrOrganizationNotFound)
	})

	t.Run("duplicate id", func(t *testing.T) {
		err := orgs.Create(ctx, root)
		require.ErrorIs(t, err, store.ErrOrganizationAlreadyExists)
	})

	t.Run("list children oldest first", func(t *testing.T) {
		children, err := orgs.ListChildren(ctx, root.OrgID)
		require.NoError(t, err)
		require.Len(t, children, 2)
		require.Equal(t, childA.OrgID, children[0].OrgID)
		require.Equal(t, childB.OrgID, children[1].OrgID)
	})

	t.Run("leaf org has no children", func(t *testing.T) {
		children, err := orgs.ListChildren(ctx, childA.OrgID)
		require.NoError(t, err)
		require.Empty(t, children)
	})
}

func TestIntegration_TaskStore(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	orgs := NewOrganizationStore(pool)
	tasks := NewTaskStore(pool)

	root := createOrg(t, orgs, ctx, "root", nil)
	child := createOrg(t, orgs, ctx, "child", &root.OrgID)

	newTask := func(orgID uuid.UUID, title string, position int) *models.Task {
		now := time.Now()
		return &models.Task{
			TaskID:    uuid.Must(uuid.NewV7()),
			Title:     title,
			Status:    models.TaskStatusTodo,
			Position:  position,
			OwnerID:   uuid.Must(uuid.NewV7()),
			OrgID:     orgID,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	t.Run("max position on empty org", func(t *testing.T) {
		max, err := tasks.MaxPosition(ctx, root.OrgID)
		require.NoError(t, err)
		require.Equal(t, -1, max)
	})

	rootTask := newTask(root.OrgID, "root task", 0)
	childTask0 := newTask(child.OrgID, "child task 0", 0)
	childTask1 := newTask(child.OrgID, "child task 1", 1)
	require.NoError(t, tasks.Create(ctx, rootTask))
	require.NoError(t, tasks.Create(ctx, childTask0))
	require.NoError(t, tasks.Create(ctx, childTask1))

	t.Run("get round trip", func(t *testing.T) {
		got, err := tasks.Get(ctx, rootTask.TaskID)
		require.NoError(t, err)
		require.Equal(t, rootTask.Title, got.Title)
		require.Equal(t, rootTask.OrgID, got.OrgID)
	})

	t.Run("list filters by org set", func(t *testing.T) {
		got, err := tasks.List(ctx, []uuid.UUID{child.OrgID}, store.TaskFilter{})
		require.NoError(t, err)
		require.Len(t, got, 2)
		require.Equal(t, childTask0.TaskID, got[0].TaskID, "ordered by position")

		got, err = tasks.List(ctx, []uuid.UUID{root.OrgID, child.OrgID}, store.TaskFilter{})
		require.NoError(t, err)
		require.Len(t, got, 3)
	})

	t.Run("list applies status filter", func(t *testing.T) {
		done := models.TaskStatusDone
		got, err := tasks.List(ctx, []uuid.UUID{root.OrgID, child.OrgID}, store.TaskFilter{Status: &done})
		require.NoError(t, err)
		require.Empty(t, got)
	})

	t.Run("max position tracks highest slot", func(t *testing.T) {
		max, err := tasks.MaxPosition(ctx, child.OrgID)
		require.NoError(t, err)
		require.Equal(t, 1, max)
	})

	t.Run("save updates fields", func(t *testing.T) {
		childTask0.Title = "renamed"
		childTask0.Status = models.TaskStatusInProgress
		childTask0.UpdatedAt = time.Now()
		require.NoError(t, tasks.Save(ctx, childTask0))

		got, err := tasks.Get(ctx, childTask0.TaskID)
		require.NoError(t, err)
		require.Equal(t, "renamed", got.Title)
		require.Equal(t, models.TaskStatusInProgress, got.Status)
	})

	t.Run("delete removes the row", func(t *testing.T) {
		require.NoError(t, tasks.Delete(ctx, childTask1.TaskID))

		_, err := tasks.Get(ctx, childTask1.TaskID)
		require.ErrorIs(t, err, store.ErrTaskNotFound)

		err = tasks.Delete(ctx, childTask1.TaskID)
		require.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("create rejects unknown org", func(t *testing.T) {
		err := tasks.Create(ctx, newTask(uuid.Must(uuid.NewV7()), "orphan", 0))
		require.Error(t, err)
	})
}

func TestIntegration_AuditStore(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	orgs := NewOrganizationStore(pool)
	audits := NewAuditStore(pool)

	root := createOrg(t, orgs, ctx, "root", nil)
	child := createOrg(t, orgs, ctx, "child", &root.OrgID)

	userID := uuid.Must(uuid.NewV7())
	entityID := uuid.Must(uuid.NewV7())

	appendEntry := func(orgID uuid.UUID, action models.AuditAction, at time.Time) *models.AuditEntry {
		entry := &models.AuditEntry{
			EntryID:    uuid.Must(uuid.NewV7()),
			Action:     action,
			EntityType: "tasks",
			EntityID:   &entityID,
			UserID:     &userID,
			UserEmail:  "actor@test",
			UserRole:   models.RoleAdmin,
			OrgID:      orgID,
			Allowed:    true,
			IPAddress:  "203.0.113.9",
			CreatedAt:  at,
		}
		require.NoError(t, audits.Append(ctx, entry))
		return entry
	}

	base := time.Now().Add(-time.Hour)
	rootEntry := appendEntry(root.OrgID, models.AuditActionCreate, base)
	childOld := appendEntry(child.OrgID, models.AuditActionRead, base.Add(time.Minute))
	childNew := appendEntry(child.OrgID, models.AuditActionDelete, base.Add(2*time.Minute))

	t.Run("list by orgs newest first", func(t *testing.T) {
		entries, err := audits.ListByOrgs(ctx, []uuid.UUID{root.OrgID, child.OrgID}, 10)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		require.Equal(t, childNew.EntryID, entries[0].EntryID)
		require.Equal(t, childOld.EntryID, entries[1].EntryID)
		require.Equal(t, rootEntry.EntryID, entries[2].EntryID)
	})

	t.Run("list honours the org filter", func(t *testing.T) {
		entries, err := audits.ListByOrgs(ctx, []uuid.UUID{child.OrgID}, 10)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		for _, entry := range entries {
			require.Equal(t, child.OrgID, entry.OrgID)
		}
	})

	t.Run("limit truncates", func(t *testing.T) {
		entries, err := audits.ListByOrgs(ctx, []uuid.UUID{root.OrgID, child.OrgID}, 1)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Equal(t, childNew.EntryID, entries[0].EntryID)
	})

	t.Run("actor fields round trip", func(t *testing.T) {
		entries, err := audits.ListByOrgs(ctx, []uuid.UUID{root.OrgID}, 10)
		require.NoError(t, err)
		require.Len(t, entries, 1)

		entry := entries[0]
		require.NotNil(t, entry.UserID)
		require.Equal(t, userID, *entry.UserID)
		require.Equal(t, "actor@test", entry.UserEmail)
		require.Equal(t, models.RoleAdmin, entry.UserRole)
		require.Equal(t, "203.0.113.9", entry.IPAddress)
	})
}
