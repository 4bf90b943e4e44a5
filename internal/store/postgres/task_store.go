package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/taskplane/taskplane/internal/models"
	"github.com/taskplane/taskplane/internal/store"
)

// TaskStore implements store.TaskStore using PostgreSQL.
type TaskStore struct {
	pool *pgxpool.Pool
}

// NewTaskStore creates a new PostgreSQL-backed task store.
func NewTaskStore(pool *pgxpool.Pool) *TaskStore {
	return &TaskStore{
		pool: pool,
	}
}

// Create creates a new task in the database.
func (s *TaskStore) Create(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (
			task_id, title, description, status, category, position,
			owner_id, org_id, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
	`

	_, err := s.pool.Exec(ctx, query,
		task.TaskID,
		task.Title,
		task.Description,
		task.Status,
		task.Category,
		task.Position,
		task.OwnerID,
		task.OrgID,
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrTaskAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: organization %s", store.ErrOrganizationNotFound, task.OrgID)
		}
		return fmt.Errorf("failed to create task: %w", err)
	}

	log.Debug().
		Str("task_id", task.TaskID.String()).
		Str("org_id", task.OrgID.String()).
		Int("position", task.Position).
		Msg("Created task")

	return nil
}

// Get retrieves a task by ID.
func (s *TaskStore) Get(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	query := `
		SELECT task_id, title, description, status, category, position,
			owner_id, org_id, created_at, updated_at
		FROM tasks
		WHERE task_id = $1
	`

	var task models.Task
	err := s.pool.QueryRow(ctx, query, taskID).Scan(
		&task.TaskID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.Category,
		&task.Position,
		&task.OwnerID,
		&task.OrgID,
		&task.CreatedAt,
		&task.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return &task, nil
}

// List returns tasks belonging to the given organizations, matching the
// filter, ordered by organization id then position ascending.
func (s *TaskStore) List(ctx context.Context, orgIDs []uuid.UUID, filter store.TaskFilter) ([]*models.Task, error) {
	if len(orgIDs) == 0 {
		return []*models.Task{}, nil
	}

	query := `
		SELECT task_id, title, description, status, category, position,
			owner_id, org_id, created_at, updated_at
		FROM tasks
		WHERE org_id = ANY($1)
	`
	args := []any{orgIDs}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}

	query += " ORDER BY org_id ASC, position ASC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*models.Task{}
	for rows.Next() {
		var task models.Task
		err := rows.Scan(
			&task.TaskID,
			&task.Title,
			&task.Description,
			&task.Status,
			&task.Category,
			&task.Position,
			&task.OwnerID,
			&task.OrgID,
			&task.CreatedAt,
			&task.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, &task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}

// Save updates an existing task.
func (s *TaskStore) Save(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks SET
			title = $2,
			description = $3,
			status = $4,
			category = $5,
			position = $6,
			updated_at = $7
		WHERE task_id = $1
	`

	result, err := s.pool.Exec(ctx, query,
		task.TaskID,
		task.Title,
		task.Description,
		task.Status,
		task.Category,
		task.Position,
		task.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrTaskNotFound
	}

	log.Debug().
		Str("task_id", task.TaskID.String()).
		Msg("Updated task")

	return nil
}

// Delete removes a task by ID.
func (s *TaskStore) Delete(ctx context.Context, taskID uuid.UUID) error {
	query := `DELETE FROM tasks WHERE task_id = $1`

	result, err := s.pool.Exec(ctx, query, taskID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrTaskNotFound
	}

	log.Debug().
		Str("task_id", taskID.String()).
		Msg("Deleted task")

	return nil
}

// MaxPosition returns the highest position among the organization's tasks,
// or -1 if the organization has none. The read is not serialized against
// concurrent inserts; callers that need a strict sequence must serialize
// externally.
func (s *TaskStore) MaxPosition(ctx context.Context, orgID uuid.UUID) (int, error) {
	query := `SELECT COALESCE(MAX(position), -1) FROM tasks WHERE org_id = $1`

	var max int
	if err := s.pool.QueryRow(ctx, query, orgID).Scan(&max); err != nil {
		return 0, fmt.Errorf("failed to get max task position: %w", err)
	}

	return max, nil
}
