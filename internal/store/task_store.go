package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/taskplane/taskplane/internal/models"
)

// Sentinel errors for task store operations
var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrTaskAlreadyExists = errors.New("task already exists")
)

// TaskFilter holds the optional filters for task listing. Nil fields
// match everything.
type TaskFilter struct {
	Status   *models.TaskStatus
	Category *models.TaskCategory
}

// TaskStore defines the interface for task storage operations. The store
// itself applies no authorization; callers pass in the set of organization
// ids already resolved for the principal.
type TaskStore interface {
	// Create creates a new task.
	// Returns ErrTaskAlreadyExists if a task with the same ID already exists.
	Create(ctx context.Context, task *models.Task) error

	// Get retrieves a task by ID.
	// Returns ErrTaskNotFound if the task doesn't exist.
	Get(ctx context.Context, taskID uuid.UUID) (*models.Task, error)

	// List returns all tasks belonging to the given organizations, matching
	// the filter, ordered by organization id then position ascending.
	List(ctx context.Context, orgIDs []uuid.UUID, filter TaskFilter) ([]*models.Task, error)

	// Save updates an existing task.
	// Returns ErrTaskNotFound if the task doesn't exist.
	Save(ctx context.Context, task *models.Task) error

	// Delete removes a task by ID.
	// Returns ErrTaskNotFound if the task doesn't exist.
	Delete(ctx context.Context, taskID uuid.UUID) error

	// MaxPosition returns the highest position among the organization's
	// tasks, or -1 if the organization has none. This is a plain read: two
	// concurrent callers can observe the same value before either writes.
	MaxPosition(ctx context.Context, orgID uuid.UUID) (int, error)
}
