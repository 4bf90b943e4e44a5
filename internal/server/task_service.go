package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/taskplane/taskplane/internal/authz"
	"github.com/taskplane/taskplane/internal/models"
	"github.com/taskplane/taskplane/internal/store"
)

// CreateTaskInput holds the caller-supplied fields for task creation.
// Owner, organization and position are derived from the principal and the
// current store state, never from the input.
type CreateTaskInput struct {
	Title       string
	Description *string
	Category    *models.TaskCategory
}

// UpdateTaskInput is a partial patch; nil fields are left unchanged.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
	Category    *models.TaskCategory
	Position    *int
}

// TaskService applies org-scope resolution and entity access checks around
// task reads and writes. Role gating happens before it runs; the service
// only enforces organization boundaries.
//
// A task that doesn't exist and a task outside the principal's scope are
// deliberately indistinguishable: both surface store.ErrTaskNotFound, so
// callers cannot enumerate entities in other organizations.
type TaskService struct {
	tasks store.TaskStore
	orgs  store.OrganizationStore
	scope scopeResolver
}

// NewTaskService creates a new org-scoped task service.
func NewTaskService(tasks store.TaskStore, orgs store.OrganizationStore) *TaskService {
	return &TaskService{
		tasks: tasks,
		orgs:  orgs,
		scope: scopeResolver{orgs: orgs},
	}
}

// List returns all tasks within the principal's org scope matching the
// filter, ordered by organization id then position ascending.
func (s *TaskService) List(ctx context.Context, p models.Principal, filter store.TaskFilter) ([]*models.Task, error) {
	scope, err := s.scope.resolve(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve org scope: %w", err)
	}

	if len(scope.AllowedOrgIDs) == 0 {
		return []*models.Task{}, nil
	}

	return s.tasks.List(ctx, scope.AllowedOrgIDs, filter)
}

// Get retrieves a single task, returning store.ErrTaskNotFound both when
// the task doesn't exist and when it exists outside the principal's scope.
func (s *TaskService) Get(ctx context.Context, p models.Principal, taskID uuid.UUID) (*models.Task, error) {
	task, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}

	principalOrg, err := s.orgs.Get(ctx, p.OrgID)
	if err != nil {
		if errors.Is(err, store.ErrOrganizationNotFound) {
			return nil, store.ErrTaskNotFound
		}
		return nil, err
	}

	var targetOrg *models.Organization
	targetOrg, err = s.orgs.Get(ctx, task.OrgID)
	if err != nil {
		if !errors.Is(err, store.ErrOrganizationNotFound) {
			return nil, err
		}
		// An unresolved target org denies cross-org access below.
		targetOrg = nil
	}

	if !authz.CanAccessOrg(p, task.OrgID, principalOrg, targetOrg) {
		return nil, store.ErrTaskNotFound
	}

	return task, nil
}

// Create creates a task in the principal's own organization, owned by the
// principal, at the next position slot.
//
// The max-position read and the insert are not serialized: two concurrent
// creates in the same organization can both observe the same maximum and
// assign duplicate positions. Closing that gap requires a per-organization
// sequence or a serializable transaction in the store.
func (s *TaskService) Create(ctx context.Context, p models.Principal, in CreateTaskInput) (*models.Task, error) {
	max, err := s.tasks.MaxPosition(ctx, p.OrgID)
	if err != nil {
		return nil, fmt.Errorf("failed to get max task position: %w", err)
	}

	taskID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate task id: %w", err)
	}

	now := time.Now()
	task := &models.Task{
		TaskID:      taskID,
		Title:       in.Title,
		Description: in.Description,
		Status:      models.TaskStatusTodo,
		Category:    in.Category,
		Position:    max + 1,
		OwnerID:     p.UserID,
		OrgID:       p.OrgID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("task_id", task.TaskID.String()).
		Str("org_id", task.OrgID.String()).
		Int("position", task.Position).
		Msg("task created")

	return task, nil
}

// Update applies a partial patch to a task behind the same gated fetch as
// Get, inheriting its merged not-found behaviour.
func (s *TaskService) Update(ctx context.Context, p models.Principal, taskID uuid.UUID, patch UpdateTaskInput) (*models.Task, error) {
	task, err := s.Get(ctx, p, taskID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = patch.Description
	}
	if patch.Status != nil {
		task.Status = *patch.Status
	}
	if patch.Category != nil {
		task.Category = patch.Category
	}
	if patch.Position != nil {
		task.Position = *patch.Position
	}
	task.UpdatedAt = time.Now()

	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, err
	}

	return task, nil
}

// Delete removes a task behind the same gated fetch as Get, inheriting its
// merged not-found behaviour.
func (s *TaskService) Delete(ctx context.Context, p models.Principal, taskID uuid.UUID) error {
	task, err := s.Get(ctx, p, taskID)
	if err != nil {
		return err
	}

	if err := s.tasks.Delete(ctx, task.TaskID); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().
		Str("task_id", task.TaskID.String()).
		Str("org_id", task.OrgID.String()).
		Msg("task deleted")

	return nil
}
