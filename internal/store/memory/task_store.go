package memory

import (
	"bytes"
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/taskplane/taskplane/internal/models"
	"github.com/taskplane/taskplane/internal/store"
)

// TaskStore implements store.TaskStore using in-memory storage.
type TaskStore struct {
	mu sync.RWMutex

	tasks map[uuid.UUID]*models.Task // task_id -> Task
}

// NewTaskStore creates a new in-memory task store.
func NewTaskStore() *TaskStore {
	return &TaskStore{
		tasks: make(map[uuid.UUID]*models.Task),
	}
}

// Create creates a new task in memory.
func (s *TaskStore) Create(ctx context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[task.TaskID]; exists {
		return store.ErrTaskAlreadyExists
	}

	clone := *task
	s.tasks[task.TaskID] = &clone

	return nil
}

// Get retrieves a task by ID.
func (s *TaskStore) Get(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, exists := s.tasks[taskID]
	if !exists {
		return nil, store.ErrTaskNotFound
	}

	clone := *task
	return &clone, nil
}

// List returns tasks belonging to the given organizations, matching the
// filter, ordered by organization id then position ascending.
func (s *TaskStore) List(ctx context.Context, orgIDs []uuid.UUID, filter store.TaskFilter) ([]*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*models.Task{}
	for _, task := range s.tasks {
		if !slices.Contains(orgIDs, task.OrgID) {
			continue
		}
		if filter.Status != nil && task.Status != *filter.Status {
			continue
		}
		if filter.Category != nil && (task.Category == nil || *task.Category != *filter.Category) {
			continue
		}

		clone := *task
		result = append(result, &clone)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].OrgID != result[j].OrgID {
			return bytes.Compare(result[i].OrgID[:], result[j].OrgID[:]) < 0
		}
		return result[i].Position < result[j].Position
	})

	return result, nil
}

// Save updates an existing task.
func (s *TaskStore) Save(ctx context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[task.TaskID]; !exists {
		return store.ErrTaskNotFound
	}

	clone := *task
	s.tasks[task.TaskID] = &clone

	return nil
}

// Delete removes a task by ID.
func (s *TaskStore) Delete(ctx context.Context, taskID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[taskID]; !exists {
		return store.ErrTaskNotFound
	}

	delete(s.tasks, taskID)

	return nil
}

// MaxPosition returns the highest position among the organization's tasks,
// or -1 if the organization has none.
func (s *TaskStore) MaxPosition(ctx context.Context, orgID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	max := -1
	for _, task := range s.tasks {
		if task.OrgID == orgID && task.Position > max {
			max = task.Position
		}
	}

	return max, nil
}
