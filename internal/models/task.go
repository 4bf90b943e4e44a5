package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the workflow state of a task.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

// ParseTaskStatus validates and converts a status string.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(s) {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return TaskStatus(s), nil
	default:
		return "", fmt.Errorf("unknown task status: %q", s)
	}
}

// TaskCategory is an optional grouping for tasks.
type TaskCategory string

const (
	TaskCategoryWork     TaskCategory = "WORK"
	TaskCategoryPersonal TaskCategory = "PERSONAL"
)

// ParseTaskCategory validates and converts a category string.
func ParseTaskCategory(s string) (TaskCategory, error) {
	switch TaskCategory(s) {
	case TaskCategoryWork, TaskCategoryPersonal:
		return TaskCategory(s), nil
	default:
		return "", fmt.Errorf("unknown task category: %q", s)
	}
}

// Task is an org-owned work item. Tasks are only created, mutated and
// deleted through the org-scoped task service; Position is an ordering hint
// within the owning organization.
type Task struct {
	TaskID      uuid.UUID     `json:"id"` // UUIDv7
	Title       string        `json:"title"`
	Description *string       `json:"description"`
	Status      TaskStatus    `json:"status"`
	Category    *TaskCategory `json:"category"`
	Position    int           `json:"position"`
	OwnerID     uuid.UUID     `json:"ownerId"` // creator
	OrgID       uuid.UUID     `json:"organizationId"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}
