package ports

import (
	"context"
	"time"

	"github.com/taskflow/taskflow-api/internal/core/domain"
)

// ListTasksFilter carries all query parameters for listing tasks.
type ListTasksFilter struct {
	Status    string // optional
	UserID    string // optional
	ProjectID string // optional
	ListFilter
}

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	Create(ctx context.Context, t *domain.Task) error
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter ListTasksFilter) ([]*domain.Task, int64, error)
	CountByProject(ctx context.Context, projectID string) (int64, error)
	// UpdateStatus atomically sets the task status and appends a history
	// entry, provided the stored status still equals from.
	UpdateStatus(ctx context.Context, id string, from domain.TaskStatus, entry domain.StatusHistoryEntry) error
}

// ActivityRepository persists the task audit trail.
type ActivityRepository interface {
	Insert(ctx context.Context, a *domain.TaskActivity) error
}

// IdempotencyStore remembers which task a client-supplied key produced.
type IdempotencyStore interface {
	Lookup(ctx context.Context, scope, key string) (string, bool, error)
	Remember(ctx context.Context, scope, key, id string) error
}

// CreateTaskInput carries the fields of a new task.
type CreateTaskInput struct {
	Title          string
	Description    string
	Status         domain.TaskStatus
	Priority       domain.Priority
	DueDate        *time.Time
	UserID         string
	ProjectID      string
	IdempotencyKey string
}

// CreateTaskResult is returned by TaskService.Create.
type CreateTaskResult struct {
	Task *domain.Task
	// AlreadyExisted is true when the Idempotency-Key matched an earlier task.
	AlreadyExisted bool
}

// ListTasksResult is returned by TaskService.List.
type ListTasksResult struct {
	Items      []*domain.Task
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// TaskService defines use-case operations for tasks.
type TaskService interface {
	Create(ctx context.Context, actor domain.Principal, input CreateTaskInput) (*CreateTaskResult, error)
	Get(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter ListTasksFilter) (*ListTasksResult, error)
	UpdateStatus(ctx context.Context, actor domain.Principal, id string, status domain.TaskStatus) (*domain.Task, error)
}
