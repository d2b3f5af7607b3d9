package ports

import (
	"context"

	"github.com/taskflow/taskflow-api/internal/core/domain"
)

// ProjectRepository defines persistence operations for projects.
type ProjectRepository interface {
	Create(ctx context.Context, p *domain.Project) error
	FindByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context, filter ListFilter) ([]*domain.Project, int64, error)
}

// CreateProjectInput carries the fields of a new project.
type CreateProjectInput struct {
	Name        string
	Description string
}

// ListProjectsResult is returned by ProjectService.List.
type ListProjectsResult struct {
	Items      []*domain.Project
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// ProjectService defines use-case operations for projects.
type ProjectService interface {
	Create(ctx context.Context, input CreateProjectInput) (*domain.Project, error)
	Get(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context, filter ListFilter) (*ListProjectsResult, error)
}
