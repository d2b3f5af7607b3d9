package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskflow/taskflow-api/internal/core/domain"
	"github.com/taskflow/taskflow-api/internal/core/ports"
)

type ProjectService struct {
	repo   ports.ProjectRepository
	tasks  ports.TaskRepository
	logger zerolog.Logger
}

func NewProjectService(repo ports.ProjectRepository, tasks ports.TaskRepository, logger zerolog.Logger) *ProjectService {
	return &ProjectService{repo: repo, tasks: tasks, logger: logger}
}

func (s *ProjectService) Create(ctx context.Context, input ports.CreateProjectInput) (*domain.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}

	now := time.Now().UTC()
	p := &domain.Project{
		Name:        name,
		Description: input.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.Error().Err(err).Msg("failed to create project")
		return nil, err
	}

	s.logger.Info().Str("project_id", p.ID).Msg("project created")
	return p, nil
}

// Get returns a project with its task count.
func (s *ProjectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.withTaskCount(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProjectService) List(ctx context.Context, filter ports.ListFilter) (*ports.ListProjectsResult, error) {
	filter = normalizePage(filter)

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	for _, p := range items {
		if err := s.withTaskCount(ctx, p); err != nil {
			return nil, err
		}
	}

	return &ports.ListProjectsResult{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

func (s *ProjectService) withTaskCount(ctx context.Context, p *domain.Project) error {
	n, err := s.tasks.CountByProject(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("count tasks: %w", err)
	}
	p.TaskCount = n
	return nil
}
