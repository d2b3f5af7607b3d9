package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskflow/taskflow-api/internal/api/metrics"
	"github.com/taskflow/taskflow-api/internal/core/domain"
	"github.com/taskflow/taskflow-api/internal/core/ports"
)

type TaskService struct {
	repo     ports.TaskRepository
	users    ports.UserRepository
	projects ports.ProjectRepository
	activity ports.ActivityRepository
	idem     ports.IdempotencyStore
	logger   zerolog.Logger
}

func NewTaskService(
	repo ports.TaskRepository,
	users ports.UserRepository,
	projects ports.ProjectRepository,
	activity ports.ActivityRepository,
	idem ports.IdempotencyStore,
	logger zerolog.Logger,
) *TaskService {
	return &TaskService{
		repo:     repo,
		users:    users,
		projects: projects,
		activity: activity,
		idem:     idem,
		logger:   logger,
	}
}

// Create creates a new task. If an idempotency key is provided and already
// seen for this actor, the previously created task is returned without side
// effects. Idempotency store failures are logged and never block creation.
func (s *TaskService) Create(ctx context.Context, actor domain.Principal, input ports.CreateTaskInput) (*ports.CreateTaskResult, error) {
	scope := "task:" + actor.UserID

	if input.IdempotencyKey != "" {
		if existing := s.replay(ctx, scope, input.IdempotencyKey); existing != nil {
			metrics.IdempotencyReplaysTotal.Inc()
			return &ports.CreateTaskResult{Task: existing, AlreadyExisted: true}, nil
		}
	}

	if err := validateTaskInput(&input); err != nil {
		return nil, err
	}

	// The assignee must be a live user; soft-deleted users cannot receive work.
	if _, err := s.users.FindActiveByID(ctx, input.UserID); err != nil {
		return nil, err
	}
	if _, err := s.projects.FindByID(ctx, input.ProjectID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	task := &domain.Task{
		Title:          input.Title,
		Description:    input.Description,
		Status:         input.Status,
		Priority:       input.Priority,
		DueDate:        input.DueDate,
		UserID:         input.UserID,
		ProjectID:      input.ProjectID,
		IdempotencyKey: input.IdempotencyKey,
		StatusHistory: []domain.StatusHistoryEntry{
			{Status: input.Status, Timestamp: now, ChangedBy: actor.UserID},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, task); err != nil {
		s.logger.Error().Err(err).Msg("failed to create task")
		return nil, err
	}

	if input.IdempotencyKey != "" {
		if err := s.idem.Remember(ctx, scope, input.IdempotencyKey, task.ID); err != nil {
			s.logger.Warn().Err(err).Str("task_id", task.ID).Msg("failed to record idempotency key")
		}
	}

	metrics.TasksCreatedTotal.WithLabelValues(string(task.Priority)).Inc()
	s.logger.Info().Str("task_id", task.ID).Str("project_id", task.ProjectID).Str("created_by", actor.UserID).Msg("task created")

	return &ports.CreateTaskResult{Task: task}, nil
}

func (s *TaskService) replay(ctx context.Context, scope, key string) *domain.Task {
	id, ok, err := s.idem.Lookup(ctx, scope, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency lookup failed, creating anyway")
		return nil
	}
	if !ok {
		return nil
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Warn().Err(err).Str("task_id", id).Msg("idempotent task not found, creating anyway")
		return nil
	}
	s.logger.Info().Str("idempotency_key", key).Str("task_id", id).Msg("idempotent replay")
	return existing
}

func validateTaskInput(in *ports.CreateTaskInput) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if in.Status == "" {
		in.Status = domain.TaskTodo
	}
	if !in.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, in.Status)
	}
	if in.Priority == "" {
		in.Priority = domain.PriorityMedium
	}
	if !in.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", domain.ErrValidation, in.Priority)
	}
	if in.UserID == "" || in.ProjectID == "" {
		return fmt.Errorf("%w: user_id and project_id are required", domain.ErrValidation)
	}
	return nil
}

func (s *TaskService) Get(ctx context.Context, id string) (*domain.Task, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *TaskService) List(ctx context.Context, filter ports.ListTasksFilter) (*ports.ListTasksResult, error) {
	filter.ListFilter = normalizePage(filter.ListFilter)
	if filter.Status != "" && !domain.TaskStatus(filter.Status).Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, filter.Status)
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return &ports.ListTasksResult{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

// UpdateStatus moves a task to status. Only the assignee or an admin may do
// so, and the transition must be allowed by the task state machine.
func (s *TaskService) UpdateStatus(ctx context.Context, actor domain.Principal, id string, status domain.TaskStatus) (*domain.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !task.Editable(actor) {
		return nil, domain.ErrForbidden
	}
	if !task.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, task.Status, status)
	}

	entry := domain.StatusHistoryEntry{Status: status, Timestamp: time.Now().UTC(), ChangedBy: actor.UserID}
	if err := s.repo.UpdateStatus(ctx, id, task.Status, entry); err != nil {
		return nil, err
	}

	// Audit trail (non-fatal on failure).
	if err := s.activity.Insert(ctx, &domain.TaskActivity{
		TaskID:    id,
		From:      task.Status,
		To:        status,
		ActorID:   actor.UserID,
		ActorRole: actor.Role,
		Timestamp: entry.Timestamp,
	}); err != nil {
		s.logger.Warn().Err(err).Str("task_id", id).Msg("failed to insert task activity")
	}

	metrics.TaskTransitionsTotal.WithLabelValues(string(status)).Inc()
	s.logger.Info().Str("task_id", id).Str("from", string(task.Status)).Str("to", string(status)).Msg("task status changed")

	task.Status = status
	task.UpdatedAt = entry.Timestamp
	task.StatusHistory = append(task.StatusHistory, entry)
	return task, nil
}
