package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/taskflow/taskflow-api/internal/core/domain"
	"github.com/taskflow/taskflow-api/internal/core/ports"
)

type taskFixture struct {
	svc      *TaskService
	tasks    *stubTaskRepo
	users    *stubUserRepo
	activity *stubActivityRepo
	idem     *stubIdemStore
	assignee *domain.User
	project  *domain.Project
}

func newTaskFixture(t *testing.T) *taskFixture {
	t.Helper()
	ctx := context.Background()
	f := &taskFixture{
		tasks:    newStubTaskRepo(),
		users:    newStubUserRepo(),
		activity: &stubActivityRepo{},
		idem:     newStubIdemStore(),
	}
	projects := newStubProjectRepo()
	f.svc = NewTaskService(f.tasks, f.users, projects, f.activity, f.idem, zerolog.Nop())

	var err error
	f.assignee, err = f.users.Create(ctx, &domain.User{Name: "Alice", Email: "alice@x.com", Role: domain.RoleUser, Active: true})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	f.project = &domain.Project{Name: "Apollo"}
	if err := projects.Create(ctx, f.project); err != nil {
		t.Fatalf("create project: %v", err)
	}
	return f
}

func (f *taskFixture) input() ports.CreateTaskInput {
	return ports.CreateTaskInput{Title: "Write docs", UserID: f.assignee.ID, ProjectID: f.project.ID}
}

func TestTaskService_Create_Defaults(t *testing.T) {
	f := newTaskFixture(t)
	actor := domain.Principal{UserID: "creator", Role: domain.RoleUser}

	res, err := f.svc.Create(context.Background(), actor, f.input())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.AlreadyExisted {
		t.Fatalf("expected a fresh task")
	}
	if res.Task.Status != domain.TaskTodo || res.Task.Priority != domain.PriorityMedium {
		t.Fatalf("unexpected defaults: %s %s", res.Task.Status, res.Task.Priority)
	}
	if len(res.Task.StatusHistory) != 1 || res.Task.StatusHistory[0].ChangedBy != "creator" {
		t.Fatalf("unexpected history: %+v", res.Task.StatusHistory)
	}
}

func TestTaskService_Create_Validation(t *testing.T) {
	f := newTaskFixture(t)
	actor := domain.Principal{UserID: "creator", Role: domain.RoleUser}

	in := f.input()
	in.Title = "  "
	if _, err := f.svc.Create(context.Background(), actor, in); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	in = f.input()
	in.Priority = "URGENT"
	if _, err := f.svc.Create(context.Background(), actor, in); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for priority, got %v", err)
	}

	in = f.input()
	in.ProjectID = "missing"
	if _, err := f.svc.Create(context.Background(), actor, in); err != domain.ErrProjectNotFound {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestTaskService_Create_DeletedAssignee(t *testing.T) {
	f := newTaskFixture(t)
	if err := f.users.SoftDelete(context.Background(), f.assignee.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	_, err := f.svc.Create(context.Background(), domain.Principal{UserID: "creator"}, f.input())
	if err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestTaskService_Create_IdempotentReplay(t *testing.T) {
	f := newTaskFixture(t)
	actor := domain.Principal{UserID: "creator", Role: domain.RoleUser}
	in := f.input()
	in.IdempotencyKey = "key-1"

	first, err := f.svc.Create(context.Background(), actor, in)
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	second, err := f.svc.Create(context.Background(), actor, in)
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if !second.AlreadyExisted || second.Task.ID != first.Task.ID {
		t.Fatalf("expected replay of %s, got %+v", first.Task.ID, second)
	}
	if len(f.tasks.byID) != 1 {
		t.Fatalf("expected one stored task, got %d", len(f.tasks.byID))
	}

	// Same key from another actor is a different request.
	other, err := f.svc.Create(context.Background(), domain.Principal{UserID: "someone-else"}, in)
	if err != nil {
		t.Fatalf("other create: %v", err)
	}
	if other.AlreadyExisted {
		t.Fatalf("idempotency keys must be scoped per actor")
	}
}

func TestTaskService_Create_IdempotencyStoreDown(t *testing.T) {
	f := newTaskFixture(t)
	f.idem.lookupErr = errStoreDown
	in := f.input()
	in.IdempotencyKey = "key-1"

	res, err := f.svc.Create(context.Background(), domain.Principal{UserID: "creator"}, in)
	if err != nil {
		t.Fatalf("create should proceed without the idempotency store: %v", err)
	}
	if res.AlreadyExisted {
		t.Fatalf("expected a fresh task")
	}
}

func TestTaskService_UpdateStatus(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	res, err := f.svc.Create(ctx, domain.Principal{UserID: "creator"}, f.input())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := res.Task.ID

	stranger := domain.Principal{UserID: "stranger", Role: domain.RoleUser}
	if _, err := f.svc.UpdateStatus(ctx, stranger, id, domain.TaskInProgress); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	assignee := domain.Principal{UserID: f.assignee.ID, Role: domain.RoleUser}
	task, err := f.svc.UpdateStatus(ctx, assignee, id, domain.TaskInProgress)
	if err != nil {
		t.Fatalf("assignee update: %v", err)
	}
	if task.Status != domain.TaskInProgress || len(task.StatusHistory) != 2 {
		t.Fatalf("unexpected task after update: %+v", task)
	}

	admin := domain.Principal{UserID: "admin", Role: domain.RoleAdmin}
	if _, err := f.svc.UpdateStatus(ctx, admin, id, domain.TaskDone); err != nil {
		t.Fatalf("admin update: %v", err)
	}

	if _, err := f.svc.UpdateStatus(ctx, admin, id, domain.TaskTodo); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	if len(f.activity.entries) != 2 {
		t.Fatalf("expected 2 activity entries, got %d", len(f.activity.entries))
	}
	if f.activity.entries[1].ActorRole != domain.RoleAdmin {
		t.Fatalf("expected admin actor recorded, got %s", f.activity.entries[1].ActorRole)
	}
}

func TestTaskService_List_Filters(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := f.svc.Create(ctx, domain.Principal{UserID: "creator"}, f.input()); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	res, err := f.svc.List(ctx, ports.ListTasksFilter{ProjectID: f.project.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.Total != 3 || res.Limit != defaultPageSize {
		t.Fatalf("unexpected result: total=%d limit=%d", res.Total, res.Limit)
	}

	if _, err := f.svc.List(ctx, ports.ListTasksFilter{Status: "BLOCKED"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown status, got %v", err)
	}
}
