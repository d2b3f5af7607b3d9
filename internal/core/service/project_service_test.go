package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/taskflow/taskflow-api/internal/core/domain"
	"github.com/taskflow/taskflow-api/internal/core/ports"
)

func TestProjectService_CreateAndGet(t *testing.T) {
	projects := newStubProjectRepo()
	tasks := newStubTaskRepo()
	svc := NewProjectService(projects, tasks, zerolog.Nop())
	ctx := context.Background()

	p, err := svc.Create(ctx, ports.CreateProjectInput{Name: " Apollo ", Description: "moonshot"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Name != "Apollo" {
		t.Fatalf("expected trimmed name, got %q", p.Name)
	}

	tasks.byID["t1"] = &domain.Task{ID: "t1", ProjectID: p.ID}
	tasks.byID["t2"] = &domain.Task{ID: "t2", ProjectID: p.ID}

	got, err := svc.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TaskCount != 2 {
		t.Fatalf("expected task count 2, got %d", got.TaskCount)
	}

	if _, err := svc.Get(ctx, "missing"); err != domain.ErrProjectNotFound {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestProjectService_Create_Validation(t *testing.T) {
	svc := NewProjectService(newStubProjectRepo(), newStubTaskRepo(), zerolog.Nop())

	if _, err := svc.Create(context.Background(), ports.CreateProjectInput{}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
