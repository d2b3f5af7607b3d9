package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/taskflow/taskflow-api/internal/core/domain"
	"github.com/taskflow/taskflow-api/internal/core/ports"
)

// memStore is an in-memory stand-in for the Mongo repositories. It applies
// the same "exclude deleted" rule on every user lookup.
type memStore struct {
	mu       sync.Mutex
	seq      int
	users    []*domain.User
	projects map[string]*domain.Project
	tasks    map[string]*domain.Task
}

func newMemStore() *memStore {
	return &memStore{
		projects: make(map[string]*domain.Project),
		tasks:    make(map[string]*domain.Task),
	}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

type memUsers struct{ *memStore }

func (r memUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if !existing.Deleted() && existing.Email == u.Email {
			return nil, domain.ErrUserExists
		}
	}
	c := *u
	c.ID = r.nextID("user")
	r.users = append(r.users, &c)
	out := c
	return &out, nil
}

func (r memUsers) find(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if !u.Deleted() && match(u) {
			c := *u
			return &c, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r memUsers) FindActiveByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

func (r memUsers) FindActiveByID(_ context.Context, id string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.ID == id })
}

func (r memUsers) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if !u.Deleted() && u.ID == id {
			now := time.Now().UTC()
			u.DeletedAt = &now
			return nil
		}
	}
	return domain.ErrUserNotFound
}

func (r memUsers) List(_ context.Context, f ports.ListFilter) ([]*domain.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, u := range r.users {
		if !u.Deleted() {
			c := *u
			out = append(out, &c)
		}
	}
	return out, int64(len(out)), nil
}

type memProjects struct{ *memStore }

func (r memProjects) Create(_ context.Context, p *domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = r.nextID("project")
	c := *p
	r.projects[p.ID] = &c
	return nil
}

func (r memProjects) FindByID(_ context.Context, id string) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	c := *p
	return &c, nil
}

func (r memProjects) List(_ context.Context, _ ports.ListFilter) ([]*domain.Project, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Project
	for _, p := range r.projects {
		c := *p
		out = append(out, &c)
	}
	return out, int64(len(out)), nil
}

type memTasks struct{ *memStore }

func (r memTasks) Create(_ context.Context, t *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = r.nextID("task")
	c := *t
	r.tasks[t.ID] = &c
	return nil
}

func (r memTasks) FindByID(_ context.Context, id string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	c := *t
	c.StatusHistory = append([]domain.StatusHistoryEntry(nil), t.StatusHistory...)
	return &c, nil
}

func (r memTasks) List(_ context.Context, f ports.ListTasksFilter) ([]*domain.Task, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Task
	for _, t := range r.tasks {
		if f.ProjectID != "" && t.ProjectID != f.ProjectID {
			continue
		}
		c := *t
		out = append(out, &c)
	}
	return out, int64(len(out)), nil
}

func (r memTasks) CountByProject(_ context.Context, projectID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, t := range r.tasks {
		if t.ProjectID == projectID {
			n++
		}
	}
	return n, nil
}

func (r memTasks) UpdateStatus(_ context.Context, id string, from domain.TaskStatus, entry domain.StatusHistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return domain.ErrTaskNotFound
	}
	if t.Status != from {
		return domain.ErrInvalidTransition
	}
	t.Status = entry.Status
	t.StatusHistory = append(t.StatusHistory, entry)
	return nil
}

type memActivity struct{}

func (memActivity) Insert(context.Context, *domain.TaskActivity) error { return nil }
