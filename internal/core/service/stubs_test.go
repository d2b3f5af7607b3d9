package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskflow/taskflow-api/internal/core/domain"
	"github.com/taskflow/taskflow-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory user repository (mirrors the soft-delete rules of the Mongo repo)
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu      sync.Mutex
	users   []*domain.User
	nextID  int
	findErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if !u.Deleted() && u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	c := cloneUser(user)
	c.ID = fmt.Sprintf("user-%d", r.nextID)
	r.users = append(r.users, c)
	return cloneUser(c), nil
}

func (r *stubUserRepo) FindActiveByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if !u.Deleted() && u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindActiveByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if !u.Deleted() && u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) SoftDelete(_ context.Context, id string) error {
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

func (r *stubUserRepo) List(_ context.Context, f ports.ListFilter) ([]*domain.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var live []*domain.User
	for _, u := range r.users {
		if !u.Deleted() {
			live = append(live, cloneUser(u))
		}
	}
	total := int64(len(live))
	skip := int(f.Skip())
	if skip > len(live) {
		return []*domain.User{}, total, nil
	}
	end := skip + f.Limit
	if end > len(live) {
		end = len(live)
	}
	return live[skip:end], total, nil
}

func (r *stubUserRepo) setActive(id string, active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			u.Active = active
		}
	}
}

// ---------------------------------------------------------------------------
// Synchronous bcrypt hasher counting verify calls
// ---------------------------------------------------------------------------

type stubHasher struct {
	mu       sync.Mutex
	verifies int

	// failHashes makes the next n Hash calls fail.
	failHashes int
}

func (h *stubHasher) Hash(_ context.Context, password string) (string, error) {
	h.mu.Lock()
	if h.failHashes > 0 {
		h.failHashes--
		h.mu.Unlock()
		return "", errHasherDown
	}
	h.mu.Unlock()
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return string(b), err
}

func (h *stubHasher) Verify(_ context.Context, password, hash string) (bool, error) {
	h.mu.Lock()
	h.verifies++
	h.mu.Unlock()
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil, nil
}

func (h *stubHasher) verifyCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.verifies
}

// ---------------------------------------------------------------------------
// Projects, tasks, activity, idempotency
// ---------------------------------------------------------------------------

type stubProjectRepo struct {
	byID   map[string]*domain.Project
	nextID int
}

func newStubProjectRepo() *stubProjectRepo {
	return &stubProjectRepo{byID: make(map[string]*domain.Project)}
}

func (r *stubProjectRepo) Create(_ context.Context, p *domain.Project) error {
	r.nextID++
	p.ID = fmt.Sprintf("project-%d", r.nextID)
	clone := *p
	r.byID[p.ID] = &clone
	return nil
}

func (r *stubProjectRepo) FindByID(_ context.Context, id string) (*domain.Project, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubProjectRepo) List(_ context.Context, f ports.ListFilter) ([]*domain.Project, int64, error) {
	var out []*domain.Project
	for _, p := range r.byID {
		clone := *p
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

type stubTaskRepo struct {
	byID      map[string]*domain.Task
	nextID    int
	createErr error
}

func newStubTaskRepo() *stubTaskRepo {
	return &stubTaskRepo{byID: make(map[string]*domain.Task)}
}

func (r *stubTaskRepo) Create(_ context.Context, t *domain.Task) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	t.ID = fmt.Sprintf("task-%d", r.nextID)
	clone := *t
	r.byID[t.ID] = &clone
	return nil
}

func (r *stubTaskRepo) FindByID(_ context.Context, id string) (*domain.Task, error) {
	t, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *stubTaskRepo) List(_ context.Context, f ports.ListTasksFilter) ([]*domain.Task, int64, error) {
	var out []*domain.Task
	for _, t := range r.byID {
		if f.Status != "" && string(t.Status) != f.Status {
			continue
		}
		if f.UserID != "" && t.UserID != f.UserID {
			continue
		}
		if f.ProjectID != "" && t.ProjectID != f.ProjectID {
			continue
		}
		clone := *t
		out = append(out, &clone)
	}
	return out, int64(len(out)), nil
}

func (r *stubTaskRepo) CountByProject(_ context.Context, projectID string) (int64, error) {
	var n int64
	for _, t := range r.byID {
		if t.ProjectID == projectID {
			n++
		}
	}
	return n, nil
}

func (r *stubTaskRepo) UpdateStatus(_ context.Context, id string, from domain.TaskStatus, entry domain.StatusHistoryEntry) error {
	t, ok := r.byID[id]
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

type stubActivityRepo struct {
	entries []*domain.TaskActivity
}

func (r *stubActivityRepo) Insert(_ context.Context, a *domain.TaskActivity) error {
	r.entries = append(r.entries, a)
	return nil
}

type stubIdemStore struct {
	keys      map[string]string
	lookupErr error
}

func newStubIdemStore() *stubIdemStore {
	return &stubIdemStore{keys: make(map[string]string)}
}

func (s *stubIdemStore) Lookup(_ context.Context, scope, key string) (string, bool, error) {
	if s.lookupErr != nil {
		return "", false, s.lookupErr
	}
	id, ok := s.keys[scope+"|"+key]
	return id, ok, nil
}

func (s *stubIdemStore) Remember(_ context.Context, scope, key, id string) error {
	if _, ok := s.keys[scope+"|"+key]; !ok {
		s.keys[scope+"|"+key] = id
	}
	return nil
}

var (
	errStoreDown  = errors.New("store unavailable")
	errHasherDown = errors.New("hasher unavailable")
)
