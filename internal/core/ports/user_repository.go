package ports

import (
	"context"

	"github.com/taskflow/taskflow-api/internal/core/domain"
)

// ListFilter carries pagination for list queries.
type ListFilter struct {
	Page  int // 1-based
	Limit int // max rows per page (capped at 100 by services)
}

// Skip returns the number of rows preceding the requested page.
func (f ListFilter) Skip() int64 {
	if f.Page < 1 || f.Limit < 1 {
		return 0
	}
	return int64(f.Page-1) * int64(f.Limit)
}

// UserRepository is the credential store.
//
// Every read method excludes soft-deleted identities: implementations must
// apply that predicate themselves rather than rely on callers to filter.
type UserRepository interface {
	// FindActiveByEmail returns the non-deleted identity owning email, whatever
	// its Active flag. email is expected in normalized form.
	FindActiveByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindActiveByID returns the non-deleted identity with the given id.
	FindActiveByID(ctx context.Context, id string) (*domain.User, error)
	// Create persists a new identity. It fails with domain.ErrUserExists when a
	// non-deleted identity already owns the email.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// SoftDelete marks the identity deleted. It fails with
	// domain.ErrUserNotFound when no live identity has that id.
	SoftDelete(ctx context.Context, id string) error
	// List returns a page of non-deleted identities and their total count.
	List(ctx context.Context, filter ListFilter) ([]*domain.User, int64, error)
}
