package ports

import (
	"context"

	"github.com/taskflow/taskflow-api/internal/core/domain"
)

// ListUsersResult is returned by UserService.List.
type ListUsersResult struct {
	Items      []*domain.User
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// UserService defines account management operations. The actor is the
// authenticated principal performing the call.
type UserService interface {
	Create(ctx context.Context, input RegisterInput) (*domain.User, error)
	Get(ctx context.Context, actor domain.Principal, id string) (*domain.User, error)
	List(ctx context.Context, filter ListFilter) (*ListUsersResult, error)
	Delete(ctx context.Context, actor domain.Principal, id string) error
	EnsureAdmin(ctx context.Context, name, email, password string) error
}
