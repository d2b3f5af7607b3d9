package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/taskflow/taskflow-api/internal/core/domain"
	"github.com/taskflow/taskflow-api/internal/core/ports"
)

// UserService implements account management.
type UserService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	log    zerolog.Logger
}

func NewUserService(repo ports.UserRepository, hasher ports.PasswordHasher, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, hasher: hasher, log: log}
}

// Create adds an account with an explicit role. Route access is restricted
// to admins by the router.
func (s *UserService) Create(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	if input.Role == "" {
		input.Role = domain.RoleUser
	}
	user, err := createUser(ctx, s.repo, s.hasher, input)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user created")
	return user, nil
}

// Get returns a live user. Non-admins may only read their own record.
func (s *UserService) Get(ctx context.Context, actor domain.Principal, id string) (*domain.User, error) {
	if !actor.IsAdmin() && actor.UserID != id {
		return nil, domain.ErrForbidden
	}
	return s.repo.FindActiveByID(ctx, id)
}

func (s *UserService) List(ctx context.Context, filter ports.ListFilter) (*ports.ListUsersResult, error) {
	filter = normalizePage(filter)

	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return &ports.ListUsersResult{
		Items:      users,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

// Delete soft-deletes a user. Tokens already issued to that user stay valid
// until they expire; only new logins are refused.
func (s *UserService) Delete(ctx context.Context, actor domain.Principal, id string) error {
	if !actor.IsAdmin() {
		return domain.ErrInsufficientRole
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("user_id", id).Str("deleted_by", actor.UserID).Msg("user soft-deleted")
	return nil
}

// EnsureAdmin creates an ADMIN account for email unless a live identity
// already owns it.
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	existing, err := s.repo.FindActiveByEmail(ctx, domain.NormalizeEmail(email))
	if err == nil {
		if existing.Role != domain.RoleAdmin {
			s.log.Warn().Str("user_id", existing.ID).Msg("bootstrap admin email belongs to a non-admin user")
		}
		return nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("ensure admin: %w", err)
	}

	user, err := createUser(ctx, s.repo, s.hasher, ports.RegisterInput{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	s.log.Info().Str("user_id", user.ID).Msg("bootstrap admin created")
	return nil
}
