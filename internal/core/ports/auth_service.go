package ports

import (
	"context"
	"time"

	"github.com/taskflow/taskflow-api/internal/core/domain"
)

// PasswordHasher hashes and verifies passwords. Verify reports false for a
// mismatch or a malformed hash; errors are reserved for cancellation and
// infrastructure failures.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, password, hash string) (bool, error)
}

// TokenIssuer signs bearer tokens for an identity.
type TokenIssuer interface {
	Issue(user *domain.User) (token string, expiresAt time.Time, err error)
}

// TokenValidator verifies bearer tokens. Failures are one of
// domain.ErrMalformedToken, domain.ErrBadSignature or domain.ErrTokenExpired.
type TokenValidator interface {
	Validate(token string) (*domain.Claims, error)
}

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// AuthService covers the public authentication endpoints.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}
