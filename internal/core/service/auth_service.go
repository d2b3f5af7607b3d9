package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskflow/taskflow-api/internal/api/metrics"
	"github.com/taskflow/taskflow-api/internal/core/domain"
	"github.com/taskflow/taskflow-api/internal/core/ports"
)

// AuthService implements registration and login.
//
// Login never tells the caller which check failed: an unknown email, a wrong
// password and a disabled account all return domain.ErrInvalidCredentials,
// and the unknown-email path still pays for one bcrypt comparison.
type AuthService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
	log    zerolog.Logger

	decoyMu   sync.Mutex
	decoyHash string
}

func NewAuthService(repo ports.UserRepository, hasher ports.PasswordHasher, tokens ports.TokenIssuer, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, hasher: hasher, tokens: tokens, log: log}
}

// Register creates a USER account. The role in input is ignored.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	input.Role = domain.RoleUser
	return createUser(ctx, s.repo, s.hasher, input)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindActiveByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}

	var hash string
	if user != nil {
		hash = user.PasswordHash
	} else if hash, err = s.decoy(ctx); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}

	ok, err := s.hasher.Verify(ctx, password, hash)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}

	if user == nil || !ok || !user.Active {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		s.log.Info().Str("reason", failureReason(user, ok)).Msg("login rejected")
		return nil, domain.ErrInvalidCredentials
	}

	token, exp, err := s.tokens.Issue(user)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("user_id", user.ID).Msg("login succeeded")
	return &ports.LoginResult{Token: token, ExpiresAt: exp, User: user}, nil
}

// decoy returns a hash of a random password used to make the unknown-email
// path cost the same as a real comparison. A failed attempt is retried on the
// next call.
func (s *AuthService) decoy(ctx context.Context) (string, error) {
	s.decoyMu.Lock()
	defer s.decoyMu.Unlock()
	if s.decoyHash != "" {
		return s.decoyHash, nil
	}

	b := make([]byte, 16)
	_, _ = rand.Read(b)
	h, err := s.hasher.Hash(context.WithoutCancel(ctx), hex.EncodeToString(b))
	if err != nil {
		s.log.Warn().Err(err).Msg("decoy hash unavailable")
		return "", fmt.Errorf("decoy hash: %w", err)
	}
	s.decoyHash = h
	return h, nil
}

func failureReason(user *domain.User, passwordOK bool) string {
	switch {
	case user == nil:
		return "unknown_email"
	case !passwordOK:
		return "wrong_password"
	default:
		return "inactive"
	}
}

// bcrypt only reads the first 72 bytes of a password.
const maxPasswordBytes = 72

// createUser validates input, hashes the password and persists the identity.
// It is shared by public registration and admin account creation.
func createUser(ctx context.Context, repo ports.UserRepository, hasher ports.PasswordHasher, input ports.RegisterInput) (*domain.User, error) {
	name := strings.TrimSpace(input.Name)
	email := domain.NormalizeEmail(input.Email)
	if name == "" || email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", domain.ErrValidation)
	}
	if len(input.Password) > maxPasswordBytes {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", domain.ErrValidation, maxPasswordBytes)
	}
	if !input.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, input.Role)
	}

	if _, err := repo.FindActiveByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("create user: %w", err)
	}

	hash, err := hasher.Hash(ctx, input.Password)
	if err != nil {
		return nil, fmt.Errorf("create user: hash password: %w", err)
	}

	now := time.Now().UTC()
	return repo.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         input.Role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}
