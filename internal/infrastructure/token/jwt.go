// Package token issues and validates the stateless HS256 bearer tokens used
// by the API. Nothing is stored server-side: a token stays valid until it
// expires, and replacing the signing key invalidates every token at once.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taskflow/taskflow-api/internal/core/domain"
)

const (
	minKeyLength = 32
	defaultTTL   = 24 * time.Hour
)

// ErrWeakKey is returned by NewSigningKey for secrets shorter than 32 bytes.
var ErrWeakKey = errors.New("token: signing key must be at least 32 bytes")

// SigningKey is the process-wide HMAC secret. Build it once at startup and
// pass it to NewService.
type SigningKey struct {
	secret []byte
}

// NewSigningKey copies secret into a SigningKey.
func NewSigningKey(secret string) (SigningKey, error) {
	if len(secret) < minKeyLength {
		return SigningKey{}, ErrWeakKey
	}
	return SigningKey{secret: []byte(secret)}, nil
}

type claims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Service implements ports.TokenIssuer and ports.TokenValidator.
type Service struct {
	key    SigningKey
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// Option customises a Service.
type Option func(*Service)

// WithClock overrides the time source used for issuing and validating.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService returns a token Service. A non-positive ttl falls back to 24h.
func NewService(key SigningKey, ttl time.Duration, opts ...Option) *Service {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	s := &Service{key: key, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
		// Lenient base64url ignores the unused low bits of the last signature
		// character, so several encodings would verify as the same signature.
		jwt.WithStrictDecoding(),
	)
	return s
}

// TTL returns the fixed token lifetime.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for user expiring TTL from now.
func (s *Service) Issue(user *domain.User) (string, time.Time, error) {
	if user == nil || user.ID == "" {
		return "", time.Time{}, fmt.Errorf("issue token: missing subject")
	}

	now := s.now().UTC().Truncate(time.Second)
	exp := now.Add(s.ttl)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})

	signed, err := t.SignedString(s.key.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("issue token: %w", err)
	}
	return signed, exp, nil
}

// Validate parses raw, checks its signature and expiry and returns the claims.
// A token failing any check is rejected as a whole.
func (s *Service) Validate(raw string) (*domain.Claims, error) {
	var c claims
	tkn, err := s.parser.ParseWithClaims(raw, &c, func(*jwt.Token) (interface{}, error) {
		return s.key.secret, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	if !tkn.Valid {
		return nil, domain.ErrMalformedToken
	}
	if c.Subject == "" || !c.Role.Valid() || c.IssuedAt == nil {
		return nil, domain.ErrMalformedToken
	}

	return &domain.Claims{
		Subject:   c.Subject,
		Role:      c.Role,
		IssuedAt:  c.IssuedAt.Time.UTC(),
		ExpiresAt: c.ExpiresAt.Time.UTC(),
	}, nil
}

// classify maps jwt parser errors onto the domain taxonomy. The parser
// verifies the signature before any claim, so an expired token with a forged
// signature reports ErrBadSignature.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", domain.ErrMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", domain.ErrBadSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", domain.ErrTokenExpired, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrMalformedToken, err)
	}
}
