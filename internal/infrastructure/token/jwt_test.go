package token

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/taskflow-api/internal/core/domain"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestService(t *testing.T, clock *fakeClock) *Service {
	t.Helper()
	key, err := NewSigningKey(testSecret)
	require.NoError(t, err)
	return NewService(key, time.Hour, WithClock(clock.Now))
}

func testUser() *domain.User {
	return &domain.User{ID: "65f0c0ffee0000000000abcd", Email: "a@x.com", Role: domain.RoleUser}
}

func TestNewSigningKey_RejectsShortSecret(t *testing.T) {
	_, err := NewSigningKey("short")
	assert.ErrorIs(t, err, ErrWeakKey)
}

func TestIssueValidate_RoundTrip(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := newTestService(t, clock)
	user := testUser()

	tok, exp, err := svc.Issue(user)
	require.NoError(t, err)
	assert.Equal(t, clock.t.Add(time.Hour), exp)

	claims, err := svc.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)
	assert.Equal(t, domain.RoleUser, claims.Role)
	assert.Equal(t, clock.t, claims.IssuedAt)
	assert.Equal(t, exp, claims.ExpiresAt)
}

func TestIssue_MissingSubject(t *testing.T) {
	svc := newTestService(t, &fakeClock{t: time.Now()})
	_, _, err := svc.Issue(&domain.User{Role: domain.RoleUser})
	assert.Error(t, err)
}

func TestValidate_Expired(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := newTestService(t, clock)

	tok, _, err := svc.Issue(testUser())
	require.NoError(t, err)

	clock.t = clock.t.Add(time.Hour + time.Second)
	_, err = svc.Validate(tok)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestValidate_AlteredSignature(t *testing.T) {
	svc := newTestService(t, &fakeClock{t: time.Now()})
	tok, _, err := svc.Issue(testUser())
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	require.NoError(t, err)
	sig[0] ^= 0xFF
	parts[2] = base64.RawURLEncoding.EncodeToString(sig)

	claims, err := svc.Validate(strings.Join(parts, "."))
	assert.ErrorIs(t, err, domain.ErrBadSignature)
	assert.Nil(t, claims)
}

func TestValidate_OtherKey(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	svc := newTestService(t, clock)

	otherKey, err := NewSigningKey(strings.Repeat("z", 40))
	require.NoError(t, err)
	other := NewService(otherKey, time.Hour, WithClock(clock.Now))

	tok, _, err := other.Issue(testUser())
	require.NoError(t, err)

	_, err = svc.Validate(tok)
	assert.ErrorIs(t, err, domain.ErrBadSignature)
}

func TestValidate_WrongAlgorithm(t *testing.T) {
	svc := newTestService(t, &fakeClock{t: time.Now()})

	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub":  "someone",
		"role": "ADMIN",
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = svc.Validate(signed)
	assert.ErrorIs(t, err, domain.ErrBadSignature)
}

func TestValidate_Malformed(t *testing.T) {
	svc := newTestService(t, &fakeClock{t: time.Now()})

	for _, raw := range []string{"", "not-a-token", "a.b.c", "eyJhbGciOiJIUzI1NiJ9.%%%.sig"} {
		_, err := svc.Validate(raw)
		assert.ErrorIs(t, err, domain.ErrMalformedToken, "token %q", raw)
	}
}

func TestValidate_MissingClaims(t *testing.T) {
	svc := newTestService(t, &fakeClock{t: time.Now()})

	cases := map[string]jwt.MapClaims{
		"no exp":     {"sub": "u1", "role": "USER", "iat": time.Now().Unix()},
		"no subject": {"role": "USER", "iat": time.Now().Unix(), "exp": time.Now().Add(time.Hour).Unix()},
		"bad role":   {"sub": "u1", "role": "ROOT", "iat": time.Now().Unix(), "exp": time.Now().Add(time.Hour).Unix()},
	}
	for name, mc := range cases {
		t.Run(name, func(t *testing.T) {
			signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, mc).SignedString([]byte(testSecret))
			require.NoError(t, err)
			_, err = svc.Validate(signed)
			assert.ErrorIs(t, err, domain.ErrMalformedToken)
		})
	}
}

func TestValidate_AnyLastCharacterChangeIsRejected(t *testing.T) {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

	svc := newTestService(t, &fakeClock{t: time.Now()})
	tok, _, err := svc.Issue(testUser())
	require.NoError(t, err)

	last := tok[len(tok)-1]
	for i := 0; i < len(alphabet); i++ {
		c := alphabet[i]
		if c == last {
			continue
		}
		claims, err := svc.Validate(tok[:len(tok)-1] + string(c))
		assert.Error(t, err, "last char %q -> %q accepted", last, c)
		assert.Nil(t, claims)
	}
}
