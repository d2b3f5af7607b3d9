package domain

import "errors"

// Authentication failures. Everything except ErrInsufficientRole is rendered
// as the same 401 response; the distinction is kept for logs and metrics.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingToken       = errors.New("missing bearer token")
	ErrMalformedToken     = errors.New("malformed token")
	ErrBadSignature       = errors.New("bad token signature")
	ErrTokenExpired       = errors.New("token expired")
	ErrInsufficientRole   = errors.New("insufficient role")
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserExists      = errors.New("user already exists")
	ErrProjectNotFound = errors.New("project not found")
	ErrTaskNotFound    = errors.New("task not found")
	ErrForbidden       = errors.New("access forbidden")
	ErrValidation      = errors.New("validation failed")
)

// IsTokenError reports whether err is one of the bearer token failures.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrMissingToken) ||
		errors.Is(err, ErrMalformedToken) ||
		errors.Is(err, ErrBadSignature) ||
		errors.Is(err, ErrTokenExpired)
}

// TokenErrorReason returns a short label for a token failure, used in logs and
// metric labels. It returns "unknown" for anything else.
func TokenErrorReason(err error) string {
	switch {
	case errors.Is(err, ErrMissingToken):
		return "missing"
	case errors.Is(err, ErrMalformedToken):
		return "malformed"
	case errors.Is(err, ErrBadSignature):
		return "bad_signature"
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	default:
		return "unknown"
	}
}
