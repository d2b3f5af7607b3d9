package domain

import (
	"context"
	"time"
)

// Claims is the verified content of a bearer token.
type Claims struct {
	Subject   string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Principal is the authenticated identity bound to a single in-flight request.
type Principal struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the principal carries the ADMIN role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom extracts the principal stored by WithPrincipal.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
