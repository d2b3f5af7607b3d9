package domain

import (
	"strings"
	"time"
)

// Role is the coarse authorization level carried by an identity and its tokens.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User models an identity record in the credential store.
//
// DeletedAt is nil for live identities. A soft-deleted user keeps its row but
// is invisible to every lookup used for authentication, and its email may be
// taken by a new registration.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	Active       bool       `json:"active"`
	DeletedAt    *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Deleted reports whether the identity has been soft-deleted.
func (u *User) Deleted() bool {
	return u.DeletedAt != nil
}

// NormalizeEmail returns the canonical form used for storage and lookups.
// Emails compare case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
