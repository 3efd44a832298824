// Package users defines the principal model and the persistence contract the
// auth service depends on. Store implementations live in subpackages
// (postgres for production, repofake for tests and dev mode).
package users

import (
	"time"
)

// Role is a principal's role.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsValid reports whether the role is one of the known roles.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Status is a principal's account status. Transitions are active ⇄ inactive;
// an admin cannot deactivate their own account.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// IsValid reports whether the status is one of the known statuses.
func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusInactive
}

// User is a principal record. The identifier is store-generated, assigned
// once and never reused; email is unique across all principals
// (case-insensitive). PasswordHash is the only credential material ever
// persisted and must never be serialized or logged.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	Status       Status     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	LoginCount   int        `json:"login_count"`
}

// IsActive reports whether the account may authenticate.
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// IsAdmin reports whether the principal holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Update is a partial update applied by Store.Update. Nil fields are left
// untouched; UpdatedAt is always stamped by the store.
type Update struct {
	PasswordHash *string
	Role         *Role
	Status       *Status
}
