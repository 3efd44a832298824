package users

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no principal matches a lookup. Malformed
	// identifiers resolve to ErrNotFound as well, never to a distinct error.
	ErrNotFound = errors.New("user not found")

	// ErrDuplicateEmail is returned by Create when the email is already
	// taken. Implementations must decide this atomically with the insert —
	// a check-then-insert race must not let two creates of the same email
	// both succeed.
	ErrDuplicateEmail = errors.New("email already exists")
)

// Store is the persistence contract for principal records. Every write that
// must be atomic (uniqueness-checked create, login-count increment) is a
// single store operation, not a caller-side read-modify-write.
type Store interface {
	// Create inserts a new principal and returns it with its generated
	// identifier and timestamps. Fails with ErrDuplicateEmail if the email
	// is taken (case-insensitive).
	Create(ctx context.Context, email, passwordHash string, role Role, status Status) (*User, error)

	// GetByID retrieves a principal by identifier. Malformed identifiers
	// return ErrNotFound.
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail retrieves a principal by email (case-insensitive).
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Update applies a partial update and returns the updated principal.
	// UpdatedAt is always stamped. Returns ErrNotFound if the principal is
	// gone.
	Update(ctx context.Context, id string, update Update) (*User, error)

	// RecordLogin atomically sets last_login to now and increments the
	// login counter. Returns ErrNotFound if the principal is gone.
	RecordLogin(ctx context.Context, id string) error

	// SetStatus updates the account status.
	SetStatus(ctx context.Context, id string, status Status) error

	// SetPasswordHash replaces the credential hash.
	SetPasswordHash(ctx context.Context, id, passwordHash string) error

	// EnsureAdmin idempotently guarantees an admin principal with the given
	// email exists. An existing principal is returned unchanged — its
	// credential hash is never overwritten; otherwise one is created with
	// role admin, status active and the supplied hash.
	EnsureAdmin(ctx context.Context, email, passwordHash string) (*User, error)

	// List returns principals ordered by creation time (newest first),
	// optionally filtered by status (nil for all).
	List(ctx context.Context, offset, limit int, status *Status) ([]*User, error)

	// Count returns the number of principals, optionally filtered by status.
	Count(ctx context.Context, status *Status) (int, error)

	// Delete removes a principal. Administrative escape hatch outside the
	// core lifecycle guarantees; returns ErrNotFound if already gone.
	Delete(ctx context.Context, id string) error
}
