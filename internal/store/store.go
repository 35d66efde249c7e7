// Package store declares the durable-store contracts the authentication
// service depends on. The Postgres implementations live in the postgres
// subpackage; tests substitute in-memory fakes.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/gatehouse-io/gatehouse/internal/models"
)

// ErrNotFound is returned by lookups when no row matches.
var ErrNotFound = errors.New("store: not found")

// UserStore looks up and updates user rows. The store is the system of
// record; this subsystem never creates users.
type UserStore interface {
	// FindByEmail returns the user with their role name joined in, or
	// ErrNotFound.
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByID returns the user with their role name joined in, or
	// ErrNotFound.
	FindByID(ctx context.Context, userID string) (*models.User, error)

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

// RefreshTokenStore manages durable refresh-token rows. Uniqueness of the
// identifier is the table's primary-key constraint; that is the only
// concurrency safeguard against double insertion.
type RefreshTokenStore interface {
	// Create inserts a row expiring at now+validity.
	Create(ctx context.Context, id, userID string, validity time.Duration) error

	// Find returns the row or ErrNotFound. Expiry is NOT checked here;
	// callers enforce it at lookup time.
	Find(ctx context.Context, id string) (*models.RefreshToken, error)

	// Delete removes a row. Deleting an absent row is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteAllForUser removes every row belonging to userID.
	DeleteAllForUser(ctx context.Context, userID string) error
}

// ResetTokenStore manages durable reset-token rows; same lifecycle shape
// as RefreshTokenStore.
type ResetTokenStore interface {
	Create(ctx context.Context, id, userID string, validity time.Duration) error
	Find(ctx context.Context, id string) (*models.ResetToken, error)
	Delete(ctx context.Context, id string) error
	DeleteAllForUser(ctx context.Context, userID string) error
}
