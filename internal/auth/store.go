package auth

import (
	"context"
	"time"
)

// UserStore describes the persistence operations the auth service requires.
// Implementations enforce uniqueness of username and email and must surface a
// violation as ErrAlreadyExists, and a missing record as ErrNotFound.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByVerificationDigest and FindByResetDigest match only records whose
	// corresponding expiry is strictly after now, so expired tokens are
	// indistinguishable from unknown ones.
	FindByVerificationDigest(ctx context.Context, digest string, now time.Time) (*User, error)
	FindByResetDigest(ctx context.Context, digest string, now time.Time) (*User, error)

	// Update persists the mutable fields of the record and refreshes its
	// updated-at timestamp.
	Update(ctx context.Context, u *User) error

	// SwapRefreshDigest replaces the stored refresh digest only when it still
	// equals oldDigest, making rotation a single compare-and-swap. It returns
	// ErrNotFound when no record matches, which callers treat as a lost race
	// or a revoked session.
	SwapRefreshDigest(ctx context.Context, userID, oldDigest, newDigest string, now time.Time) error
}
