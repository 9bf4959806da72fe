package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/shared"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// FindByID returns shared.ErrNotFound when no user matches
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByUsername looks up a user by lower-cased username
	FindByUsername(ctx context.Context, username string) (*User, error)

	// FindAll lists users, newest first unless the filter says otherwise
	FindAll(ctx context.Context, filter shared.Filter) ([]User, error)

	// ExistsByUsername checks if a username is taken
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// Save inserts or updates a user
	Save(ctx context.Context, user *User) error

	// Count returns the number of users
	Count(ctx context.Context) (int64, error)
}

// LoginAttemptRepository stores the sign-in audit trail
type LoginAttemptRepository interface {
	Save(ctx context.Context, attempt *LoginAttempt) error

	// CountFailuresSince counts failed attempts from ip since t
	CountFailuresSince(ctx context.Context, ip string, since time.Time) (int64, error)
}
