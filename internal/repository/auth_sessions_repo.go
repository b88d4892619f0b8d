package repository

import (
	"context"
	"time"
)

// AuthSessionsRepository stores server-side login sessions, keyed by the
// opaque token handed to clients.
type AuthSessionsRepository interface {
	Create(ctx context.Context, s *AuthSession) error

	// Get returns the session row regardless of revocation or expiry;
	// liveness checks belong to the caller. Missing rows are ErrNotFound.
	Get(ctx context.Context, id string) (*AuthSession, error)

	// Touch records activity on a session.
	Touch(ctx context.Context, id string, at time.Time) error

	// Revoke marks one session revoked. Revoking an already revoked
	// session is a no-op, not an error.
	Revoke(ctx context.Context, id string) error

	// RevokeAllForUser revokes every live session of a principal. Used on
	// password change and reset.
	RevokeAllForUser(ctx context.Context, userID string) error

	// ListByUser returns a principal's sessions, newest first.
	ListByUser(ctx context.Context, userID string) ([]*AuthSession, error)
}
