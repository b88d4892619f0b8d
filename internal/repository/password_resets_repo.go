package repository

import (
	"context"
)

// PasswordResetsRepository stores single-use password reset bundles.
type PasswordResetsRepository interface {
	Create(ctx context.Context, r *PasswordReset) error

	// GetByToken returns the unused reset bundle for a token, or
	// ErrNotFound. Expiry is the caller's check.
	GetByToken(ctx context.Context, token string) (*PasswordReset, error)

	// GetLatestByUser returns the newest unused bundle for a user, or
	// ErrNotFound. Used for OTP verification.
	GetLatestByUser(ctx context.Context, userID string) (*PasswordReset, error)

	// MarkUsed consumes a bundle. Consuming twice is a no-op.
	MarkUsed(ctx context.Context, id string) error

	// InvalidateForUser consumes every outstanding bundle of a user, so a
	// new request supersedes older emails.
	InvalidateForUser(ctx context.Context, userID string) error
}
