package repository

import "context"

// MembershipsRepository stores user-practice role assignments.
//
// The uniqueness invariant (one non-deleted row per user+practice pair) is
// enforced both here and by a partial unique index in Postgres; Create
// returns ErrConflict when a live row already exists.
type MembershipsRepository interface {
	Create(ctx context.Context, m *Membership) error

	// GetByID returns a non-deleted membership or ErrNotFound.
	GetByID(ctx context.Context, id string) (*Membership, error)

	// GetByUserAndPractice returns the single non-deleted membership for
	// the pair, or ErrNotFound. Soft-deleted rows never match.
	GetByUserAndPractice(ctx context.Context, userID, practiceID string) (*Membership, error)

	// ListByUser returns all non-deleted memberships for a user across
	// practices.
	ListByUser(ctx context.Context, userID string) ([]*Membership, error)

	// ListByPractice returns non-deleted memberships in a practice,
	// optionally filtered by role and status (empty string matches all).
	ListByPractice(ctx context.Context, practiceID, role, status string) ([]*Membership, error)

	// UpdateStatus flips a membership between ACTIVE and INACTIVE.
	UpdateStatus(ctx context.Context, id, status, updatedBy string) error

	Update(ctx context.Context, m *Membership) error

	SoftDelete(ctx context.Context, id, deletedBy string) error
}
