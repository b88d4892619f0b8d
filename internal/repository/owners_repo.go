package repository

import "context"

// OwnersRepository stores platform owner accounts.
type OwnersRepository interface {
	Create(ctx context.Context, o *Owner) error

	// GetByID returns a non-deleted owner or ErrNotFound.
	GetByID(ctx context.Context, id string) (*Owner, error)

	// GetByEmail returns a non-deleted owner or ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*Owner, error)

	// Count returns the number of non-deleted owners. Used to gate
	// first-owner bootstrap.
	Count(ctx context.Context) (int, error)

	List(ctx context.Context) ([]*Owner, error)

	// Update persists profile fields (names, email, audit columns).
	Update(ctx context.Context, o *Owner) error

	UpdatePassword(ctx context.Context, id, passwordHash string) error

	SoftDelete(ctx context.Context, id, deletedBy string) error
}
