package repository

import "context"

// UsersRepository stores practice-member accounts.
type UsersRepository interface {
	Create(ctx context.Context, u *User) error

	// GetByID returns a non-deleted user or ErrNotFound.
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail returns a non-deleted user or ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Update persists profile fields (names, phone, audit columns).
	Update(ctx context.Context, u *User) error

	UpdatePassword(ctx context.Context, id, passwordHash string) error

	SoftDelete(ctx context.Context, id, deletedBy string) error
}
