package repository

import "context"

// PracticesRepository stores tenant practices.
type PracticesRepository interface {
	Create(ctx context.Context, p *Practice) error

	// GetByID returns a non-deleted practice or ErrNotFound.
	GetByID(ctx context.Context, id string) (*Practice, error)

	List(ctx context.Context) ([]*Practice, error)

	Update(ctx context.Context, p *Practice) error

	SoftDelete(ctx context.Context, id, deletedBy string) error
}
