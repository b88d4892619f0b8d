package repository

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryOwners is an in-memory OwnersRepository for tests.
type MemoryOwners struct {
	mu     sync.RWMutex
	owners map[string]Owner
}

func NewMemoryOwners() *MemoryOwners {
	return &MemoryOwners{owners: map[string]Owner{}}
}

var _ OwnersRepository = (*MemoryOwners)(nil)

func (r *MemoryOwners) Create(_ context.Context, o *Owner) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.owners {
		if !existing.IsDeleted && existing.Email == o.Email {
			return ErrConflict
		}
	}

	stored := *o
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.owners[stored.ID] = stored
	return nil
}

func (r *MemoryOwners) GetByID(_ context.Context, id string) (*Owner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.owners[id]
	if !ok || o.IsDeleted {
		return nil, ErrNotFound
	}
	out := o
	return &out, nil
}

func (r *MemoryOwners) GetByEmail(_ context.Context, email string) (*Owner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.owners {
		if !o.IsDeleted && o.Email == email {
			out := o
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryOwners) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, o := range r.owners {
		if !o.IsDeleted {
			n++
		}
	}
	return n, nil
}

func (r *MemoryOwners) List(_ context.Context) ([]*Owner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var owners []*Owner
	for _, o := range r.owners {
		if o.IsDeleted {
			continue
		}
		out := o
		owners = append(owners, &out)
	}
	sort.Slice(owners, func(i, j int) bool { return owners[i].CreatedAt.Before(owners[j].CreatedAt) })
	return owners, nil
}

func (r *MemoryOwners) Update(_ context.Context, o *Owner) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.owners[o.ID]
	if !ok || existing.IsDeleted {
		return ErrNotFound
	}
	existing.Email = o.Email
	existing.FirstName = o.FirstName
	existing.LastName = o.LastName
	existing.UpdatedBy = o.UpdatedBy
	existing.UpdatedAt = time.Now()
	r.owners[o.ID] = existing
	return nil
}

func (r *MemoryOwners) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.owners[id]
	if !ok || existing.IsDeleted {
		return ErrNotFound
	}
	existing.PasswordHash = passwordHash
	existing.UpdatedAt = time.Now()
	r.owners[id] = existing
	return nil
}

func (r *MemoryOwners) SoftDelete(_ context.Context, id, deletedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.owners[id]
	if !ok || existing.IsDeleted {
		return ErrNotFound
	}
	existing.IsDeleted = true
	existing.UpdatedBy = deletedBy
	existing.UpdatedAt = time.Now()
	r.owners[id] = existing
	return nil
}
