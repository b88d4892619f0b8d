package repository

import (
	"context"
	"sync"
	"time"
)

// MemoryUsers is an in-memory UsersRepository for tests.
type MemoryUsers struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{users: map[string]User{}}
}

var _ UsersRepository = (*MemoryUsers)(nil)

func (r *MemoryUsers) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if !existing.IsDeleted && existing.Email == u.Email {
			return ErrConflict
		}
	}

	stored := *u
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.users[stored.ID] = stored
	return nil
}

func (r *MemoryUsers) GetByID(_ context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok || u.IsDeleted {
		return nil, ErrNotFound
	}
	out := u
	return &out, nil
}

func (r *MemoryUsers) GetByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if !u.IsDeleted && u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUsers) Update(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[u.ID]
	if !ok || existing.IsDeleted {
		return ErrNotFound
	}
	existing.FirstName = u.FirstName
	existing.LastName = u.LastName
	existing.Phone = u.Phone
	existing.UpdatedBy = u.UpdatedBy
	existing.UpdatedAt = time.Now()
	r.users[u.ID] = existing
	return nil
}

func (r *MemoryUsers) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[id]
	if !ok || existing.IsDeleted {
		return ErrNotFound
	}
	existing.PasswordHash = passwordHash
	existing.UpdatedAt = time.Now()
	r.users[id] = existing
	return nil
}

func (r *MemoryUsers) SoftDelete(_ context.Context, id, deletedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[id]
	if !ok || existing.IsDeleted {
		return ErrNotFound
	}
	existing.IsDeleted = true
	existing.UpdatedBy = deletedBy
	existing.UpdatedAt = time.Now()
	r.users[id] = existing
	return nil
}
