package repository

import (
	"context"
	"sync"
	"time"
)

// MemoryPasswordResets is an in-memory PasswordResetsRepository for tests.
type MemoryPasswordResets struct {
	mu     sync.RWMutex
	resets map[string]PasswordReset
}

func NewMemoryPasswordResets() *MemoryPasswordResets {
	return &MemoryPasswordResets{resets: map[string]PasswordReset{}}
}

var _ PasswordResetsRepository = (*MemoryPasswordResets)(nil)

func (r *MemoryPasswordResets) Create(_ context.Context, pr *PasswordReset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *pr
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	r.resets[stored.ID] = stored
	return nil
}

func (r *MemoryPasswordResets) GetByToken(_ context.Context, token string) (*PasswordReset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, pr := range r.resets {
		if !pr.IsUsed && pr.Token == token {
			out := pr
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryPasswordResets) GetLatestByUser(_ context.Context, userID string) (*PasswordReset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *PasswordReset
	for _, pr := range r.resets {
		if pr.IsUsed || pr.UserID != userID {
			continue
		}
		if latest == nil || pr.CreatedAt.After(latest.CreatedAt) {
			out := pr
			latest = &out
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return latest, nil
}

func (r *MemoryPasswordResets) MarkUsed(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.resets[id]
	if !ok {
		return nil
	}
	existing.IsUsed = true
	r.resets[id] = existing
	return nil
}

func (r *MemoryPasswordResets) InvalidateForUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, pr := range r.resets {
		if pr.UserID == userID && !pr.IsUsed {
			pr.IsUsed = true
			r.resets[id] = pr
		}
	}
	return nil
}
