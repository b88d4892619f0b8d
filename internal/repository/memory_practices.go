package repository

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryPractices is an in-memory PracticesRepository for tests.
type MemoryPractices struct {
	mu        sync.RWMutex
	practices map[string]Practice
}

func NewMemoryPractices() *MemoryPractices {
	return &MemoryPractices{practices: map[string]Practice{}}
}

var _ PracticesRepository = (*MemoryPractices)(nil)

func (r *MemoryPractices) Create(_ context.Context, p *Practice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *p
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.practices[stored.ID] = stored
	return nil
}

func (r *MemoryPractices) GetByID(_ context.Context, id string) (*Practice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.practices[id]
	if !ok || p.IsDeleted {
		return nil, ErrNotFound
	}
	out := p
	return &out, nil
}

func (r *MemoryPractices) List(_ context.Context) ([]*Practice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var practices []*Practice
	for _, p := range r.practices {
		if p.IsDeleted {
			continue
		}
		out := p
		practices = append(practices, &out)
	}
	sort.Slice(practices, func(i, j int) bool { return practices[i].Name < practices[j].Name })
	return practices, nil
}

func (r *MemoryPractices) Update(_ context.Context, p *Practice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.practices[p.ID]
	if !ok || existing.IsDeleted {
		return ErrNotFound
	}
	updated := *p
	updated.CreatedAt = existing.CreatedAt
	updated.CreatedBy = existing.CreatedBy
	updated.IsDeleted = existing.IsDeleted
	updated.UpdatedAt = time.Now()
	r.practices[p.ID] = updated
	return nil
}

func (r *MemoryPractices) SoftDelete(_ context.Context, id, deletedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.practices[id]
	if !ok || existing.IsDeleted {
		return ErrNotFound
	}
	existing.IsDeleted = true
	existing.UpdatedBy = deletedBy
	existing.UpdatedAt = time.Now()
	r.practices[id] = existing
	return nil
}
