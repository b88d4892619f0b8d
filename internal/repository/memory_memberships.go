package repository

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryMemberships is an in-memory MembershipsRepository for tests.
type MemoryMemberships struct {
	mu          sync.RWMutex
	memberships map[string]Membership
}

func NewMemoryMemberships() *MemoryMemberships {
	return &MemoryMemberships{memberships: map[string]Membership{}}
}

var _ MembershipsRepository = (*MemoryMemberships)(nil)

func (r *MemoryMemberships) Create(_ context.Context, m *Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// One live row per (user, practice) pair.
	for _, existing := range r.memberships {
		if !existing.IsDeleted && existing.UserID == m.UserID && existing.PracticeID == m.PracticeID {
			return ErrConflict
		}
	}

	stored := *m
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.memberships[stored.ID] = stored
	return nil
}

func (r *MemoryMemberships) GetByID(_ context.Context, id string) (*Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.memberships[id]
	if !ok || m.IsDeleted {
		return nil, ErrNotFound
	}
	out := m
	return &out, nil
}

func (r *MemoryMemberships) GetByUserAndPractice(_ context.Context, userID, practiceID string) (*Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.memberships {
		if !m.IsDeleted && m.UserID == userID && m.PracticeID == practiceID {
			out := m
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryMemberships) ListByUser(_ context.Context, userID string) ([]*Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var memberships []*Membership
	for _, m := range r.memberships {
		if !m.IsDeleted && m.UserID == userID {
			out := m
			memberships = append(memberships, &out)
		}
	}
	sortMemberships(memberships)
	return memberships, nil
}

func (r *MemoryMemberships) ListByPractice(_ context.Context, practiceID, role, status string) ([]*Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var memberships []*Membership
	for _, m := range r.memberships {
		if m.IsDeleted || m.PracticeID != practiceID {
			continue
		}
		if role != "" && m.Role != role {
			continue
		}
		if status != "" && m.Status != status {
			continue
		}
		out := m
		memberships = append(memberships, &out)
	}
	sortMemberships(memberships)
	return memberships, nil
}

func sortMemberships(memberships []*Membership) {
	sort.Slice(memberships, func(i, j int) bool {
		return memberships[i].CreatedAt.Before(memberships[j].CreatedAt)
	})
}

func (r *MemoryMemberships) UpdateStatus(_ context.Context, id, status, updatedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.memberships[id]
	if !ok || existing.IsDeleted {
		return ErrNotFound
	}
	existing.Status = status
	existing.UpdatedBy = updatedBy
	existing.UpdatedAt = time.Now()
	r.memberships[id] = existing
	return nil
}

func (r *MemoryMemberships) Update(_ context.Context, m *Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.memberships[m.ID]
	if !ok || existing.IsDeleted {
		return ErrNotFound
	}
	existing.Role = m.Role
	existing.Status = m.Status
	existing.Email = m.Email
	existing.FirstName = m.FirstName
	existing.LastName = m.LastName
	existing.Phone = m.Phone
	existing.UpdatedBy = m.UpdatedBy
	existing.UpdatedAt = time.Now()
	r.memberships[m.ID] = existing
	return nil
}

func (r *MemoryMemberships) SoftDelete(_ context.Context, id, deletedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.memberships[id]
	if !ok || existing.IsDeleted {
		return ErrNotFound
	}
	existing.IsDeleted = true
	existing.UpdatedBy = deletedBy
	existing.UpdatedAt = time.Now()
	r.memberships[id] = existing
	return nil
}
