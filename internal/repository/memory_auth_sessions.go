package repository

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryAuthSessions is an in-memory AuthSessionsRepository for tests.
type MemoryAuthSessions struct {
	mu       sync.RWMutex
	sessions map[string]AuthSession
}

func NewMemoryAuthSessions() *MemoryAuthSessions {
	return &MemoryAuthSessions{sessions: map[string]AuthSession{}}
}

var _ AuthSessionsRepository = (*MemoryAuthSessions)(nil)

func (r *MemoryAuthSessions) Create(_ context.Context, s *AuthSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[s.ID]; exists {
		return ErrConflict
	}

	stored := *s
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	r.sessions[stored.ID] = stored
	return nil
}

func (r *MemoryAuthSessions) Get(_ context.Context, id string) (*AuthSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := s
	return &out, nil
}

func (r *MemoryAuthSessions) Touch(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.sessions[id]
	if !ok {
		return ErrNotFound
	}
	existing.LastActivityAt = &at
	r.sessions[id] = existing
	return nil
}

func (r *MemoryAuthSessions) Revoke(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.sessions[id]
	if !ok {
		return ErrNotFound
	}
	existing.IsRevoked = true
	r.sessions[id] = existing
	return nil
}

func (r *MemoryAuthSessions) RevokeAllForUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.sessions {
		if s.UserID == userID && !s.IsRevoked {
			s.IsRevoked = true
			r.sessions[id] = s
		}
	}
	return nil
}

func (r *MemoryAuthSessions) ListByUser(_ context.Context, userID string) ([]*AuthSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sessions []*AuthSession
	for _, s := range r.sessions {
		if s.UserID == userID {
			out := s
			sessions = append(sessions, &out)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}
