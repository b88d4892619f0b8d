package repository

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemorySupervisors is an in-memory SupervisorsRepository for tests.
type MemorySupervisors struct {
	mu          sync.RWMutex
	supervisors map[string]Supervisor
}

func NewMemorySupervisors() *MemorySupervisors {
	return &MemorySupervisors{supervisors: map[string]Supervisor{}}
}

var _ SupervisorsRepository = (*MemorySupervisors)(nil)

func (r *MemorySupervisors) Create(_ context.Context, s *Supervisor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *s
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.supervisors[stored.ID] = stored
	return nil
}

func (r *MemorySupervisors) GetByID(_ context.Context, id string) (*Supervisor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.supervisors[id]
	if !ok || s.IsDeleted {
		return nil, ErrNotFound
	}
	out := s
	return &out, nil
}

func (r *MemorySupervisors) GetByUserAndPractice(_ context.Context, userID, practiceID string) (*Supervisor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.supervisors {
		if !s.IsDeleted && s.UserID == userID && s.PracticeID == practiceID {
			out := s
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemorySupervisors) ListByPractice(_ context.Context, practiceID string) ([]*Supervisor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var supervisors []*Supervisor
	for _, s := range r.supervisors {
		if !s.IsDeleted && s.PracticeID == practiceID {
			out := s
			supervisors = append(supervisors, &out)
		}
	}
	sort.Slice(supervisors, func(i, j int) bool {
		return supervisors[i].CreatedAt.Before(supervisors[j].CreatedAt)
	})
	return supervisors, nil
}

func (r *MemorySupervisors) Update(_ context.Context, s *Supervisor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.supervisors[s.ID]
	if !ok || existing.IsDeleted {
		return ErrNotFound
	}
	existing.FirstName = s.FirstName
	existing.LastName = s.LastName
	existing.Phone = s.Phone
	existing.LicenseNumber = s.LicenseNumber
	existing.LicenseState = s.LicenseState
	existing.LicenseExpiry = s.LicenseExpiry
	existing.Specialty = append([]string(nil), s.Specialty...)
	existing.UpdatedAt = time.Now()
	r.supervisors[s.ID] = existing
	return nil
}

func (r *MemorySupervisors) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.supervisors[id]
	if !ok || existing.IsDeleted {
		return ErrNotFound
	}
	existing.IsDeleted = true
	existing.UpdatedAt = time.Now()
	r.supervisors[id] = existing
	return nil
}

// MemoryTherapists is an in-memory TherapistsRepository for tests.
type MemoryTherapists struct {
	mu         sync.RWMutex
	therapists map[string]Therapist
}

func NewMemoryTherapists() *MemoryTherapists {
	return &MemoryTherapists{therapists: map[string]Therapist{}}
}

var _ TherapistsRepository = (*MemoryTherapists)(nil)

func (r *MemoryTherapists) Create(_ context.Context, t *Therapist) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.therapists {
		if !existing.IsDeleted && existing.UserID == t.UserID && existing.PracticeID == t.PracticeID {
			return ErrConflict
		}
	}

	stored := *t
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.therapists[stored.ID] = stored
	return nil
}

func (r *MemoryTherapists) GetByID(_ context.Context, id string) (*Therapist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.therapists[id]
	if !ok || t.IsDeleted {
		return nil, ErrNotFound
	}
	out := t
	return &out, nil
}

func (r *MemoryTherapists) GetByUserAndPractice(_ context.Context, userID, practiceID string) (*Therapist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.therapists {
		if !t.IsDeleted && t.UserID == userID && t.PracticeID == practiceID {
			out := t
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryTherapists) ListByPractice(_ context.Context, practiceID string) ([]*Therapist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var therapists []*Therapist
	for _, t := range r.therapists {
		if !t.IsDeleted && t.PracticeID == practiceID {
			out := t
			therapists = append(therapists, &out)
		}
	}
	sortTherapists(therapists)
	return therapists, nil
}

func (r *MemoryTherapists) ListBySupervisor(_ context.Context, supervisorID, practiceID string) ([]*Therapist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var therapists []*Therapist
	for _, t := range r.therapists {
		if !t.IsDeleted && t.SupervisorID == supervisorID && t.PracticeID == practiceID {
			out := t
			therapists = append(therapists, &out)
		}
	}
	sortTherapists(therapists)
	return therapists, nil
}

func sortTherapists(therapists []*Therapist) {
	sort.Slice(therapists, func(i, j int) bool {
		return therapists[i].CreatedAt.Before(therapists[j].CreatedAt)
	})
}

func (r *MemoryTherapists) Update(_ context.Context, t *Therapist) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.therapists[t.ID]
	if !ok || existing.IsDeleted {
		return ErrNotFound
	}
	existing.FirstName = t.FirstName
	existing.LastName = t.LastName
	existing.Phone = t.Phone
	existing.LicenseNumber = t.LicenseNumber
	existing.LicenseState = t.LicenseState
	existing.LicenseExpiry = t.LicenseExpiry
	existing.Specialty = append([]string(nil), t.Specialty...)
	existing.UpdatedAt = time.Now()
	r.therapists[t.ID] = existing
	return nil
}

func (r *MemoryTherapists) AssignSupervisor(_ context.Context, therapistID, practiceID, supervisorID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.therapists[therapistID]
	if !ok || existing.IsDeleted || existing.PracticeID != practiceID {
		return ErrNotFound
	}
	existing.SupervisorID = supervisorID
	existing.UpdatedAt = time.Now()
	r.therapists[therapistID] = existing
	return nil
}

func (r *MemoryTherapists) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.therapists[id]
	if !ok || existing.IsDeleted {
		return ErrNotFound
	}
	existing.IsDeleted = true
	existing.UpdatedAt = time.Now()
	r.therapists[id] = existing
	return nil
}
