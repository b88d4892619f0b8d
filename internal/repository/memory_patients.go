package repository

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryPatients is an in-memory PatientsRepository for tests.
type MemoryPatients struct {
	mu       sync.RWMutex
	patients map[string]Patient
}

func NewMemoryPatients() *MemoryPatients {
	return &MemoryPatients{patients: map[string]Patient{}}
}

var _ PatientsRepository = (*MemoryPatients)(nil)

func (r *MemoryPatients) Create(_ context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *p
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.patients[stored.ID] = stored
	return nil
}

func (r *MemoryPatients) GetByID(_ context.Context, id, practiceID string) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.patients[id]
	if !ok || p.IsDeleted || p.PracticeID != practiceID {
		return nil, ErrNotFound
	}
	out := p
	return &out, nil
}

func (r *MemoryPatients) ListByPractice(_ context.Context, practiceID string) ([]*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var patients []*Patient
	for _, p := range r.patients {
		if !p.IsDeleted && p.PracticeID == practiceID {
			out := p
			patients = append(patients, &out)
		}
	}
	sortPatients(patients)
	return patients, nil
}

func (r *MemoryPatients) ListByTherapist(_ context.Context, therapistID, practiceID string) ([]*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var patients []*Patient
	for _, p := range r.patients {
		if !p.IsDeleted && p.TherapistID == therapistID && p.PracticeID == practiceID {
			out := p
			patients = append(patients, &out)
		}
	}
	sortPatients(patients)
	return patients, nil
}

func sortPatients(patients []*Patient) {
	sort.Slice(patients, func(i, j int) bool {
		return patients[i].CreatedAt.Before(patients[j].CreatedAt)
	})
}

func (r *MemoryPatients) Update(_ context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.patients[p.ID]
	if !ok || existing.IsDeleted || existing.PracticeID != p.PracticeID {
		return ErrNotFound
	}
	existing.FirstName = p.FirstName
	existing.LastName = p.LastName
	existing.Email = p.Email
	existing.Phone = p.Phone
	existing.Gender = p.Gender
	existing.DOB = p.DOB
	existing.Address = p.Address
	existing.EmergencyContact = p.EmergencyContact
	existing.UpdatedBy = p.UpdatedBy
	existing.UpdatedAt = time.Now()
	r.patients[p.ID] = existing
	return nil
}

func (r *MemoryPatients) AssignTherapist(_ context.Context, patientID, practiceID, therapistID, updatedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.patients[patientID]
	if !ok || existing.IsDeleted || existing.PracticeID != practiceID {
		return ErrNotFound
	}
	existing.TherapistID = therapistID
	existing.UpdatedBy = updatedBy
	existing.UpdatedAt = time.Now()
	r.patients[patientID] = existing
	return nil
}

func (r *MemoryPatients) SoftDelete(_ context.Context, id, practiceID, deletedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.patients[id]
	if !ok || existing.IsDeleted || existing.PracticeID != practiceID {
		return ErrNotFound
	}
	existing.IsDeleted = true
	existing.UpdatedBy = deletedBy
	existing.UpdatedAt = time.Now()
	r.patients[id] = existing
	return nil
}
