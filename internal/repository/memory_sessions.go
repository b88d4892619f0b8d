package repository

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemorySessionNotes is an in-memory SessionNotesRepository for tests.
type MemorySessionNotes struct {
	mu    sync.RWMutex
	notes map[string]SessionNote
}

func NewMemorySessionNotes() *MemorySessionNotes {
	return &MemorySessionNotes{notes: map[string]SessionNote{}}
}

var _ SessionNotesRepository = (*MemorySessionNotes)(nil)

func (r *MemorySessionNotes) Create(_ context.Context, n *SessionNote) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *n
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.notes[stored.ID] = stored
	return nil
}

func (r *MemorySessionNotes) GetByID(_ context.Context, id, practiceID string) (*SessionNote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.notes[id]
	if !ok || n.IsDeleted || n.PracticeID != practiceID {
		return nil, ErrNotFound
	}
	out := n
	return &out, nil
}

func (r *MemorySessionNotes) UpdateClinicalFields(_ context.Context, n *SessionNote) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.notes[n.ID]
	if !ok || existing.IsDeleted || existing.PracticeID != n.PracticeID {
		return false, nil
	}
	if existing.ReviewStatus != ReviewDraft {
		return false, nil
	}
	existing.ScheduledStart = n.ScheduledStart
	existing.ScheduledEnd = n.ScheduledEnd
	existing.SessionType = n.SessionType
	existing.Subjective = n.Subjective
	existing.Objective = n.Objective
	existing.Assessment = n.Assessment
	existing.Plan = n.Plan
	existing.AdditionalNotes = n.AdditionalNotes
	existing.UpdatedBy = n.UpdatedBy
	existing.UpdatedAt = time.Now()
	r.notes[n.ID] = existing
	return true, nil
}

func (r *MemorySessionNotes) TransitionReviewStatus(_ context.Context, id, practiceID, from, to, comment, updatedBy string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.notes[id]
	if !ok || existing.IsDeleted || existing.PracticeID != practiceID {
		return false, nil
	}
	if existing.ReviewStatus != from {
		return false, nil
	}
	existing.ReviewStatus = to
	existing.ReviewComment = comment
	existing.UpdatedBy = updatedBy
	existing.UpdatedAt = time.Now()
	r.notes[id] = existing
	return true, nil
}

func (r *MemorySessionNotes) ListByPractice(_ context.Context, practiceID string, filter SessionNoteFilter) ([]*SessionNote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var notes []*SessionNote
	for _, n := range r.notes {
		if n.IsDeleted || n.PracticeID != practiceID {
			continue
		}
		if !matchesFilter(n, filter) {
			continue
		}
		out := n
		notes = append(notes, &out)
	}
	sortNotes(notes)
	return notes, nil
}

func (r *MemorySessionNotes) ListByTherapist(_ context.Context, therapistID, practiceID string, filter SessionNoteFilter) ([]*SessionNote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var notes []*SessionNote
	for _, n := range r.notes {
		if n.IsDeleted || n.TherapistID != therapistID || n.PracticeID != practiceID {
			continue
		}
		if !matchesFilter(n, filter) {
			continue
		}
		out := n
		notes = append(notes, &out)
	}
	sortNotes(notes)
	return notes, nil
}

func (r *MemorySessionNotes) ListByPatient(_ context.Context, patientID, practiceID string, filter SessionNoteFilter) ([]*SessionNote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var notes []*SessionNote
	for _, n := range r.notes {
		if n.IsDeleted || n.PatientID != patientID || n.PracticeID != practiceID {
			continue
		}
		if !matchesFilter(n, filter) {
			continue
		}
		out := n
		notes = append(notes, &out)
	}
	sortNotes(notes)
	return notes, nil
}

func (r *MemorySessionNotes) ListPendingByTherapists(_ context.Context, practiceID string, therapistIDs []string) ([]*SessionNote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	supervised := make(map[string]bool, len(therapistIDs))
	for _, id := range therapistIDs {
		supervised[id] = true
	}

	var notes []*SessionNote
	for _, n := range r.notes {
		if n.IsDeleted || n.PracticeID != practiceID || n.ReviewStatus != ReviewPending {
			continue
		}
		if !supervised[n.TherapistID] {
			continue
		}
		out := n
		notes = append(notes, &out)
	}
	sortNotes(notes)
	return notes, nil
}

func matchesFilter(n SessionNote, filter SessionNoteFilter) bool {
	if filter.ReviewStatus != "" && n.ReviewStatus != filter.ReviewStatus {
		return false
	}
	if !filter.StartAfter.IsZero() && !n.ScheduledStart.After(filter.StartAfter) {
		return false
	}
	return true
}

func sortNotes(notes []*SessionNote) {
	sort.Slice(notes, func(i, j int) bool {
		return notes[i].ScheduledStart.After(notes[j].ScheduledStart)
	})
}

func (r *MemorySessionNotes) SoftDelete(_ context.Context, id, practiceID, deletedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.notes[id]
	if !ok || existing.IsDeleted || existing.PracticeID != practiceID {
		return ErrNotFound
	}
	existing.IsDeleted = true
	existing.UpdatedBy = deletedBy
	existing.UpdatedAt = time.Now()
	r.notes[id] = existing
	return nil
}
