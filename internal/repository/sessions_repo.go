package repository

import (
	"context"
	"time"
)

// SessionNoteFilter narrows session listings. Zero values match everything.
type SessionNoteFilter struct {
	// ReviewStatus filters on exactly one state when non-empty.
	ReviewStatus string

	// StartAfter keeps only notes with ScheduledStart strictly after the
	// given instant. Used for "upcoming" views.
	StartAfter time.Time
}

// SessionNotesRepository stores clinical session notes.
type SessionNotesRepository interface {
	Create(ctx context.Context, n *SessionNote) error

	// GetByID is practice-scoped: a note from another practice is
	// ErrNotFound.
	GetByID(ctx context.Context, id, practiceID string) (*SessionNote, error)

	// UpdateClinicalFields persists the editable note content
	// (subjective/objective/assessment/plan/additional notes, schedule and
	// type). The write is conditional on review_status = DRAFT; it returns
	// false when the condition did not hold, without touching the row.
	UpdateClinicalFields(ctx context.Context, n *SessionNote) (bool, error)

	// TransitionReviewStatus performs the compare-and-swap status edge:
	// the row moves from -> to only if its current status equals from.
	// Returns false if the row exists but the status did not match, so a
	// lost race surfaces as a precondition failure rather than a double
	// transition.
	TransitionReviewStatus(ctx context.Context, id, practiceID, from, to, comment, updatedBy string) (bool, error)

	// ListByPractice returns all non-deleted notes in a practice, newest
	// scheduled first, narrowed by filter.
	ListByPractice(ctx context.Context, practiceID string, filter SessionNoteFilter) ([]*SessionNote, error)

	// ListByTherapist returns the therapist's non-deleted notes in a
	// practice, newest scheduled first, narrowed by filter.
	ListByTherapist(ctx context.Context, therapistID, practiceID string, filter SessionNoteFilter) ([]*SessionNote, error)

	// ListByPatient returns a patient's non-deleted notes in a practice,
	// newest scheduled first, narrowed by filter.
	ListByPatient(ctx context.Context, patientID, practiceID string, filter SessionNoteFilter) ([]*SessionNote, error)

	// ListPendingByTherapists returns PENDING notes whose therapist is in
	// the given set. Backs the supervisor review queue.
	ListPendingByTherapists(ctx context.Context, practiceID string, therapistIDs []string) ([]*SessionNote, error)

	SoftDelete(ctx context.Context, id, practiceID, deletedBy string) error
}
