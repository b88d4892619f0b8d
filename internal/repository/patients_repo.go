package repository

import "context"

// PatientsRepository stores practice patients.
type PatientsRepository interface {
	Create(ctx context.Context, p *Patient) error

	// GetByID is practice-scoped: a patient from another practice is
	// ErrNotFound, never a leak.
	GetByID(ctx context.Context, id, practiceID string) (*Patient, error)

	ListByPractice(ctx context.Context, practiceID string) ([]*Patient, error)

	// ListByTherapist returns the patients assigned to one therapist.
	ListByTherapist(ctx context.Context, therapistID, practiceID string) ([]*Patient, error)

	Update(ctx context.Context, p *Patient) error

	// AssignTherapist sets or clears (empty string) the assignment.
	AssignTherapist(ctx context.Context, patientID, practiceID, therapistID, updatedBy string) error

	SoftDelete(ctx context.Context, id, practiceID, deletedBy string) error
}
