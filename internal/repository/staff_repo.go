package repository

import "context"

// SupervisorsRepository stores supervisor professional profiles.
type SupervisorsRepository interface {
	Create(ctx context.Context, s *Supervisor) error

	GetByID(ctx context.Context, id string) (*Supervisor, error)

	// GetByUserAndPractice returns the supervisor profile backing a
	// user's SUPERVISOR membership in one practice.
	GetByUserAndPractice(ctx context.Context, userID, practiceID string) (*Supervisor, error)

	ListByPractice(ctx context.Context, practiceID string) ([]*Supervisor, error)

	Update(ctx context.Context, s *Supervisor) error

	SoftDelete(ctx context.Context, id string) error
}

// TherapistsRepository stores therapist professional profiles.
type TherapistsRepository interface {
	Create(ctx context.Context, t *Therapist) error

	GetByID(ctx context.Context, id string) (*Therapist, error)

	// GetByUserAndPractice returns the therapist profile backing a
	// user's THERAPIST membership in one practice.
	GetByUserAndPractice(ctx context.Context, userID, practiceID string) (*Therapist, error)

	ListByPractice(ctx context.Context, practiceID string) ([]*Therapist, error)

	// ListBySupervisor returns the non-deleted therapists supervised by
	// one supervisor within a practice.
	ListBySupervisor(ctx context.Context, supervisorID, practiceID string) ([]*Therapist, error)

	Update(ctx context.Context, t *Therapist) error

	// AssignSupervisor sets or clears (empty string) the supervisor link.
	AssignSupervisor(ctx context.Context, therapistID, practiceID, supervisorID string) error

	SoftDelete(ctx context.Context, id string) error
}
