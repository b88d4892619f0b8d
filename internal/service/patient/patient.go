// Package patient manages practice patients and their therapist assignment.
// Therapists only ever see their own caseload; admins and supervisors see
// the whole practice.
package patient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/journihealth/journi_backend/internal/repository"
	"github.com/journihealth/journi_backend/pkg/reqctx"
	"github.com/journihealth/journi_backend/pkg/util/phone"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreatePatientRequest struct {
	FirstName        string
	LastName         string
	Email            string
	Phone            string
	Gender           string
	DOB              *time.Time
	Address          json.RawMessage
	EmergencyContact json.RawMessage

	// TherapistID assigns the patient at creation. Ignored when the
	// caller is a therapist, who always gets the patient themselves.
	TherapistID string
}

type UpdatePatientRequest struct {
	FirstName        *string
	LastName         *string
	Email            *string
	Phone            *string
	Gender           *string
	DOB              *time.Time
	Address          json.RawMessage
	EmergencyContact json.RawMessage
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	// Create adds a patient to the practice. A therapist caller is
	// auto-assigned as the patient's therapist.
	Create(ctx context.Context, actor *reqctx.Actor, req CreatePatientRequest) (*repository.Patient, error)

	// Get returns a patient visible to the actor. Therapists only reach
	// their own patients; everyone else is practice-scoped.
	Get(ctx context.Context, actor *reqctx.Actor, patientID string) (*repository.Patient, error)

	// List returns the actor's visible patients: the whole practice for
	// admins, supervisors and owners, the caseload for therapists.
	List(ctx context.Context, actor *reqctx.Actor) ([]*repository.Patient, error)

	Update(ctx context.Context, actor *reqctx.Actor, patientID string, req UpdatePatientRequest) (*repository.Patient, error)

	// AssignTherapist sets or clears (empty therapistID) the assignment.
	AssignTherapist(ctx context.Context, actor *reqctx.Actor, patientID, therapistID string) error

	Delete(ctx context.Context, actor *reqctx.Actor, patientID string) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type patientService struct {
	repos *repository.Repositories
}

func New(repos *repository.Repositories) Service {
	return &patientService{repos: repos}
}

// therapistProfile resolves the caller's therapist profile in the request
// practice. Non-therapist actors get nil with no error.
func (s *patientService) therapistProfile(ctx context.Context, actor *reqctx.Actor) (*repository.Therapist, error) {
	if actor.PracticeRole != repository.RoleTherapist {
		return nil, nil
	}
	th, err := s.repos.Therapists.GetByUserAndPractice(ctx, actor.PrincipalID, actor.PracticeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotTherapist
		}
		return nil, fmt.Errorf("get therapist profile: %w", err)
	}
	return th, nil
}

func (s *patientService) Create(ctx context.Context, actor *reqctx.Actor, req CreatePatientRequest) (*repository.Patient, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if req.FirstName == "" || req.LastName == "" {
		return nil, ErrNameMissing
	}
	normPhone, err := phone.Normalize(req.Phone)
	if err != nil {
		return nil, ErrInvalidPhone
	}

	therapistID := strings.TrimSpace(req.TherapistID)

	caller, err := s.therapistProfile(ctx, actor)
	if err != nil {
		return nil, err
	}
	if caller != nil {
		// A therapist's new patient lands on their own caseload.
		therapistID = caller.ID
	} else if therapistID != "" {
		if err := s.checkTherapist(ctx, therapistID, actor.PracticeID); err != nil {
			return nil, err
		}
	}

	p := &repository.Patient{
		ID:               uuid.NewString(),
		PracticeID:       actor.PracticeID,
		TherapistID:      therapistID,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:            normPhone,
		Gender:           strings.TrimSpace(req.Gender),
		DOB:              req.DOB,
		Address:          req.Address,
		EmergencyContact: req.EmergencyContact,
		CreatedBy:        actor.PrincipalID,
		UpdatedBy:        actor.PrincipalID,
	}

	if err := s.repos.Patients.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}
	return p, nil
}

func (s *patientService) checkTherapist(ctx context.Context, therapistID, practiceID string) error {
	th, err := s.repos.Therapists.GetByID(ctx, therapistID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTherapistNotFound
		}
		return fmt.Errorf("get therapist: %w", err)
	}
	if th.PracticeID != practiceID {
		return ErrTherapistNotFound
	}
	return nil
}

func (s *patientService) Get(ctx context.Context, actor *reqctx.Actor, patientID string) (*repository.Patient, error) {
	p, err := s.repos.Patients.GetByID(ctx, patientID, actor.PracticeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get patient: %w", err)
	}

	caller, err := s.therapistProfile(ctx, actor)
	if err != nil {
		return nil, err
	}
	if caller != nil && p.TherapistID != caller.ID {
		// An unassigned patient looks absent to a therapist.
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *patientService) List(ctx context.Context, actor *reqctx.Actor) ([]*repository.Patient, error) {
	caller, err := s.therapistProfile(ctx, actor)
	if err != nil {
		return nil, err
	}

	var rows []*repository.Patient
	if caller != nil {
		rows, err = s.repos.Patients.ListByTherapist(ctx, caller.ID, actor.PracticeID)
	} else {
		rows, err = s.repos.Patients.ListByPractice(ctx, actor.PracticeID)
	}
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return rows, nil
}

func (s *patientService) Update(ctx context.Context, actor *reqctx.Actor, patientID string, req UpdatePatientRequest) (*repository.Patient, error) {
	p, err := s.Get(ctx, actor, patientID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		name := strings.TrimSpace(*req.FirstName)
		if name == "" {
			return nil, ErrNameMissing
		}
		p.FirstName = name
	}
	if req.LastName != nil {
		name := strings.TrimSpace(*req.LastName)
		if name == "" {
			return nil, ErrNameMissing
		}
		p.LastName = name
	}
	if req.Email != nil {
		p.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		normPhone, err := phone.Normalize(*req.Phone)
		if err != nil {
			return nil, ErrInvalidPhone
		}
		p.Phone = normPhone
	}
	if req.Gender != nil {
		p.Gender = strings.TrimSpace(*req.Gender)
	}
	if req.DOB != nil {
		p.DOB = req.DOB
	}
	if req.Address != nil {
		p.Address = req.Address
	}
	if req.EmergencyContact != nil {
		p.EmergencyContact = req.EmergencyContact
	}
	p.UpdatedBy = actor.PrincipalID

	if err := s.repos.Patients.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update patient: %w", err)
	}
	return p, nil
}

func (s *patientService) AssignTherapist(ctx context.Context, actor *reqctx.Actor, patientID, therapistID string) error {
	if _, err := s.repos.Patients.GetByID(ctx, patientID, actor.PracticeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get patient: %w", err)
	}
	if therapistID != "" {
		if err := s.checkTherapist(ctx, therapistID, actor.PracticeID); err != nil {
			return err
		}
	}
	if err := s.repos.Patients.AssignTherapist(ctx, patientID, actor.PracticeID, therapistID, actor.PrincipalID); err != nil {
		return fmt.Errorf("assign therapist: %w", err)
	}
	return nil
}

func (s *patientService) Delete(ctx context.Context, actor *reqctx.Actor, patientID string) error {
	if _, err := s.Get(ctx, actor, patientID); err != nil {
		return err
	}
	if err := s.repos.Patients.SoftDelete(ctx, patientID, actor.PracticeID, actor.PrincipalID); err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}
	return nil
}
