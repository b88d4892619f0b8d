// Package session owns clinical session notes and their review workflow.
// A note starts as DRAFT, is sent to PENDING by its therapist, and ends as
// APPROVED or REJECTED by the supervising reviewer. Every transition is a
// conditional write keyed on the expected current state, so two racing
// reviewers cannot both win.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/journihealth/journi_backend/internal/repository"
	"github.com/journihealth/journi_backend/pkg/reqctx"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateSessionRequest struct {
	PatientID      string
	ScheduledStart time.Time
	ScheduledEnd   time.Time
	SessionType    string

	Subjective      string
	Objective       string
	Assessment      string
	Plan            string
	AdditionalNotes string
}

type UpdateSessionRequest struct {
	ScheduledStart *time.Time
	ScheduledEnd   *time.Time
	SessionType    *string

	Subjective      *string
	Objective       *string
	Assessment      *string
	Plan            *string
	AdditionalNotes *string
}

// ListFilter narrows the practice-wide listing. Zero values match all.
type ListFilter struct {
	ReviewStatus string
	TherapistID  string
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	// Create logs a new DRAFT note. The caller must be a therapist and
	// the patient must be on their caseload.
	Create(ctx context.Context, actor *reqctx.Actor, req CreateSessionRequest) (*repository.SessionNote, error)

	// Get returns a note the actor may see: their own for therapists,
	// their supervisees' for supervisors, any in the practice for admins
	// and owners.
	Get(ctx context.Context, actor *reqctx.Actor, sessionID string) (*repository.SessionNote, error)

	// Update edits the clinical fields of the caller's own DRAFT note.
	Update(ctx context.Context, actor *reqctx.Actor, sessionID string, req UpdateSessionRequest) (*repository.SessionNote, error)

	// SendForReview moves the caller's own note DRAFT -> PENDING.
	SendForReview(ctx context.Context, actor *reqctx.Actor, sessionID string) (*repository.SessionNote, error)

	// Approve moves a supervisee's note PENDING -> APPROVED.
	Approve(ctx context.Context, actor *reqctx.Actor, sessionID, comment string) (*repository.SessionNote, error)

	// Reject moves a supervisee's note PENDING -> REJECTED. The comment
	// is mandatory so the therapist knows what to fix.
	Reject(ctx context.Context, actor *reqctx.Actor, sessionID, comment string) (*repository.SessionNote, error)

	// List returns the practice's notes for admins and owners, optionally
	// narrowed by review status and therapist.
	List(ctx context.Context, actor *reqctx.Actor, filter ListFilter) ([]*repository.SessionNote, error)

	// Drafts lists the caller's DRAFT notes, newest scheduled first.
	Drafts(ctx context.Context, actor *reqctx.Actor) ([]*repository.SessionNote, error)

	// Upcoming lists the caller's DRAFT notes scheduled after now.
	Upcoming(ctx context.Context, actor *reqctx.Actor) ([]*repository.SessionNote, error)

	// PendingReview lists the PENDING notes of the caller's supervisees.
	PendingReview(ctx context.Context, actor *reqctx.Actor) ([]*repository.SessionNote, error)

	// PatientHistory lists a patient's notes visible to the actor.
	PatientHistory(ctx context.Context, actor *reqctx.Actor, patientID string) ([]*repository.SessionNote, error)

	// Latest returns a patient's most recent note, or ErrNotFound.
	Latest(ctx context.Context, actor *reqctx.Actor, patientID string) (*repository.SessionNote, error)

	Delete(ctx context.Context, actor *reqctx.Actor, sessionID string) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type sessionService struct {
	repos *repository.Repositories
}

func New(repos *repository.Repositories) Service {
	return &sessionService{repos: repos}
}

func validSessionType(t string) bool {
	switch t {
	case repository.SessionInitial, repository.SessionFollowUp, repository.SessionCrisis:
		return true
	}
	return false
}

func (s *sessionService) therapistProfile(ctx context.Context, actor *reqctx.Actor) (*repository.Therapist, error) {
	th, err := s.repos.Therapists.GetByUserAndPractice(ctx, actor.PrincipalID, actor.PracticeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotTherapist
		}
		return nil, fmt.Errorf("get therapist profile: %w", err)
	}
	return th, nil
}

func (s *sessionService) supervisorProfile(ctx context.Context, actor *reqctx.Actor) (*repository.Supervisor, error) {
	sup, err := s.repos.Supervisors.GetByUserAndPractice(ctx, actor.PrincipalID, actor.PracticeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotSupervisor
		}
		return nil, fmt.Errorf("get supervisor profile: %w", err)
	}
	return sup, nil
}

// ---------------------------------------------------------------------------
// Create / update
// ---------------------------------------------------------------------------

func (s *sessionService) Create(ctx context.Context, actor *reqctx.Actor, req CreateSessionRequest) (*repository.SessionNote, error) {
	if !validSessionType(req.SessionType) {
		return nil, ErrInvalidSessionType
	}
	if !req.ScheduledEnd.After(req.ScheduledStart) {
		return nil, ErrInvalidSchedule
	}

	th, err := s.therapistProfile(ctx, actor)
	if err != nil {
		return nil, err
	}

	patient, err := s.repos.Patients.GetByID(ctx, req.PatientID, actor.PracticeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotAssigned
		}
		return nil, fmt.Errorf("get patient: %w", err)
	}
	if patient.TherapistID != th.ID {
		return nil, ErrPatientNotAssigned
	}

	n := &repository.SessionNote{
		ID:              uuid.NewString(),
		PracticeID:      actor.PracticeID,
		PatientID:       patient.ID,
		TherapistID:     th.ID,
		ScheduledStart:  req.ScheduledStart,
		ScheduledEnd:    req.ScheduledEnd,
		SessionType:     req.SessionType,
		Subjective:      req.Subjective,
		Objective:       req.Objective,
		Assessment:      req.Assessment,
		Plan:            req.Plan,
		AdditionalNotes: req.AdditionalNotes,
		ReviewStatus:    repository.ReviewDraft,
		CreatedBy:       actor.PrincipalID,
		UpdatedBy:       actor.PrincipalID,
	}

	if err := s.repos.Sessions.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return n, nil
}

func (s *sessionService) Get(ctx context.Context, actor *reqctx.Actor, sessionID string) (*repository.SessionNote, error) {
	n, err := s.repos.Sessions.GetByID(ctx, sessionID, actor.PracticeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	switch actor.PracticeRole {
	case repository.RoleTherapist:
		th, err := s.therapistProfile(ctx, actor)
		if err != nil {
			return nil, err
		}
		if n.TherapistID != th.ID {
			return nil, ErrNotFound
		}
	case repository.RoleSupervisor:
		sup, err := s.supervisorProfile(ctx, actor)
		if err != nil {
			return nil, err
		}
		th, err := s.repos.Therapists.GetByID(ctx, n.TherapistID)
		if err != nil {
			return nil, fmt.Errorf("get therapist: %w", err)
		}
		if th.SupervisorID != sup.ID {
			return nil, ErrNotFound
		}
	}
	return n, nil
}

// ownNote fetches a note and verifies it belongs to the calling therapist.
func (s *sessionService) ownNote(ctx context.Context, actor *reqctx.Actor, sessionID string) (*repository.SessionNote, *repository.Therapist, error) {
	th, err := s.therapistProfile(ctx, actor)
	if err != nil {
		return nil, nil, err
	}
	n, err := s.repos.Sessions.GetByID(ctx, sessionID, actor.PracticeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("get session: %w", err)
	}
	if n.TherapistID != th.ID {
		return nil, nil, ErrNotFound
	}
	return n, th, nil
}

func (s *sessionService) Update(ctx context.Context, actor *reqctx.Actor, sessionID string, req UpdateSessionRequest) (*repository.SessionNote, error) {
	n, _, err := s.ownNote(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}
	if n.ReviewStatus != repository.ReviewDraft {
		return nil, ErrNotDraft
	}

	if req.ScheduledStart != nil {
		n.ScheduledStart = *req.ScheduledStart
	}
	if req.ScheduledEnd != nil {
		n.ScheduledEnd = *req.ScheduledEnd
	}
	if !n.ScheduledEnd.After(n.ScheduledStart) {
		return nil, ErrInvalidSchedule
	}
	if req.SessionType != nil {
		if !validSessionType(*req.SessionType) {
			return nil, ErrInvalidSessionType
		}
		n.SessionType = *req.SessionType
	}
	if req.Subjective != nil {
		n.Subjective = *req.Subjective
	}
	if req.Objective != nil {
		n.Objective = *req.Objective
	}
	if req.Assessment != nil {
		n.Assessment = *req.Assessment
	}
	if req.Plan != nil {
		n.Plan = *req.Plan
	}
	if req.AdditionalNotes != nil {
		n.AdditionalNotes = *req.AdditionalNotes
	}
	n.UpdatedBy = actor.PrincipalID

	// The write re-checks DRAFT so an edit cannot land after a racing
	// send-for-review.
	ok, err := s.repos.Sessions.UpdateClinicalFields(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	if !ok {
		return nil, ErrNotDraft
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Review transitions
// ---------------------------------------------------------------------------

func (s *sessionService) SendForReview(ctx context.Context, actor *reqctx.Actor, sessionID string) (*repository.SessionNote, error) {
	n, _, err := s.ownNote(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}
	if n.ReviewStatus != repository.ReviewDraft {
		return nil, ErrNotDraftForReview
	}

	ok, err := s.repos.Sessions.TransitionReviewStatus(ctx, n.ID, actor.PracticeID, repository.ReviewDraft, repository.ReviewPending, "", actor.PrincipalID)
	if err != nil {
		return nil, fmt.Errorf("transition session: %w", err)
	}
	if !ok {
		return nil, ErrNotDraftForReview
	}
	n.ReviewStatus = repository.ReviewPending
	return n, nil
}

func (s *sessionService) Approve(ctx context.Context, actor *reqctx.Actor, sessionID, comment string) (*repository.SessionNote, error) {
	return s.review(ctx, actor, sessionID, repository.ReviewApproved, comment)
}

func (s *sessionService) Reject(ctx context.Context, actor *reqctx.Actor, sessionID, comment string) (*repository.SessionNote, error) {
	if strings.TrimSpace(comment) == "" {
		return nil, ErrCommentRequired
	}
	return s.review(ctx, actor, sessionID, repository.ReviewRejected, comment)
}

func (s *sessionService) review(ctx context.Context, actor *reqctx.Actor, sessionID, to, comment string) (*repository.SessionNote, error) {
	sup, err := s.supervisorProfile(ctx, actor)
	if err != nil {
		return nil, err
	}

	n, err := s.repos.Sessions.GetByID(ctx, sessionID, actor.PracticeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	// Only the therapist's own supervisor reviews their notes.
	th, err := s.repos.Therapists.GetByID(ctx, n.TherapistID)
	if err != nil {
		return nil, fmt.Errorf("get therapist: %w", err)
	}
	if th.SupervisorID != sup.ID {
		return nil, ErrNotSupervised
	}

	if n.ReviewStatus != repository.ReviewPending {
		return nil, ErrNotPending
	}

	ok, err := s.repos.Sessions.TransitionReviewStatus(ctx, n.ID, actor.PracticeID, repository.ReviewPending, to, comment, actor.PrincipalID)
	if err != nil {
		return nil, fmt.Errorf("transition session: %w", err)
	}
	if !ok {
		// Someone else completed the review first.
		return nil, ErrNotPending
	}
	n.ReviewStatus = to
	n.ReviewComment = comment
	return n, nil
}

// ---------------------------------------------------------------------------
// Listings
// ---------------------------------------------------------------------------

func (s *sessionService) List(ctx context.Context, actor *reqctx.Actor, filter ListFilter) ([]*repository.SessionNote, error) {
	repoFilter := repository.SessionNoteFilter{ReviewStatus: filter.ReviewStatus}

	var (
		rows []*repository.SessionNote
		err  error
	)
	if filter.TherapistID != "" {
		rows, err = s.repos.Sessions.ListByTherapist(ctx, filter.TherapistID, actor.PracticeID, repoFilter)
	} else {
		rows, err = s.repos.Sessions.ListByPractice(ctx, actor.PracticeID, repoFilter)
	}
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return rows, nil
}

func (s *sessionService) Drafts(ctx context.Context, actor *reqctx.Actor) ([]*repository.SessionNote, error) {
	th, err := s.therapistProfile(ctx, actor)
	if err != nil {
		return nil, err
	}
	rows, err := s.repos.Sessions.ListByTherapist(ctx, th.ID, actor.PracticeID, repository.SessionNoteFilter{
		ReviewStatus: repository.ReviewDraft,
	})
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	return rows, nil
}

func (s *sessionService) Upcoming(ctx context.Context, actor *reqctx.Actor) ([]*repository.SessionNote, error) {
	th, err := s.therapistProfile(ctx, actor)
	if err != nil {
		return nil, err
	}
	rows, err := s.repos.Sessions.ListByTherapist(ctx, th.ID, actor.PracticeID, repository.SessionNoteFilter{
		ReviewStatus: repository.ReviewDraft,
		StartAfter:   time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("list upcoming: %w", err)
	}
	return rows, nil
}

func (s *sessionService) PendingReview(ctx context.Context, actor *reqctx.Actor) ([]*repository.SessionNote, error) {
	sup, err := s.supervisorProfile(ctx, actor)
	if err != nil {
		return nil, err
	}

	supervisees, err := s.repos.Therapists.ListBySupervisor(ctx, sup.ID, actor.PracticeID)
	if err != nil {
		return nil, fmt.Errorf("list supervisees: %w", err)
	}
	if len(supervisees) == 0 {
		return []*repository.SessionNote{}, nil
	}

	ids := make([]string, 0, len(supervisees))
	for _, th := range supervisees {
		ids = append(ids, th.ID)
	}

	rows, err := s.repos.Sessions.ListPendingByTherapists(ctx, actor.PracticeID, ids)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	return rows, nil
}

func (s *sessionService) PatientHistory(ctx context.Context, actor *reqctx.Actor, patientID string) ([]*repository.SessionNote, error) {
	if err := s.checkPatientAccess(ctx, actor, patientID); err != nil {
		return nil, err
	}
	rows, err := s.repos.Sessions.ListByPatient(ctx, patientID, actor.PracticeID, repository.SessionNoteFilter{})
	if err != nil {
		return nil, fmt.Errorf("list patient sessions: %w", err)
	}
	return rows, nil
}

func (s *sessionService) Latest(ctx context.Context, actor *reqctx.Actor, patientID string) (*repository.SessionNote, error) {
	rows, err := s.PatientHistory(ctx, actor, patientID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0], nil
}

// checkPatientAccess mirrors the patient visibility rules: therapists reach
// only their own caseload, everyone else the whole practice.
func (s *sessionService) checkPatientAccess(ctx context.Context, actor *reqctx.Actor, patientID string) error {
	p, err := s.repos.Patients.GetByID(ctx, patientID, actor.PracticeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPatientNotAssigned
		}
		return fmt.Errorf("get patient: %w", err)
	}

	if actor.PracticeRole == repository.RoleTherapist {
		th, err := s.therapistProfile(ctx, actor)
		if err != nil {
			return err
		}
		if p.TherapistID != th.ID {
			return ErrPatientNotAssigned
		}
	}
	return nil
}

func (s *sessionService) Delete(ctx context.Context, actor *reqctx.Actor, sessionID string) error {
	// Therapists delete only their own notes; admins and owners delete
	// any note in the practice. No review-status precondition.
	if actor.PracticeRole == repository.RoleTherapist {
		if _, _, err := s.ownNote(ctx, actor, sessionID); err != nil {
			return err
		}
	} else {
		if _, err := s.repos.Sessions.GetByID(ctx, sessionID, actor.PracticeID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("get session: %w", err)
		}
	}
	if err := s.repos.Sessions.SoftDelete(ctx, sessionID, actor.PracticeID, actor.PrincipalID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
