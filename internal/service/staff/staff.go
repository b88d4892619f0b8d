// Package staff provisions practice members: the user account, the practice
// membership carrying the role, and the supervisor or therapist profile
// behind it.
package staff

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/journihealth/journi_backend/config"
	"github.com/journihealth/journi_backend/internal/mailer"
	"github.com/journihealth/journi_backend/internal/repository"
	"github.com/journihealth/journi_backend/pkg/email"
	"github.com/journihealth/journi_backend/pkg/reqctx"
	"github.com/journihealth/journi_backend/pkg/util/password"
	"github.com/journihealth/journi_backend/pkg/util/phone"
)

const defaultTempPasswordLength = 12

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateStaffRequest struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
	Role      string

	// Professional profile fields, used for SUPERVISOR and THERAPIST.
	LicenseNumber string
	LicenseState  string
	LicenseExpiry *time.Time
	Specialty     []string

	// SupervisorID optionally links a new therapist to a supervisor
	// profile in the same practice.
	SupervisorID string
}

type UpdateStaffRequest struct {
	FirstName     *string
	LastName      *string
	Phone         *string
	LicenseNumber *string
	LicenseState  *string
	LicenseExpiry *time.Time
	Specialty     []string
}

type ListStaffRequest struct {
	Role   string // empty matches all
	Status string // empty matches all
}

// Member bundles a membership with its role profile, when one exists.
type Member struct {
	Membership *repository.Membership
	Supervisor *repository.Supervisor
	Therapist  *repository.Therapist
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	// Create provisions a staff member. A brand-new email gets a user
	// account with a generated temporary password delivered by email; an
	// existing user is added to the practice as-is. A live membership in
	// the same practice fails with MembershipExistsError.
	Create(ctx context.Context, actor *reqctx.Actor, practiceID string, req CreateStaffRequest) (*Member, error)

	Get(ctx context.Context, practiceID, membershipID string) (*Member, error)
	List(ctx context.Context, practiceID string, req ListStaffRequest) ([]*Member, error)
	Update(ctx context.Context, actor *reqctx.Actor, practiceID, membershipID string, req UpdateStaffRequest) (*Member, error)

	// Activate and Deactivate flip the membership status. Deactivation
	// removes practice access without touching other practices.
	Activate(ctx context.Context, actor *reqctx.Actor, practiceID, membershipID string) error
	Deactivate(ctx context.Context, actor *reqctx.Actor, practiceID, membershipID string) error

	// Remove soft-deletes the membership and its role profile. The user
	// account survives for other practices.
	Remove(ctx context.Context, actor *reqctx.Actor, practiceID, membershipID string) error

	// AssignSupervisor links a therapist profile to a supervisor profile
	// in the same practice. An empty supervisorID clears the link.
	AssignSupervisor(ctx context.Context, actor *reqctx.Actor, practiceID, therapistID, supervisorID string) error

	// ListSupervisors and ListTherapists expose the role profiles.
	ListSupervisors(ctx context.Context, practiceID string) ([]*repository.Supervisor, error)
	ListTherapists(ctx context.Context, practiceID string) ([]*repository.Therapist, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type staffService struct {
	repos *repository.Repositories
	mail  mailer.Queue
	cfg   *config.Config
}

func New(repos *repository.Repositories, mail mailer.Queue, cfg *config.Config) Service {
	return &staffService{repos: repos, mail: mail, cfg: cfg}
}

func validRole(role string) bool {
	switch role {
	case repository.RoleAdmin, repository.RoleSupervisor, repository.RoleTherapist:
		return true
	}
	return false
}

func (s *staffService) tempPasswordLength() int {
	if n := s.cfg.Authentication.TempPasswordLength; n > 0 {
		return n
	}
	return defaultTempPasswordLength
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func (s *staffService) Create(ctx context.Context, actor *reqctx.Actor, practiceID string, req CreateStaffRequest) (*Member, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return nil, ErrInvalidEmail
	}
	if !validRole(req.Role) {
		return nil, ErrInvalidRole
	}
	normPhone, err := phone.Normalize(req.Phone)
	if err != nil {
		return nil, ErrInvalidPhone
	}

	practice, err := s.repos.Practices.GetByID(ctx, practiceID)
	if err != nil {
		return nil, fmt.Errorf("get practice: %w", err)
	}

	// Existing account or a fresh one with a temporary password.
	var (
		user     *repository.User
		tempPass string
	)
	user, err = s.repos.Users.GetByEmail(ctx, req.Email)
	switch {
	case err == nil:
		existing, err := s.repos.Memberships.GetByUserAndPractice(ctx, user.ID, practiceID)
		if err == nil {
			return nil, &MembershipExistsError{Role: existing.Role}
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("get membership: %w", err)
		}
	case errors.Is(err, repository.ErrNotFound):
		tempPass = password.Generate(s.tempPasswordLength())
		hash, err := password.HashWithCost(tempPass, s.cfg.Password.Cost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user = &repository.User{
			ID:           uuid.NewString(),
			Email:        req.Email,
			PasswordHash: hash,
			FirstName:    strings.TrimSpace(req.FirstName),
			LastName:     strings.TrimSpace(req.LastName),
			Phone:        normPhone,
			CreatedBy:    actor.PrincipalID,
			UpdatedBy:    actor.PrincipalID,
		}
		if err := s.repos.Users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
	default:
		return nil, fmt.Errorf("find user: %w", err)
	}

	m := &repository.Membership{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		PracticeID: practiceID,
		Role:       req.Role,
		Status:     repository.StatusActive,
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Phone:      user.Phone,
		CreatedBy:  actor.PrincipalID,
		UpdatedBy:  actor.PrincipalID,
	}
	if err := s.repos.Memberships.Create(ctx, m); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, &MembershipExistsError{Role: req.Role}
		}
		return nil, fmt.Errorf("create membership: %w", err)
	}

	member := &Member{Membership: m}
	switch req.Role {
	case repository.RoleSupervisor:
		sup := &repository.Supervisor{
			ID:            uuid.NewString(),
			UserID:        user.ID,
			PracticeID:    practiceID,
			Email:         user.Email,
			FirstName:     user.FirstName,
			LastName:      user.LastName,
			Phone:         user.Phone,
			LicenseNumber: strings.TrimSpace(req.LicenseNumber),
			LicenseState:  strings.TrimSpace(req.LicenseState),
			LicenseExpiry: req.LicenseExpiry,
			Specialty:     req.Specialty,
		}
		if err := s.repos.Supervisors.Create(ctx, sup); err != nil {
			return nil, fmt.Errorf("create supervisor profile: %w", err)
		}
		member.Supervisor = sup
	case repository.RoleTherapist:
		if req.SupervisorID != "" {
			if err := s.checkSupervisor(ctx, req.SupervisorID, practiceID); err != nil {
				return nil, err
			}
		}
		th := &repository.Therapist{
			ID:            uuid.NewString(),
			UserID:        user.ID,
			PracticeID:    practiceID,
			SupervisorID:  req.SupervisorID,
			Email:         user.Email,
			FirstName:     user.FirstName,
			LastName:      user.LastName,
			Phone:         user.Phone,
			LicenseNumber: strings.TrimSpace(req.LicenseNumber),
			LicenseState:  strings.TrimSpace(req.LicenseState),
			LicenseExpiry: req.LicenseExpiry,
			Specialty:     req.Specialty,
		}
		if err := s.repos.Therapists.Create(ctx, th); err != nil {
			return nil, fmt.Errorf("create therapist profile: %w", err)
		}
		member.Therapist = th
	}

	data := email.AccountEmailData{
		FirstName:    user.FirstName,
		Email:        user.Email,
		PracticeName: practice.Name,
		Role:         req.Role,
		TempPassword: tempPass,
		AppName:      s.cfg.Email.AppName,
		BaseURL:      s.cfg.Email.BaseURL,
	}
	if tempPass != "" {
		s.enqueueMail(ctx, email.BuildAccountCreatedEmail(data))
	} else {
		s.enqueueMail(ctx, email.BuildAddedToPracticeEmail(data))
	}

	return member, nil
}

func (s *staffService) checkSupervisor(ctx context.Context, supervisorID, practiceID string) error {
	sup, err := s.repos.Supervisors.GetByID(ctx, supervisorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSupervisorNotFound
		}
		return fmt.Errorf("get supervisor: %w", err)
	}
	if sup.PracticeID != practiceID {
		return ErrSupervisorNotFound
	}
	return nil
}

// ---------------------------------------------------------------------------
// Read
// ---------------------------------------------------------------------------

func (s *staffService) Get(ctx context.Context, practiceID, membershipID string) (*Member, error) {
	m, err := s.repos.Memberships.GetByID(ctx, membershipID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get membership: %w", err)
	}
	if m.PracticeID != practiceID {
		return nil, ErrNotFound
	}
	return s.withProfile(ctx, m)
}

func (s *staffService) List(ctx context.Context, practiceID string, req ListStaffRequest) ([]*Member, error) {
	rows, err := s.repos.Memberships.ListByPractice(ctx, practiceID, req.Role, req.Status)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}

	members := make([]*Member, 0, len(rows))
	for _, m := range rows {
		member, err := s.withProfile(ctx, m)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, nil
}

func (s *staffService) withProfile(ctx context.Context, m *repository.Membership) (*Member, error) {
	member := &Member{Membership: m}
	switch m.Role {
	case repository.RoleSupervisor:
		sup, err := s.repos.Supervisors.GetByUserAndPractice(ctx, m.UserID, m.PracticeID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("get supervisor profile: %w", err)
		}
		member.Supervisor = sup
	case repository.RoleTherapist:
		th, err := s.repos.Therapists.GetByUserAndPractice(ctx, m.UserID, m.PracticeID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("get therapist profile: %w", err)
		}
		member.Therapist = th
	}
	return member, nil
}

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func (s *staffService) Update(ctx context.Context, actor *reqctx.Actor, practiceID, membershipID string, req UpdateStaffRequest) (*Member, error) {
	member, err := s.Get(ctx, practiceID, membershipID)
	if err != nil {
		return nil, err
	}
	m := member.Membership

	if req.FirstName != nil {
		m.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		m.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Phone != nil {
		normPhone, err := phone.Normalize(*req.Phone)
		if err != nil {
			return nil, ErrInvalidPhone
		}
		m.Phone = normPhone
	}
	m.UpdatedBy = actor.PrincipalID

	if err := s.repos.Memberships.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("update membership: %w", err)
	}

	// Role profiles carry their own copy of the person fields plus the
	// license block.
	if sup := member.Supervisor; sup != nil {
		sup.FirstName = m.FirstName
		sup.LastName = m.LastName
		sup.Phone = m.Phone
		if req.LicenseNumber != nil {
			sup.LicenseNumber = strings.TrimSpace(*req.LicenseNumber)
		}
		if req.LicenseState != nil {
			sup.LicenseState = strings.TrimSpace(*req.LicenseState)
		}
		if req.LicenseExpiry != nil {
			sup.LicenseExpiry = req.LicenseExpiry
		}
		if req.Specialty != nil {
			sup.Specialty = req.Specialty
		}
		if err := s.repos.Supervisors.Update(ctx, sup); err != nil {
			return nil, fmt.Errorf("update supervisor profile: %w", err)
		}
	}
	if th := member.Therapist; th != nil {
		th.FirstName = m.FirstName
		th.LastName = m.LastName
		th.Phone = m.Phone
		if req.LicenseNumber != nil {
			th.LicenseNumber = strings.TrimSpace(*req.LicenseNumber)
		}
		if req.LicenseState != nil {
			th.LicenseState = strings.TrimSpace(*req.LicenseState)
		}
		if req.LicenseExpiry != nil {
			th.LicenseExpiry = req.LicenseExpiry
		}
		if req.Specialty != nil {
			th.Specialty = req.Specialty
		}
		if err := s.repos.Therapists.Update(ctx, th); err != nil {
			return nil, fmt.Errorf("update therapist profile: %w", err)
		}
	}

	return member, nil
}

// ---------------------------------------------------------------------------
// Status / removal
// ---------------------------------------------------------------------------

func (s *staffService) Activate(ctx context.Context, actor *reqctx.Actor, practiceID, membershipID string) error {
	return s.setStatus(ctx, actor, practiceID, membershipID, repository.StatusActive)
}

func (s *staffService) Deactivate(ctx context.Context, actor *reqctx.Actor, practiceID, membershipID string) error {
	return s.setStatus(ctx, actor, practiceID, membershipID, repository.StatusInactive)
}

func (s *staffService) setStatus(ctx context.Context, actor *reqctx.Actor, practiceID, membershipID, status string) error {
	if _, err := s.Get(ctx, practiceID, membershipID); err != nil {
		return err
	}
	if err := s.repos.Memberships.UpdateStatus(ctx, membershipID, status, actor.PrincipalID); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return nil
}

func (s *staffService) Remove(ctx context.Context, actor *reqctx.Actor, practiceID, membershipID string) error {
	member, err := s.Get(ctx, practiceID, membershipID)
	if err != nil {
		return err
	}

	if err := s.repos.Memberships.SoftDelete(ctx, membershipID, actor.PrincipalID); err != nil {
		return fmt.Errorf("delete membership: %w", err)
	}
	if member.Supervisor != nil {
		if err := s.repos.Supervisors.SoftDelete(ctx, member.Supervisor.ID); err != nil {
			return fmt.Errorf("delete supervisor profile: %w", err)
		}
	}
	if member.Therapist != nil {
		if err := s.repos.Therapists.SoftDelete(ctx, member.Therapist.ID); err != nil {
			return fmt.Errorf("delete therapist profile: %w", err)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Supervision links
// ---------------------------------------------------------------------------

func (s *staffService) AssignSupervisor(ctx context.Context, actor *reqctx.Actor, practiceID, therapistID, supervisorID string) error {
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

	if supervisorID != "" {
		if err := s.checkSupervisor(ctx, supervisorID, practiceID); err != nil {
			return err
		}
	}

	if err := s.repos.Therapists.AssignSupervisor(ctx, therapistID, practiceID, supervisorID); err != nil {
		return fmt.Errorf("assign supervisor: %w", err)
	}
	return nil
}

func (s *staffService) ListSupervisors(ctx context.Context, practiceID string) ([]*repository.Supervisor, error) {
	rows, err := s.repos.Supervisors.ListByPractice(ctx, practiceID)
	if err != nil {
		return nil, fmt.Errorf("list supervisors: %w", err)
	}
	return rows, nil
}

func (s *staffService) ListTherapists(ctx context.Context, practiceID string) ([]*repository.Therapist, error) {
	rows, err := s.repos.Therapists.ListByPractice(ctx, practiceID)
	if err != nil {
		return nil, fmt.Errorf("list therapists: %w", err)
	}
	return rows, nil
}

func (s *staffService) enqueueMail(ctx context.Context, m email.Message) {
	if err := s.mail.Enqueue(ctx, mailer.Task{Message: m}); err != nil {
		slog.Warn("staff: failed to enqueue email", "err", err)
	}
}
