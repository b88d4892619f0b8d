package repository

import (
	"encoding/json"
	"time"
)

// Practice role assignments.
const (
	RoleAdmin      = "ADMIN"
	RoleSupervisor = "SUPERVISOR"
	RoleTherapist  = "THERAPIST"
)

// Membership status values.
const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)

// Review workflow states for clinical session notes.
const (
	ReviewDraft    = "DRAFT"
	ReviewPending  = "PENDING"
	ReviewApproved = "APPROVED"
	ReviewRejected = "REJECTED"
)

// Clinical session types.
const (
	SessionInitial  = "INITIAL"
	SessionFollowUp = "FOLLOW_UP"
	SessionCrisis   = "CRISIS"
)

// Auth session principal tags.
const (
	SessionRoleOwner = "OWNER"
	SessionRoleUser  = "USER"
)

// Password reset OTP types.
const (
	OTPTypeForgotPassword = "FORGOT_PASSWORD"
	OTPTypeChangePassword = "CHANGE_PASSWORD"
)

// Owner is a platform-level principal. Owners manage practices and staff
// but hold no practice membership themselves.
type Owner struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	CreatedBy    string
	UpdatedBy    string
	IsDeleted    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// User is a practice-scoped principal. Its role within each practice lives
// in a Membership row.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
	CreatedBy    string
	UpdatedBy    string
	IsDeleted    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Practice is the tenant boundary. Every staff, patient and session row is
// scoped to exactly one practice.
type Practice struct {
	ID           string
	Name         string
	LegalName    string
	TaxID        string
	NPINumber    string
	Phone        string
	Email        string
	Website      string
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	PostalCode   string
	Country      string
	CreatedBy    string
	UpdatedBy    string
	IsDeleted    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Membership assigns a user one role within one practice. At most one
// non-deleted row may exist per (UserID, PracticeID) pair.
type Membership struct {
	ID         string
	UserID     string
	PracticeID string
	Role       string
	Status     string
	Email      string
	FirstName  string
	LastName   string
	Phone      string
	CreatedBy  string
	UpdatedBy  string
	IsDeleted  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Supervisor is the practice-scoped professional profile backing a
// SUPERVISOR membership.
type Supervisor struct {
	ID            string
	UserID        string
	PracticeID    string
	Email         string
	FirstName     string
	LastName      string
	Phone         string
	LicenseNumber string
	LicenseState  string
	LicenseExpiry *time.Time
	Specialty     []string
	IsDeleted     bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Therapist is the practice-scoped professional profile backing a
// THERAPIST membership. SupervisorID links it to the supervisor who
// reviews its session notes.
type Therapist struct {
	ID            string
	UserID        string
	PracticeID    string
	SupervisorID  string
	Email         string
	FirstName     string
	LastName      string
	Phone         string
	LicenseNumber string
	LicenseState  string
	LicenseExpiry *time.Time
	Specialty     []string
	IsDeleted     bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Patient belongs to one practice and is optionally assigned to one
// therapist. Only the assigned therapist may log sessions for it.
type Patient struct {
	ID               string
	PracticeID       string
	TherapistID      string
	FirstName        string
	LastName         string
	Email            string
	Phone            string
	Gender           string
	DOB              *time.Time
	Address          json.RawMessage
	EmergencyContact json.RawMessage
	CreatedBy        string
	UpdatedBy        string
	IsDeleted        bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// SessionNote is a clinical session record. Distinct from AuthSession.
// Its ReviewStatus moves DRAFT -> PENDING -> APPROVED|REJECTED and never
// skips a state.
type SessionNote struct {
	ID              string
	PracticeID      string
	PatientID       string
	TherapistID     string
	ScheduledStart  time.Time
	ScheduledEnd    time.Time
	SessionType     string
	Subjective      string
	Objective       string
	Assessment      string
	Plan            string
	AdditionalNotes string
	AISummary       string
	ReviewStatus    string
	ReviewComment   string
	CreatedBy       string
	UpdatedBy       string
	IsDeleted       bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AuthSession is a server-side login session. Its ID is the opaque token
// handed to the client in the auth cookie.
type AuthSession struct {
	ID             string
	UserID         string
	Email          string
	Role           string
	IPAddress      string
	UserAgent      string
	Device         string
	ExpiresAt      time.Time
	LastActivityAt *time.Time
	IsRevoked      bool
	CreatedAt      time.Time
}

// Live reports whether the session is usable right now.
func (s *AuthSession) Live(now time.Time) bool {
	return s != nil && !s.IsRevoked && now.Before(s.ExpiresAt)
}

// PasswordReset is a single-use reset bundle: a short-lived numeric OTP
// plus a longer-lived link token, both bound to one user.
type PasswordReset struct {
	ID          string
	UserID      string
	Email       string
	OTP         string
	OTPType     string
	OTPExpiry   time.Time
	Token       string
	TokenExpiry time.Time
	IsUsed      bool
	CreatedAt   time.Time
}
