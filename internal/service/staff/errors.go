package staff

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("staff member not found")
	ErrInvalidRole        = errors.New("role must be ADMIN, SUPERVISOR or THERAPIST")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidPhone       = errors.New("invalid phone number")
	ErrSupervisorNotFound = errors.New("supervisor not found in this practice")
	ErrTherapistNotFound  = errors.New("therapist not found in this practice")
)

// MembershipExistsError reports a duplicate membership along with the role
// the user already holds, so the caller can surface it.
type MembershipExistsError struct {
	Role string
}

func (e *MembershipExistsError) Error() string {
	return fmt.Sprintf("user already exists in this practice as %s", e.Role)
}
