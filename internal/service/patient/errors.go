package patient

import "errors"

var (
	ErrNotFound          = errors.New("patient not found or not assigned to you")
	ErrNameMissing       = errors.New("patient first and last name are required")
	ErrInvalidPhone      = errors.New("invalid phone number")
	ErrTherapistNotFound = errors.New("therapist not found in this practice")
	ErrNotTherapist      = errors.New("caller has no therapist profile in this practice")
)
