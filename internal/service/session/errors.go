package session

import "errors"

var (
	ErrNotFound           = errors.New("session not found or not owned by you")
	ErrPatientNotAssigned = errors.New("patient not found or not assigned to you")
	ErrNotTherapist       = errors.New("caller has no therapist profile in this practice")
	ErrNotSupervisor      = errors.New("caller has no supervisor profile in this practice")
	ErrNotDraft           = errors.New("only DRAFT sessions can be updated")
	ErrNotDraftForReview  = errors.New("only DRAFT sessions can be sent for review")
	ErrNotPending         = errors.New("only PENDING sessions can be approved or rejected")
	ErrNotSupervised      = errors.New("you are not authorized to review this session")
	ErrInvalidSessionType = errors.New("session type must be INITIAL, FOLLOW_UP or CRISIS")
	ErrInvalidSchedule    = errors.New("session end must be after its start")
	ErrCommentRequired    = errors.New("a review comment is required to reject a session")
)
