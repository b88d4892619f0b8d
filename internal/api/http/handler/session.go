package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/journihealth/journi_backend/internal/service/session"
	"github.com/journihealth/journi_backend/pkg/reqctx"
)

type SessionHandler struct {
	svc session.Service
}

func NewSessionHandler(svc session.Service) *SessionHandler {
	return &SessionHandler{svc: svc}
}

// POST /api/v1/sessions
func (h *SessionHandler) Create(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	var body struct {
		PatientID       string    `json:"patient_id"`
		ScheduledStart  time.Time `json:"scheduled_start"`
		ScheduledEnd    time.Time `json:"scheduled_end"`
		SessionType     string    `json:"session_type"`
		Subjective      string    `json:"subjective"`
		Objective       string    `json:"objective"`
		Assessment      string    `json:"assessment"`
		Plan            string    `json:"plan"`
		AdditionalNotes string    `json:"additional_notes"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	n, err := h.svc.Create(c.Context(), actor, session.CreateSessionRequest{
		PatientID:       body.PatientID,
		ScheduledStart:  body.ScheduledStart,
		ScheduledEnd:    body.ScheduledEnd,
		SessionType:     body.SessionType,
		Subjective:      body.Subjective,
		Objective:       body.Objective,
		Assessment:      body.Assessment,
		Plan:            body.Plan,
		AdditionalNotes: body.AdditionalNotes,
	})
	if err != nil {
		return mapSessionError(c, err)
	}
	return created(c, n)
}

// GET /api/v1/sessions/:id
func (h *SessionHandler) Get(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	n, err := h.svc.Get(c.Context(), actor, c.Params("id"))
	if err != nil {
		return mapSessionError(c, err)
	}
	return ok(c, n)
}

// PATCH /api/v1/sessions/:id
func (h *SessionHandler) Update(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	var body struct {
		ScheduledStart  *time.Time `json:"scheduled_start"`
		ScheduledEnd    *time.Time `json:"scheduled_end"`
		SessionType     *string    `json:"session_type"`
		Subjective      *string    `json:"subjective"`
		Objective       *string    `json:"objective"`
		Assessment      *string    `json:"assessment"`
		Plan            *string    `json:"plan"`
		AdditionalNotes *string    `json:"additional_notes"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	n, err := h.svc.Update(c.Context(), actor, c.Params("id"), session.UpdateSessionRequest{
		ScheduledStart:  body.ScheduledStart,
		ScheduledEnd:    body.ScheduledEnd,
		SessionType:     body.SessionType,
		Subjective:      body.Subjective,
		Objective:       body.Objective,
		Assessment:      body.Assessment,
		Plan:            body.Plan,
		AdditionalNotes: body.AdditionalNotes,
	})
	if err != nil {
		return mapSessionError(c, err)
	}
	return ok(c, n)
}

// POST /api/v1/sessions/:id/send-for-review
func (h *SessionHandler) SendForReview(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	n, err := h.svc.SendForReview(c.Context(), actor, c.Params("id"))
	if err != nil {
		return mapSessionError(c, err)
	}
	return ok(c, n)
}

// POST /api/v1/sessions/:id/approve
func (h *SessionHandler) Approve(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	var body struct {
		Comment string `json:"comment"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	n, err := h.svc.Approve(c.Context(), actor, c.Params("id"), body.Comment)
	if err != nil {
		return mapSessionError(c, err)
	}
	return ok(c, n)
}

// POST /api/v1/sessions/:id/reject
func (h *SessionHandler) Reject(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	var body struct {
		Comment string `json:"comment"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	n, err := h.svc.Reject(c.Context(), actor, c.Params("id"), body.Comment)
	if err != nil {
		return mapSessionError(c, err)
	}
	return ok(c, n)
}

// GET /api/v1/sessions
func (h *SessionHandler) List(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	notes, err := h.svc.List(c.Context(), actor, session.ListFilter{
		ReviewStatus: c.Query("status"),
		TherapistID:  c.Query("therapist_id"),
	})
	if err != nil {
		return mapSessionError(c, err)
	}
	return ok(c, notes)
}

// GET /api/v1/sessions/drafts
func (h *SessionHandler) Drafts(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	notes, err := h.svc.Drafts(c.Context(), actor)
	if err != nil {
		return mapSessionError(c, err)
	}
	return ok(c, notes)
}

// GET /api/v1/sessions/upcoming
func (h *SessionHandler) Upcoming(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	notes, err := h.svc.Upcoming(c.Context(), actor)
	if err != nil {
		return mapSessionError(c, err)
	}
	return ok(c, notes)
}

// GET /api/v1/sessions/pending-review
func (h *SessionHandler) PendingReview(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	notes, err := h.svc.PendingReview(c.Context(), actor)
	if err != nil {
		return mapSessionError(c, err)
	}
	return ok(c, notes)
}

// GET /api/v1/patients/:id/sessions
func (h *SessionHandler) PatientHistory(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	notes, err := h.svc.PatientHistory(c.Context(), actor, c.Params("id"))
	if err != nil {
		return mapSessionError(c, err)
	}
	return ok(c, notes)
}

// GET /api/v1/patients/:id/sessions/latest
func (h *SessionHandler) Latest(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	n, err := h.svc.Latest(c.Context(), actor, c.Params("id"))
	if err != nil {
		return mapSessionError(c, err)
	}
	return ok(c, n)
}

// DELETE /api/v1/sessions/:id
func (h *SessionHandler) Delete(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	if err := h.svc.Delete(c.Context(), actor, c.Params("id")); err != nil {
		return mapSessionError(c, err)
	}
	return noContent(c)
}

func mapSessionError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, session.ErrNotFound),
		errors.Is(err, session.ErrPatientNotAssigned):
		return notFound(c, err.Error())
	case errors.Is(err, session.ErrNotSupervised),
		errors.Is(err, session.ErrNotTherapist),
		errors.Is(err, session.ErrNotSupervisor):
		return forbidden(c)
	case errors.Is(err, session.ErrNotDraft),
		errors.Is(err, session.ErrNotDraftForReview),
		errors.Is(err, session.ErrNotPending),
		errors.Is(err, session.ErrInvalidSessionType),
		errors.Is(err, session.ErrInvalidSchedule),
		errors.Is(err, session.ErrCommentRequired):
		// Workflow precondition failures report as validation errors,
		// never as not-found.
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}
