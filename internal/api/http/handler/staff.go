package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/journihealth/journi_backend/internal/service/staff"
	"github.com/journihealth/journi_backend/pkg/reqctx"
)

type StaffHandler struct {
	svc staff.Service
}

func NewStaffHandler(svc staff.Service) *StaffHandler {
	return &StaffHandler{svc: svc}
}

// POST /api/v1/staff
func (h *StaffHandler) Create(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	var body struct {
		Email         string     `json:"email"`
		FirstName     string     `json:"first_name"`
		LastName      string     `json:"last_name"`
		Phone         string     `json:"phone"`
		Role          string     `json:"role"`
		LicenseNumber string     `json:"license_number"`
		LicenseState  string     `json:"license_state"`
		LicenseExpiry *time.Time `json:"license_expiry"`
		Specialty     []string   `json:"specialty"`
		SupervisorID  string     `json:"supervisor_id"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	member, err := h.svc.Create(c.Context(), actor, actor.PracticeID, staff.CreateStaffRequest{
		Email:         body.Email,
		FirstName:     body.FirstName,
		LastName:      body.LastName,
		Phone:         body.Phone,
		Role:          body.Role,
		LicenseNumber: body.LicenseNumber,
		LicenseState:  body.LicenseState,
		LicenseExpiry: body.LicenseExpiry,
		Specialty:     body.Specialty,
		SupervisorID:  body.SupervisorID,
	})
	if err != nil {
		return mapStaffError(c, err)
	}
	return created(c, member)
}

// GET /api/v1/staff
func (h *StaffHandler) List(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	members, err := h.svc.List(c.Context(), actor.PracticeID, staff.ListStaffRequest{
		Role:   c.Query("role"),
		Status: c.Query("status"),
	})
	if err != nil {
		return internalError(c)
	}
	return ok(c, members)
}

// GET /api/v1/staff/:id
func (h *StaffHandler) Get(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	member, err := h.svc.Get(c.Context(), actor.PracticeID, c.Params("id"))
	if err != nil {
		return mapStaffError(c, err)
	}
	return ok(c, member)
}

// PATCH /api/v1/staff/:id
func (h *StaffHandler) Update(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	var body struct {
		FirstName     *string    `json:"first_name"`
		LastName      *string    `json:"last_name"`
		Phone         *string    `json:"phone"`
		LicenseNumber *string    `json:"license_number"`
		LicenseState  *string    `json:"license_state"`
		LicenseExpiry *time.Time `json:"license_expiry"`
		Specialty     []string   `json:"specialty"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	member, err := h.svc.Update(c.Context(), actor, actor.PracticeID, c.Params("id"), staff.UpdateStaffRequest{
		FirstName:     body.FirstName,
		LastName:      body.LastName,
		Phone:         body.Phone,
		LicenseNumber: body.LicenseNumber,
		LicenseState:  body.LicenseState,
		LicenseExpiry: body.LicenseExpiry,
		Specialty:     body.Specialty,
	})
	if err != nil {
		return mapStaffError(c, err)
	}
	return ok(c, member)
}

// POST /api/v1/staff/:id/activate
func (h *StaffHandler) Activate(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	if err := h.svc.Activate(c.Context(), actor, actor.PracticeID, c.Params("id")); err != nil {
		return mapStaffError(c, err)
	}
	return okMessage(c, "staff member activated")
}

// POST /api/v1/staff/:id/deactivate
func (h *StaffHandler) Deactivate(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	if err := h.svc.Deactivate(c.Context(), actor, actor.PracticeID, c.Params("id")); err != nil {
		return mapStaffError(c, err)
	}
	return okMessage(c, "staff member deactivated")
}

// DELETE /api/v1/staff/:id
func (h *StaffHandler) Remove(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	if err := h.svc.Remove(c.Context(), actor, actor.PracticeID, c.Params("id")); err != nil {
		return mapStaffError(c, err)
	}
	return noContent(c)
}

// GET /api/v1/supervisors
func (h *StaffHandler) ListSupervisors(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	supervisors, err := h.svc.ListSupervisors(c.Context(), actor.PracticeID)
	if err != nil {
		return internalError(c)
	}
	return ok(c, supervisors)
}

// GET /api/v1/therapists
func (h *StaffHandler) ListTherapists(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	therapists, err := h.svc.ListTherapists(c.Context(), actor.PracticeID)
	if err != nil {
		return internalError(c)
	}
	return ok(c, therapists)
}

// PUT /api/v1/therapists/:id/supervisor
func (h *StaffHandler) AssignSupervisor(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	var body struct {
		SupervisorID string `json:"supervisor_id"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := h.svc.AssignSupervisor(c.Context(), actor, actor.PracticeID, c.Params("id"), body.SupervisorID); err != nil {
		return mapStaffError(c, err)
	}
	return okMessage(c, "supervisor assignment updated")
}

func mapStaffError(c fiber.Ctx, err error) error {
	var exists *staff.MembershipExistsError
	switch {
	case errors.As(err, &exists):
		return conflict(c, exists.Error())
	case errors.Is(err, staff.ErrNotFound),
		errors.Is(err, staff.ErrSupervisorNotFound),
		errors.Is(err, staff.ErrTherapistNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, staff.ErrInvalidRole),
		errors.Is(err, staff.ErrInvalidEmail),
		errors.Is(err, staff.ErrInvalidPhone):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}
