package handler

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/journihealth/journi_backend/internal/service/patient"
	"github.com/journihealth/journi_backend/pkg/reqctx"
)

type PatientHandler struct {
	svc patient.Service
}

func NewPatientHandler(svc patient.Service) *PatientHandler {
	return &PatientHandler{svc: svc}
}

// POST /api/v1/patients
func (h *PatientHandler) Create(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	var body struct {
		FirstName        string          `json:"first_name"`
		LastName         string          `json:"last_name"`
		Email            string          `json:"email"`
		Phone            string          `json:"phone"`
		Gender           string          `json:"gender"`
		DOB              *time.Time      `json:"dob"`
		Address          json.RawMessage `json:"address"`
		EmergencyContact json.RawMessage `json:"emergency_contact"`
		TherapistID      string          `json:"therapist_id"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	p, err := h.svc.Create(c.Context(), actor, patient.CreatePatientRequest{
		FirstName:        body.FirstName,
		LastName:         body.LastName,
		Email:            body.Email,
		Phone:            body.Phone,
		Gender:           body.Gender,
		DOB:              body.DOB,
		Address:          body.Address,
		EmergencyContact: body.EmergencyContact,
		TherapistID:      body.TherapistID,
	})
	if err != nil {
		return mapPatientError(c, err)
	}
	return created(c, p)
}

// GET /api/v1/patients
func (h *PatientHandler) List(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	patients, err := h.svc.List(c.Context(), actor)
	if err != nil {
		return mapPatientError(c, err)
	}
	return ok(c, patients)
}

// GET /api/v1/patients/:id
func (h *PatientHandler) Get(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	p, err := h.svc.Get(c.Context(), actor, c.Params("id"))
	if err != nil {
		return mapPatientError(c, err)
	}
	return ok(c, p)
}

// PATCH /api/v1/patients/:id
func (h *PatientHandler) Update(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	var body struct {
		FirstName        *string         `json:"first_name"`
		LastName         *string         `json:"last_name"`
		Email            *string         `json:"email"`
		Phone            *string         `json:"phone"`
		Gender           *string         `json:"gender"`
		DOB              *time.Time      `json:"dob"`
		Address          json.RawMessage `json:"address"`
		EmergencyContact json.RawMessage `json:"emergency_contact"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	p, err := h.svc.Update(c.Context(), actor, c.Params("id"), patient.UpdatePatientRequest{
		FirstName:        body.FirstName,
		LastName:         body.LastName,
		Email:            body.Email,
		Phone:            body.Phone,
		Gender:           body.Gender,
		DOB:              body.DOB,
		Address:          body.Address,
		EmergencyContact: body.EmergencyContact,
	})
	if err != nil {
		return mapPatientError(c, err)
	}
	return ok(c, p)
}

// PUT /api/v1/patients/:id/therapist
func (h *PatientHandler) AssignTherapist(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	var body struct {
		TherapistID string `json:"therapist_id"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := h.svc.AssignTherapist(c.Context(), actor, c.Params("id"), body.TherapistID); err != nil {
		return mapPatientError(c, err)
	}
	return okMessage(c, "therapist assignment updated")
}

// DELETE /api/v1/patients/:id
func (h *PatientHandler) Delete(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	if err := h.svc.Delete(c.Context(), actor, c.Params("id")); err != nil {
		return mapPatientError(c, err)
	}
	return noContent(c)
}

func mapPatientError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, patient.ErrNotFound),
		errors.Is(err, patient.ErrTherapistNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, patient.ErrNameMissing),
		errors.Is(err, patient.ErrInvalidPhone):
		return badRequest(c, err.Error())
	case errors.Is(err, patient.ErrNotTherapist):
		return forbidden(c)
	default:
		return internalError(c)
	}
}
