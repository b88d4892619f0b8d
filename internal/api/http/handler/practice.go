package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/journihealth/journi_backend/internal/service/practice"
	"github.com/journihealth/journi_backend/pkg/reqctx"
)

type PracticeHandler struct {
	svc practice.Service
}

func NewPracticeHandler(svc practice.Service) *PracticeHandler {
	return &PracticeHandler{svc: svc}
}

type practiceBody struct {
	Name         *string `json:"name"`
	LegalName    *string `json:"legal_name"`
	TaxID        *string `json:"tax_id"`
	NPINumber    *string `json:"npi_number"`
	Phone        *string `json:"phone"`
	Email        *string `json:"email"`
	Website      *string `json:"website"`
	AddressLine1 *string `json:"address_line1"`
	AddressLine2 *string `json:"address_line2"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	PostalCode   *string `json:"postal_code"`
	Country      *string `json:"country"`
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// POST /api/v1/practices
func (h *PracticeHandler) Create(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	var body practiceBody
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	p, err := h.svc.Create(c.Context(), actor, practice.CreatePracticeRequest{
		Name:         str(body.Name),
		LegalName:    str(body.LegalName),
		TaxID:        str(body.TaxID),
		NPINumber:    str(body.NPINumber),
		Phone:        str(body.Phone),
		Email:        str(body.Email),
		Website:      str(body.Website),
		AddressLine1: str(body.AddressLine1),
		AddressLine2: str(body.AddressLine2),
		City:         str(body.City),
		State:        str(body.State),
		PostalCode:   str(body.PostalCode),
		Country:      str(body.Country),
	})
	if err != nil {
		return mapPracticeError(c, err)
	}
	return created(c, p)
}

// GET /api/v1/practices
func (h *PracticeHandler) List(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	practices, err := h.svc.List(c.Context(), actor)
	if err != nil {
		return internalError(c)
	}
	return ok(c, practices)
}

// GET /api/v1/practices/:id
func (h *PracticeHandler) Get(c fiber.Ctx) error {
	p, err := h.svc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return mapPracticeError(c, err)
	}
	return ok(c, p)
}

// PATCH /api/v1/practices/:id
func (h *PracticeHandler) Update(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	var body practiceBody
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	p, err := h.svc.Update(c.Context(), actor, c.Params("id"), practice.UpdatePracticeRequest{
		Name:         body.Name,
		LegalName:    body.LegalName,
		TaxID:        body.TaxID,
		NPINumber:    body.NPINumber,
		Phone:        body.Phone,
		Email:        body.Email,
		Website:      body.Website,
		AddressLine1: body.AddressLine1,
		AddressLine2: body.AddressLine2,
		City:         body.City,
		State:        body.State,
		PostalCode:   body.PostalCode,
		Country:      body.Country,
	})
	if err != nil {
		return mapPracticeError(c, err)
	}
	return ok(c, p)
}

// DELETE /api/v1/practices/:id
func (h *PracticeHandler) Delete(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	if err := h.svc.Delete(c.Context(), actor, c.Params("id")); err != nil {
		return mapPracticeError(c, err)
	}
	return noContent(c)
}

func mapPracticeError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, practice.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, practice.ErrNameMissing), errors.Is(err, practice.ErrInvalidPhone):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}
