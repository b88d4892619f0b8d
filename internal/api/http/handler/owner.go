package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/journihealth/journi_backend/internal/repository"
	"github.com/journihealth/journi_backend/internal/service/owner"
	"github.com/journihealth/journi_backend/pkg/reqctx"
)

type OwnerHandler struct {
	svc owner.Service
}

func NewOwnerHandler(svc owner.Service) *OwnerHandler {
	return &OwnerHandler{svc: svc}
}

func ownerResponse(o *repository.Owner) fiber.Map {
	return fiber.Map{
		"id":         o.ID,
		"email":      o.Email,
		"first_name": o.FirstName,
		"last_name":  o.LastName,
		"created_at": o.CreatedAt,
	}
}

// POST /api/v1/owners/bootstrap
func (h *OwnerHandler) Bootstrap(c fiber.Ctx) error {
	var body struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	o, err := h.svc.Bootstrap(c.Context(), owner.BootstrapRequest{
		Email:     body.Email,
		Password:  body.Password,
		FirstName: body.FirstName,
		LastName:  body.LastName,
	})
	if err != nil {
		return mapOwnerError(c, err)
	}
	return created(c, ownerResponse(o))
}

// GET /api/v1/owners/bootstrap
func (h *OwnerHandler) BootstrapStatus(c fiber.Ctx) error {
	open, err := h.svc.BootstrapOpen(c.Context())
	if err != nil {
		return internalError(c)
	}
	return ok(c, fiber.Map{"open": open})
}

// POST /api/v1/owners
func (h *OwnerHandler) Create(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	var body struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	o, err := h.svc.Create(c.Context(), actor, owner.CreateOwnerRequest{
		Email:     body.Email,
		Password:  body.Password,
		FirstName: body.FirstName,
		LastName:  body.LastName,
	})
	if err != nil {
		return mapOwnerError(c, err)
	}
	return created(c, ownerResponse(o))
}

// GET /api/v1/owners
func (h *OwnerHandler) List(c fiber.Ctx) error {
	owners, err := h.svc.List(c.Context())
	if err != nil {
		return internalError(c)
	}

	out := make([]fiber.Map, 0, len(owners))
	for _, o := range owners {
		out = append(out, ownerResponse(o))
	}
	return ok(c, out)
}

// GET /api/v1/owners/:id
func (h *OwnerHandler) Get(c fiber.Ctx) error {
	o, err := h.svc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return mapOwnerError(c, err)
	}
	return ok(c, ownerResponse(o))
}

// PATCH /api/v1/owners/:id
func (h *OwnerHandler) Update(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	var body struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	o, err := h.svc.Update(c.Context(), actor, c.Params("id"), owner.UpdateOwnerRequest{
		FirstName: body.FirstName,
		LastName:  body.LastName,
	})
	if err != nil {
		return mapOwnerError(c, err)
	}
	return ok(c, ownerResponse(o))
}

// DELETE /api/v1/owners/:id
func (h *OwnerHandler) Delete(c fiber.Ctx) error {
	actor, found := reqctx.ActorFromFiber(c)
	if !found {
		return unauthorized(c)
	}

	if err := h.svc.Delete(c.Context(), actor, c.Params("id")); err != nil {
		return mapOwnerError(c, err)
	}
	return noContent(c)
}

func mapOwnerError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, owner.ErrBootstrapClosed):
		return forbidden(c)
	case errors.Is(err, owner.ErrEmailTaken), errors.Is(err, owner.ErrLastOwner):
		return conflict(c, err.Error())
	case errors.Is(err, owner.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, owner.ErrInvalidEmail), errors.Is(err, owner.ErrPasswordTooShort):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}
