package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/journihealth/journi_backend/internal/api/http/handler"
	"github.com/journihealth/journi_backend/internal/api/http/middleware"
	"github.com/journihealth/journi_backend/internal/repository"
)

func (r *Router) registerPatientRoutes(api fiber.Router, h *handler.PatientHandler, sessionH *handler.SessionHandler, authRequired, practiceCtx fiber.Handler) {
	view := middleware.RequireRole(clinicalRoles...)
	write := middleware.RequireRole(repository.RoleAdmin, repository.RoleTherapist)
	assign := middleware.RequireRole(adminRoles...)

	group := api.Group("/patients", authRequired, practiceCtx)
	group.Post("/", write, h.Create)
	group.Get("/", view, h.List)
	group.Get("/:id", view, h.Get)
	group.Patch("/:id", write, h.Update)
	group.Put("/:id/therapist", assign, h.AssignTherapist)
	group.Delete("/:id", assign, h.Delete)

	// Session history hangs off the patient resource.
	group.Get("/:id/sessions", view, sessionH.PatientHistory)
	group.Get("/:id/sessions/latest", view, sessionH.Latest)
}
