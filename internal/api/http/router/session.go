package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/journihealth/journi_backend/internal/api/http/handler"
	"github.com/journihealth/journi_backend/internal/api/http/middleware"
	"github.com/journihealth/journi_backend/internal/repository"
)

func (r *Router) registerSessionRoutes(api fiber.Router, h *handler.SessionHandler, authRequired, practiceCtx fiber.Handler) {
	therapist := middleware.RequireRole(repository.RoleTherapist)
	supervisor := middleware.RequireRole(repository.RoleSupervisor)
	admin := middleware.RequireRole(adminRoles...)
	view := middleware.RequireRole(clinicalRoles...)

	group := api.Group("/sessions", authRequired, practiceCtx)

	// Fixed paths before the :id wildcard.
	group.Get("/drafts", therapist, h.Drafts)
	group.Get("/upcoming", therapist, h.Upcoming)
	group.Get("/pending-review", supervisor, h.PendingReview)

	group.Post("/", therapist, h.Create)
	group.Get("/", admin, h.List)
	group.Get("/:id", view, h.Get)
	group.Patch("/:id", therapist, h.Update)
	group.Delete("/:id", middleware.RequireRole(repository.RoleTherapist, repository.RoleAdmin), h.Delete)

	group.Post("/:id/send-for-review", therapist, h.SendForReview)
	group.Post("/:id/approve", supervisor, h.Approve)
	group.Post("/:id/reject", supervisor, h.Reject)
}
