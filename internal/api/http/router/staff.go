package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/journihealth/journi_backend/internal/api/http/handler"
	"github.com/journihealth/journi_backend/internal/api/http/middleware"
)

func (r *Router) registerStaffRoutes(api fiber.Router, h *handler.StaffHandler, authRequired, practiceCtx fiber.Handler) {
	manage := middleware.RequireRole(adminRoles...)
	view := middleware.RequireRole(clinicalRoles...)

	group := api.Group("/staff", authRequired, practiceCtx)
	group.Post("/", manage, h.Create)
	group.Get("/", view, h.List)
	group.Get("/:id", view, h.Get)
	group.Patch("/:id", manage, h.Update)
	group.Post("/:id/activate", manage, h.Activate)
	group.Post("/:id/deactivate", manage, h.Deactivate)
	group.Delete("/:id", manage, h.Remove)

	supervisors := api.Group("/supervisors", authRequired, practiceCtx)
	supervisors.Get("/", view, h.ListSupervisors)

	therapists := api.Group("/therapists", authRequired, practiceCtx)
	therapists.Get("/", view, h.ListTherapists)
	therapists.Put("/:id/supervisor", manage, h.AssignSupervisor)
}
