package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/journihealth/journi_backend/internal/api/http/handler"
)

func (r *Router) registerPracticeRoutes(api fiber.Router, h *handler.PracticeHandler, authRequired, ownerOnly fiber.Handler) {
	group := api.Group("/practices")

	// Listing shows owners everything and users their own practices.
	group.Get("/", authRequired, h.List)
	group.Get("/:id", authRequired, h.Get)

	group.Post("/", authRequired, ownerOnly, h.Create)
	group.Patch("/:id", authRequired, ownerOnly, h.Update)
	group.Delete("/:id", authRequired, ownerOnly, h.Delete)
}
