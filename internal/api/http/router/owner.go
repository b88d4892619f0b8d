package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/journihealth/journi_backend/internal/api/http/handler"
)

func (r *Router) registerOwnerRoutes(api fiber.Router, h *handler.OwnerHandler, authRequired, ownerOnly fiber.Handler) {
	group := api.Group("/owners")

	// Bootstrap is open until the first owner exists.
	group.Get("/bootstrap", h.BootstrapStatus)
	group.Post("/bootstrap", h.Bootstrap)

	group.Post("/", authRequired, ownerOnly, h.Create)
	group.Get("/", authRequired, ownerOnly, h.List)
	group.Get("/:id", authRequired, ownerOnly, h.Get)
	group.Patch("/:id", authRequired, ownerOnly, h.Update)
	group.Delete("/:id", authRequired, ownerOnly, h.Delete)
}
