package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/journihealth/journi_backend/internal/api/http/handler"
)

func (r *Router) registerAuthRoutes(api fiber.Router, h *handler.AuthHandler, authRequired fiber.Handler) {
	group := api.Group("/auth")
	group.Post("/login", h.Login)
	group.Post("/forgot-password", h.ForgotPassword)
	group.Post("/verify-otp", h.VerifyOTP)
	group.Post("/reset-password", h.ResetPassword)

	group.Post("/logout", authRequired, h.Logout)
	group.Get("/me", authRequired, h.Me)
	group.Post("/change-password", authRequired, h.ChangePassword)
	group.Get("/sessions", authRequired, h.Sessions)
	group.Delete("/sessions/:id", authRequired, h.RevokeSession)
}
