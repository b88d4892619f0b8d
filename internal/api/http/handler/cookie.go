package handler

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/journihealth/journi_backend/config"
	"github.com/journihealth/journi_backend/internal/api/http/middleware"
)

// setAuthCookie writes the opaque session token. HttpOnly keeps scripts
// away from it; Secure and SameSite=Strict hold outside local development.
func setAuthCookie(c fiber.Ctx, cfg *config.Config, token string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.CookieAuth,
		Value:    token,
		Path:     "/",
		Domain:   cfg.Server.Domain,
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   cfg.Server.Environment == "production",
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

func clearAuthCookie(c fiber.Ctx, cfg *config.Config) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.CookieAuth,
		Value:    "",
		Path:     "/",
		Domain:   cfg.Server.Domain,
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   cfg.Server.Environment == "production",
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}
