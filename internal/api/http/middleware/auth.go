package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/journihealth/journi_backend/internal/service/auth"
	"github.com/journihealth/journi_backend/pkg/reqctx"
)

// CookieAuth is the name of the session cookie.
const CookieAuth = "auth"

// AuthRequired resolves the session cookie into an actor. The token is
// opaque; every request hits the session store, so revocation is immediate.
// On success the actor lands in Locals and on the request context.
func AuthRequired(svc auth.Service) fiber.Handler {
	return func(c fiber.Ctx) error {
		token := c.Cookies(CookieAuth)
		if token == "" {
			return fiber.ErrUnauthorized
		}

		actor, err := svc.ValidateSession(c.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrUnauthorized) {
				return fiber.ErrUnauthorized
			}
			return err
		}

		reqctx.StoreActor(c, actor)
		c.SetContext(reqctx.WithActor(c.Context(), actor))
		return c.Next()
	}
}
