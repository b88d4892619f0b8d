package middleware

import (
	"github.com/gofiber/fiber/v3"

	"github.com/journihealth/journi_backend/pkg/reqctx"
)

// RequireOwner admits only platform owners.
func RequireOwner() fiber.Handler {
	return func(c fiber.Ctx) error {
		actor, ok := reqctx.ActorFromFiber(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		if !actor.IsOwner() {
			return fiber.ErrForbidden
		}
		return c.Next()
	}
}

// RequireRole admits owners and users whose practice role is in the allowed
// set. Must run after PracticeContext, which fills in the role.
//
// Membership status never enters the decision. Login already requires at
// least one active membership; from then on any non-deleted membership
// grants its role, so deactivating a staff member cuts off new logins
// without invalidating sessions they already hold.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c fiber.Ctx) error {
		actor, ok := reqctx.ActorFromFiber(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		// Owners pass every practice-role gate.
		if actor.IsOwner() {
			return c.Next()
		}
		if _, ok := allowed[actor.PracticeRole]; !ok {
			return fiber.ErrForbidden
		}
		return c.Next()
	}
}
