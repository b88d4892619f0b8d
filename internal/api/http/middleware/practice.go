package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/journihealth/journi_backend/internal/service/auth"
	"github.com/journihealth/journi_backend/pkg/reqctx"
)

const (
	// HeaderPracticeID selects the tenant on practice-scoped routes.
	HeaderPracticeID = "X-Practice-ID"

	LocalsPracticeID   = "practice_id"
	LocalsPracticeRole = "practice_role"
)

// PracticeContext reads the X-Practice-ID header and resolves the actor's
// role within that practice. Must run after AuthRequired: a missing actor is
// a 401 here, never a 403, so an unauthenticated caller learns nothing about
// the practice.
func PracticeContext(svc auth.Service) fiber.Handler {
	return func(c fiber.Ctx) error {
		actor, ok := reqctx.ActorFromFiber(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		practiceID := c.Get(HeaderPracticeID)
		if practiceID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "X-Practice-ID header is required")
		}

		role, err := svc.ResolvePracticeRole(c.Context(), actor, practiceID)
		if err != nil {
			if errors.Is(err, auth.ErrNoPracticeAccess) {
				return fiber.ErrForbidden
			}
			if errors.Is(err, auth.ErrUnauthorized) {
				return fiber.ErrUnauthorized
			}
			return err
		}

		actor.PracticeID = practiceID
		actor.PracticeRole = role

		c.Locals(LocalsPracticeID, practiceID)
		c.Locals(LocalsPracticeRole, role)
		return c.Next()
	}
}
