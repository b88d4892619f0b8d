package reqctx

import "github.com/gofiber/fiber/v3"

// CtxKeyActor is the fiber Locals key the auth middleware stores the
// actor under.
const CtxKeyActor = "reqctx_actor"

// StoreActor puts the actor into fiber Locals for downstream handlers.
func StoreActor(c fiber.Ctx, actor *Actor) {
	c.Locals(CtxKeyActor, actor)
}

// ActorFromFiber retrieves the actor placed by the auth middleware.
func ActorFromFiber(c fiber.Ctx) (*Actor, bool) {
	v := c.Locals(CtxKeyActor)
	actor, ok := v.(*Actor)
	return actor, ok && actor != nil
}
