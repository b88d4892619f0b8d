package reqctx

import "context"

// Principal role tags carried by auth sessions.
const (
	RoleTagOwner = "OWNER"
	RoleTagUser  = "USER"
)

// Actor identifies the authenticated caller for the lifetime of a request.
// Auth middleware resolves the session cookie into an Actor; the practice
// context middleware then fills in PracticeID and PracticeRole.
type Actor struct {
	// PrincipalID is the owner or user ID behind the session.
	PrincipalID string

	// Email of the principal at login time.
	Email string

	// RoleTag is OWNER for platform owners, USER for practice members.
	RoleTag string

	// SessionID is the opaque auth session identifier.
	SessionID string

	// PracticeID is the practice selected via the X-Practice-ID header.
	// Empty until the practice context middleware runs.
	PracticeID string

	// PracticeRole is the actor's role row within PracticeID
	// (ADMIN, SUPERVISOR or THERAPIST). Empty for owners.
	PracticeRole string
}

// IsOwner reports whether the actor is a platform owner.
func (a *Actor) IsOwner() bool {
	return a != nil && a.RoleTag == RoleTagOwner
}

// WithActor stores the authenticated actor in the context.
func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, keyActor, actor)
}

// ActorFromContext retrieves the actor from the context.
// Returns nil if the request is not authenticated.
func ActorFromContext(ctx context.Context) *Actor {
	v := ctx.Value(keyActor)
	if v == nil {
		return nil
	}
	actor, ok := v.(*Actor)
	if !ok {
		return nil
	}
	return actor
}

// MustActor retrieves the actor from the context.
// Panics if not set. Use only behind auth middleware.
func MustActor(ctx context.Context) *Actor {
	actor := ActorFromContext(ctx)
	if actor == nil {
		panic("reqctx: actor not found in context")
	}
	return actor
}

// IsAuthenticated returns true if an actor exists in the context.
func IsAuthenticated(ctx context.Context) bool {
	return ActorFromContext(ctx) != nil
}
