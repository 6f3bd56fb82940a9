package auth

import (
	"context"
	"strconv"
)

// Actor is the canonical request identity. Every identifier in the system is
// an int64; normalizing here keeps ownership checks plain integer equality
// instead of comparisons between mismatched representations.
type Actor struct {
	ID        int64
	Anonymous bool
}

// AnonymousActor is the identity of an unauthenticated request.
var AnonymousActor = Actor{Anonymous: true}

// String returns a stable textual form of the identity, suitable for use in
// cache keys: "user:<id>" for authenticated actors, "anon" otherwise.
func (a Actor) String() string {
	if a.Anonymous {
		return "anon"
	}
	return "user:" + strconv.FormatInt(a.ID, 10)
}

// contextKey is a private type so our context keys cannot collide with keys
// set by other packages.
type contextKey string

const actorContextKey contextKey = "auth_actor"

// WithActor returns a child context carrying the actor identity.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

// ActorFromContext extracts the actor set by the authentication middleware.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey).(Actor)
	return actor, ok
}

// ActorOrAnonymous extracts the actor, falling back to the anonymous
// identity when none was set. Read-only endpoints use this so requests
// without credentials still resolve to a well-defined identity.
func ActorOrAnonymous(ctx context.Context) Actor {
	if actor, ok := ActorFromContext(ctx); ok {
		return actor
	}
	return AnonymousActor
}
