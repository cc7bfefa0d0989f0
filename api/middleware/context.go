package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const ctxActor contextKey = "actor"

// Actor describes the authenticated caller for the request. Anonymous
// shoppers carry their session token as the owner key; signed-in buyers get
// the stable user-derived key from their JWT.
type Actor struct {
	OwnerKey   string
	UserID     uuid.UUID
	Operator   bool
	Identified bool
}

// ActorFromContext returns the actor seeded by the auth middleware.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(ctxActor).(Actor)
	return actor, ok
}

// WithActor injects the actor into the context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActor, actor)
}
