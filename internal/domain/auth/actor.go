package auth

import (
	"context"

	"github.com/cmlabs-hris/timecard-backend-go/internal/domain/timecard"
)

type actorKey struct{}

// WithActor stores the authenticated actor in ctx.
func WithActor(ctx context.Context, actor timecard.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor placed by the auth middleware.
func ActorFromContext(ctx context.Context) (timecard.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(timecard.Actor)
	return actor, ok
}
