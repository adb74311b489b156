package auth

import "context"

type contextKey string

const actorKey contextKey = "actor"

// Actor is the resolved caller: authentication itself happens elsewhere, the
// core only ever sees this opaque triple.
type Actor struct {
	TenantID string
	UserID   string
	Role     string
}

func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

func ActorFrom(ctx context.Context) *Actor {
	if a, ok := ctx.Value(actorKey).(*Actor); ok {
		return a
	}
	return nil
}

// GetTenantID returns the caller's tenant or "" when unauthenticated.
func GetTenantID(ctx context.Context) string {
	if a := ActorFrom(ctx); a != nil {
		return a.TenantID
	}
	return ""
}

func GetUserID(ctx context.Context) string {
	if a := ActorFrom(ctx); a != nil {
		return a.UserID
	}
	return ""
}
