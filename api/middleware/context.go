package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/storeratings/storeratings-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID   contextKey = "user_id"
	ctxEmail    contextKey = "email"
	ctxRole     contextKey = "actor_role"
	ctxAccessID contextKey = "access_id"
)

// Actor is the authenticated caller.
type Actor struct {
	UserID   uuid.UUID
	Email    string
	Role     enums.Role
	AccessID string
}

// WithActor seeds ctx with the authenticated caller.
func WithActor(ctx context.Context, actor Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, actor.UserID)
	ctx = context.WithValue(ctx, ctxEmail, actor.Email)
	ctx = context.WithValue(ctx, ctxRole, actor.Role)
	return context.WithValue(ctx, ctxAccessID, actor.AccessID)
}

// ActorFromContext returns the caller and whether one was authenticated.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	id, ok := ctx.Value(ctxUserID).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return Actor{}, false
	}
	actor := Actor{UserID: id}
	actor.Email, _ = ctx.Value(ctxEmail).(string)
	actor.Role, _ = ctx.Value(ctxRole).(enums.Role)
	actor.AccessID, _ = ctx.Value(ctxAccessID).(string)
	return actor, true
}

func UserIDFromContext(ctx context.Context) string {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return ""
	}
	return actor.UserID.String()
}

func RoleFromContext(ctx context.Context) enums.Role {
	actor, _ := ActorFromContext(ctx)
	return actor.Role
}
