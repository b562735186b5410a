package auth

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey int

const sessionCtxKey ctxKey = iota

func ContextWithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey, session)
}

func SessionFromContext(ctx context.Context) (*Session, bool) {
	session, ok := ctx.Value(sessionCtxKey).(*Session)
	return session, ok && session != nil
}

// UserIDFromContext returns the id of the user authenticated for the request.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	session, ok := SessionFromContext(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return session.UserID, true
}
