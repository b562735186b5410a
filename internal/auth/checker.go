package auth

import (
	"context"

	"github.com/google/uuid"
)

var _ Checker = (*LoginChecker)(nil)

type Checker interface {
	IsLogged(ctx context.Context, token string) (bool, error)
	Session(ctx context.Context, token string) (*Session, error)
}

// SessionSource answers "who is signed in with this token", the way the route
// gate asks it.
type SessionSource interface {
	CurrentUser(ctx context.Context, token string) (uuid.UUID, bool, error)
}

var _ SessionSource = (*LoginChecker)(nil)
