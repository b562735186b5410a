package auth

import (
	"context"
	"errors"
	"time"

	"github.com/2beens/fittrack/internal/telemetry/tracing"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

type LoginChecker struct {
	ttl         time.Duration
	redisClient *redis.Client
}

func NewLoginChecker(ttl time.Duration, redisClient *redis.Client) *LoginChecker {
	return &LoginChecker{
		ttl:         ttl,
		redisClient: redisClient,
	}
}

// Session returns ErrSessionNotFound for unknown and expired tokens.
func (c *LoginChecker) Session(ctx context.Context, token string) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "loginChecker.session")
	defer func() {
		if errors.Is(err, ErrSessionNotFound) {
			span.End()
			return
		}
		tracing.EndSpan(span, err)
	}()

	if token == "" {
		return nil, ErrSessionNotFound
	}

	cmd := c.redisClient.Get(ctx, sessionKeyPrefix+token)
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	session, err := parseSessionValue(token, cmd.Val())
	if err != nil {
		return nil, err
	}

	if time.Since(session.CreatedAt) > c.ttl {
		return nil, ErrSessionNotFound
	}

	span.SetAttributes(attribute.String("user", session.UserID.String()))
	return session, nil
}

func (c *LoginChecker) IsLogged(ctx context.Context, token string) (bool, error) {
	_, err := c.Session(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *LoginChecker) CurrentUser(ctx context.Context, token string) (uuid.UUID, bool, error) {
	session, err := c.Session(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, err
	}
	return session.UserID, true, nil
}
