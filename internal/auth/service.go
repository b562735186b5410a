package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const minPasswordLength = 6

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=auth_test

type usersRepo interface {
	Add(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
}

type statePublisher interface {
	Publish(change StateChange)
}

type Service struct {
	usersRepo   usersRepo
	redisClient *redis.Client
	publisher   statePublisher
	ttl         time.Duration

	// injectable for unit and dev testing
	RandStringFunc   func(s int) (string, error)
	HashPasswordFunc func(password string) (string, error)
	NowFunc          func() time.Time
}

func NewAuthService(
	usersRepo usersRepo,
	ttl time.Duration,
	redisClient *redis.Client,
	publisher statePublisher,
) *Service {
	return &Service{
		usersRepo:        usersRepo,
		redisClient:      redisClient,
		publisher:        publisher,
		ttl:              ttl,
		RandStringFunc:   pkg.GenerateRandomString,
		HashPasswordFunc: pkg.HashPassword,
		NowFunc:          time.Now,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("%w: [%s]", ErrInvalidEmail, email)
	}
	return nil
}

func (s *Service) Register(ctx context.Context, email, password string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "authService.register")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: at least %d characters needed", ErrWeakPassword, minPasswordLength)
	}

	passwordHash, err := s.HashPasswordFunc(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    s.NowFunc().UTC(),
	}
	if err := s.usersRepo.Add(ctx, user); err != nil {
		return nil, fmt.Errorf("add user: %w", err)
	}

	span.SetAttributes(attribute.String("user", user.ID.String()))
	log.Infof("auth service: new user registered: %s", user.ID)

	return user, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "authService.login")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	user, err := s.usersRepo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrWrongCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !pkg.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrWrongCredentials
	}

	token, err := s.RandStringFunc(tokenLength)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	session := &Session{
		Token:     token,
		UserID:    user.ID,
		CreatedAt: s.NowFunc(),
	}

	sessionKey := sessionKeyPrefix + token
	cmdSet := s.redisClient.Set(ctx, sessionKey, sessionValue(session.CreatedAt, session.UserID), 0)
	if err := cmdSet.Err(); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	// add token to list of sessions
	cmdSAdd := s.redisClient.SAdd(ctx, tokensSetKey, token)
	if err := cmdSAdd.Err(); err != nil {
		return nil, fmt.Errorf("store session token: %w", err)
	}

	s.publisher.Publish(StateChange{
		Kind:   SignedIn,
		Token:  token,
		UserID: user.ID,
	})

	return session, nil
}

// Logout returns false if the token did not belong to a live session.
func (s *Service) Logout(ctx context.Context, token string) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "authService.logout")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	sessionKey := sessionKeyPrefix + token
	cmd := s.redisClient.Get(ctx, sessionKey)
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}

	session, err := parseSessionValue(token, cmd.Val())
	if err != nil {
		return false, err
	}

	if err := s.redisClient.Del(ctx, sessionKey).Err(); err != nil {
		return false, err
	}

	// remove token from the list of sessions
	if err := s.redisClient.SRem(ctx, tokensSetKey, token).Err(); err != nil {
		return false, err
	}

	s.publisher.Publish(StateChange{
		Kind:   SignedOut,
		Token:  token,
		UserID: session.UserID,
	})

	return true, nil
}

// ScanAndClean will run through all sessions, check the TTL, and clean them if old
func (s *Service) ScanAndClean(ctx context.Context) {
	cmd := s.redisClient.SMembers(ctx, tokensSetKey)
	if err := cmd.Err(); err != nil {
		log.Errorf("auth service, scan and clean, get sessions: %s", err)
		return
	}

	sessionTokens := cmd.Val()
	if len(sessionTokens) == 0 {
		log.Debugln("auth service, scan and clean abort, no sessions")
		return
	}

	log.Infof("auth service, scan and clean [%d sessions] start ...", len(sessionTokens))
	now := s.NowFunc()
	var toRemove []*Session
	for _, token := range sessionTokens {
		cmd := s.redisClient.Get(ctx, sessionKeyPrefix+token)
		if err := cmd.Err(); err != nil {
			if errors.Is(err, redis.Nil) {
				// dangling token in the set
				toRemove = append(toRemove, &Session{Token: token})
				continue
			}
			log.Errorf("auth service, scan and clean token %s: %s", token, err)
			continue
		}

		session, err := parseSessionValue(token, cmd.Val())
		if err != nil {
			log.Errorf("auth service, scan and clean token %s: %s", token, err)
			toRemove = append(toRemove, &Session{Token: token})
			continue
		}

		if now.Sub(session.CreatedAt) > s.ttl {
			log.Debugf("auth service, will clean the session of user: %s", session.UserID)
			toRemove = append(toRemove, session)
		}
	}

	for _, session := range toRemove {
		if err := s.redisClient.Del(ctx, sessionKeyPrefix+session.Token).Err(); err != nil {
			log.Errorf("auth service, clean token %s: %s", session.Token, err)
			continue
		}

		if err := s.redisClient.SRem(ctx, tokensSetKey, session.Token).Err(); err != nil {
			log.Errorf("auth service, clean token %s: %s", session.Token, err)
			continue
		}

		s.publisher.Publish(StateChange{
			Kind:   SignedOut,
			Token:  session.Token,
			UserID: session.UserID,
		})
	}
}
