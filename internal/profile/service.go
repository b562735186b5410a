package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/nutrition"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// targets are dropped on profile save, the expiry only bounds staleness
// if an invalidation is ever missed
const targetsCacheExpireSeconds = 6 * 60 * 60

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=profile_test

type profileRepo interface {
	Get(ctx context.Context, userID uuid.UUID) (*Profile, error)
	Upsert(ctx context.Context, p *Profile) (*Profile, error)
}

type statePublisher interface {
	Publish(change auth.StateChange)
}

type Service struct {
	repo           profileRepo
	publisher      statePublisher
	targetsCache   *freecache.Cache
	metricsManager *metrics.Manager
	NowFunc        func() time.Time
}

func NewService(
	repo profileRepo,
	publisher statePublisher,
	targetsCache *freecache.Cache,
	metricsManager *metrics.Manager,
) *Service {
	return &Service{
		repo:           repo,
		publisher:      publisher,
		targetsCache:   targetsCache,
		metricsManager: metricsManager,
		NowFunc:        time.Now,
	}
}

func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	return s.repo.Get(ctx, userID)
}

// Save validates and upserts the profile of the given user, drops the cached
// targets and notifies the auth-state subscribers.
func (s *Service) Save(ctx context.Context, userID uuid.UUID, p Profile) (_ *Profile, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.profile.save")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.String("user", userID.String()))

	p.UserID = userID
	p.UpdatedAt = s.NowFunc().UTC()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	saved, err := s.repo.Upsert(ctx, &p)
	if err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}

	s.targetsCache.Del(targetsCacheKey(userID))
	s.publisher.Publish(auth.StateChange{
		Kind:   auth.ProfileUpdated,
		UserID: userID,
	})

	return saved, nil
}

// IsComplete is false, without error, for users that have no profile yet.
func (s *Service) IsComplete(ctx context.Context, userID uuid.UUID) (bool, error) {
	p, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return false, nil
		}
		return false, err
	}
	return p.Complete(), nil
}

// Targets returns the unrounded nutrition targets for the stored profile.
func (s *Service) Targets(ctx context.Context, userID uuid.UUID) (_ nutrition.Targets, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.profile.targets")
	defer func() {
		if err != nil && !errors.Is(err, ErrProfileNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	key := targetsCacheKey(userID)
	if cached, err := s.targetsCache.Get(key); err == nil {
		var targets nutrition.Targets
		if err := json.Unmarshal(cached, &targets); err == nil {
			s.countCache("hit")
			span.SetAttributes(attribute.Bool("cached", true))
			return targets, nil
		}
		log.Warnf("profile service, corrupt cached targets for %s", userID)
	}
	s.countCache("miss")

	p, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nutrition.Targets{}, err
	}

	targets, err := p.Targets()
	if err != nil {
		return nutrition.Targets{}, err
	}

	if targetsJson, err := json.Marshal(targets); err == nil {
		if err := s.targetsCache.Set(key, targetsJson, targetsCacheExpireSeconds); err != nil {
			log.Warnf("profile service, cache targets for %s: %s", userID, err)
		}
	}

	return targets, nil
}

func (s *Service) countCache(result string) {
	if s.metricsManager != nil {
		s.metricsManager.CounterTargetsCache.WithLabelValues(result).Inc()
	}
}

func targetsCacheKey(userID uuid.UUID) []byte {
	return userID[:]
}
