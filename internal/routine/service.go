package routine

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/fittrack/internal/telemetry/tracing"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=routine_test

type routineRepo interface {
	AddDay(ctx context.Context, day Day) (*Day, error)
	DeleteDay(ctx context.Context, userID uuid.UUID, dayID int) error
	Days(ctx context.Context, userID uuid.UUID) ([]Day, error)
	AddExercise(ctx context.Context, userID uuid.UUID, exercise Exercise) (*Exercise, error)
	UpdateExercise(ctx context.Context, userID uuid.UUID, exercise Exercise) (*Exercise, error)
	ToggleExercise(ctx context.Context, userID uuid.UUID, exerciseID int) (Status, error)
	DeleteExercise(ctx context.Context, userID uuid.UUID, exerciseID int) error
}

// Service keeps the weekly workout routine of each user.
type Service struct {
	repo routineRepo
}

func NewService(repo routineRepo) *Service {
	return &Service{
		repo: repo,
	}
}

func (s *Service) AddDay(ctx context.Context, userID uuid.UUID, day Day) (_ *Day, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.routine.days.add")
	defer func() {
		endSpan(span, skipInvalid(err))
	}()

	day.UserID = userID
	if err := day.Validate(); err != nil {
		return nil, err
	}

	added, err := s.repo.AddDay(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("add day: %w", err)
	}

	log.Debugf("routine day %d [%s] added for %s", added.ID, added.Name, userID)
	return added, nil
}

func (s *Service) DeleteDay(ctx context.Context, userID uuid.UUID, dayID int) error {
	return s.repo.DeleteDay(ctx, userID, dayID)
}

func (s *Service) Days(ctx context.Context, userID uuid.UUID) (_ []Day, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.routine.days.list")
	defer func() {
		endSpan(span, err)
	}()

	days, err := s.repo.Days(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list days: %w", err)
	}
	return days, nil
}

func (s *Service) AddExercise(ctx context.Context, userID uuid.UUID, dayID int, exercise Exercise) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.routine.exercises.add")
	defer func() {
		endSpan(span, skipInvalid(err))
	}()
	span.SetAttributes(attribute.Int("day", dayID))

	exercise.DayID = dayID
	if err := exercise.Validate(); err != nil {
		return nil, err
	}

	added, err := s.repo.AddExercise(ctx, userID, exercise)
	if err != nil {
		return nil, fmt.Errorf("add exercise: %w", err)
	}
	return added, nil
}

func (s *Service) UpdateExercise(ctx context.Context, userID uuid.UUID, exercise Exercise) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.routine.exercises.update")
	defer func() {
		endSpan(span, skipInvalid(err))
	}()
	span.SetAttributes(attribute.Int("id", exercise.ID))

	if err := exercise.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateExercise(ctx, userID, exercise)
	if err != nil {
		return nil, fmt.Errorf("update exercise: %w", err)
	}
	return updated, nil
}

func (s *Service) ToggleExercise(ctx context.Context, userID uuid.UUID, exerciseID int) (Status, error) {
	return s.repo.ToggleExercise(ctx, userID, exerciseID)
}

func (s *Service) DeleteExercise(ctx context.Context, userID uuid.UUID, exerciseID int) error {
	return s.repo.DeleteExercise(ctx, userID, exerciseID)
}

func skipInvalid(err error) error {
	if errors.Is(err, ErrInvalidRoutine) {
		return nil
	}
	return err
}
