package meals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/fittrack/internal/nutrition"
	"github.com/2beens/fittrack/internal/profile"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=meals_test

type mealsRepo interface {
	Add(ctx context.Context, meal Meal) (*Meal, error)
	UpdateItems(ctx context.Context, userID uuid.UUID, mealID int, items []nutrition.IntakeItem) (*Meal, error)
	Delete(ctx context.Context, userID uuid.UUID, mealID int) error
	OnDay(ctx context.Context, userID uuid.UUID, day time.Time) ([]Meal, error)
	List(ctx context.Context, params ListParams) ([]Meal, error)
	Count(ctx context.Context, userID uuid.UUID) (int, error)
}

type targetsProvider interface {
	Targets(ctx context.Context, userID uuid.UUID) (nutrition.Targets, error)
}

// DayLog is the nutrition page of one day. Report is nil until the
// user has a profile to compute targets from.
type DayLog struct {
	Date     string                  `json:"date"`
	Meals    []Meal                  `json:"meals"`
	Consumed nutrition.Intake        `json:"consumed"`
	Report   *nutrition.IntakeReport `json:"report,omitempty"`
}

// Service keeps the meal log and measures it against the user's targets.
type Service struct {
	repo           mealsRepo
	targets        targetsProvider
	metricsManager *metrics.Manager
}

func NewService(repo mealsRepo, targets targetsProvider, metricsManager *metrics.Manager) *Service {
	return &Service{
		repo:           repo,
		targets:        targets,
		metricsManager: metricsManager,
	}
}

func (s *Service) Add(ctx context.Context, userID uuid.UUID, meal Meal) (_ *Meal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.meals.add")
	defer func() {
		endSpan(span, skipInvalid(err))
	}()

	meal.UserID = userID
	if err := meal.Validate(); err != nil {
		return nil, err
	}

	added, err := s.repo.Add(ctx, meal)
	if err != nil {
		return nil, fmt.Errorf("add meal: %w", err)
	}

	s.metricsManager.CounterMeals.Inc()
	log.Debugf("meal %d [%s] with %d items logged for %s", added.ID, added.Name, len(added.Items), userID)
	return added, nil
}

func (s *Service) UpdateItems(ctx context.Context, userID uuid.UUID, mealID int, items []nutrition.IntakeItem) (_ *Meal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.meals.update-items")
	defer func() {
		endSpan(span, skipInvalid(err))
	}()
	span.SetAttributes(attribute.Int("id", mealID))

	if items == nil {
		items = []nutrition.IntakeItem{}
	}
	if err := validateItems(items); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMeal, err)
	}

	updated, err := s.repo.UpdateItems(ctx, userID, mealID, items)
	if err != nil {
		return nil, fmt.Errorf("update meal items: %w", err)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, userID uuid.UUID, mealID int) error {
	return s.repo.Delete(ctx, userID, mealID)
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, page, size int) (_ []Meal, total int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.meals.list")
	defer func() {
		tracing.EndSpan(span, err)
	}()

	meals, err := s.repo.List(ctx, ListParams{
		UserID: userID,
		Page:   page,
		Size:   size,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list meals: %w", err)
	}

	total, err = s.repo.Count(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("count meals: %w", err)
	}

	return meals, total, nil
}

// Day sums the meals of the day and compares them with the rounded targets.
func (s *Service) Day(ctx context.Context, userID uuid.UUID, day time.Time) (_ *DayLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.meals.day")
	defer func() {
		tracing.EndSpan(span, err)
	}()

	meals, err := s.repo.OnDay(ctx, userID, day)
	if err != nil {
		return nil, fmt.Errorf("meals of day: %w", err)
	}

	dayLog := &DayLog{
		Date:     day.Format(DateLayout),
		Meals:    meals,
		Consumed: Intake(meals),
	}

	targets, err := s.targets.Targets(ctx, userID)
	switch {
	case err == nil:
		report := nutrition.ReportOf(dayLog.Consumed, targets.Rounded().Macros)
		dayLog.Report = &report
	case errors.Is(err, profile.ErrProfileNotFound):
	case errors.Is(err, nutrition.ErrInvalidInput):
		log.Warnf("meals day, targets for %s: %s", userID, err)
	default:
		return nil, fmt.Errorf("targets: %w", err)
	}

	return dayLog, nil
}

func skipInvalid(err error) error {
	if errors.Is(err, ErrInvalidMeal) {
		return nil
	}
	return err
}
