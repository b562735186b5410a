package progress

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/fittrack/internal/profile"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=progress_test

type measurementsRepo interface {
	Add(ctx context.Context, measurement Measurement) (*Measurement, error)
	Delete(ctx context.Context, userID uuid.UUID, id int) error
	List(ctx context.Context, params ListParams) ([]Measurement, error)
	All(ctx context.Context, userID uuid.UUID) ([]Measurement, error)
	Count(ctx context.Context, userID uuid.UUID) (int, error)
}

type profileGetter interface {
	Get(ctx context.Context, userID uuid.UUID) (*profile.Profile, error)
}

type Service struct {
	repo           measurementsRepo
	profiles       profileGetter
	metricsManager *metrics.Manager
}

func NewService(repo measurementsRepo, profiles profileGetter, metricsManager *metrics.Manager) *Service {
	return &Service{
		repo:           repo,
		profiles:       profiles,
		metricsManager: metricsManager,
	}
}

// Summary is what the progress page shows. Metrics is nil below two
// measurements, Goal is nil without a target weight or any measurement.
type Summary struct {
	Entries        int           `json:"entries"`
	Metrics        *Metrics      `json:"metrics,omitempty"`
	Goal           *GoalProgress `json:"goal,omitempty"`
	TargetWeightKg *float64      `json:"targetWeightKg,omitempty"`
}

func (s *Service) Add(ctx context.Context, userID uuid.UUID, m Measurement) (_ *Measurement, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.progress.measurements.add")
	defer func() {
		if err != nil && !errors.Is(err, ErrInvalidMeasurement) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	m.UserID = userID
	if err := m.Validate(); err != nil {
		return nil, err
	}

	added, err := s.repo.Add(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("add measurement: %w", err)
	}

	s.metricsManager.CounterMeasurements.Inc()
	return added, nil
}

func (s *Service) Delete(ctx context.Context, userID uuid.UUID, id int) error {
	return s.repo.Delete(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, page, size int) (_ []Measurement, total int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.progress.measurements.list")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	measurements, err := s.repo.List(ctx, ListParams{
		UserID: userID,
		Page:   page,
		Size:   size,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list measurements: %w", err)
	}

	total, err = s.repo.Count(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("count measurements: %w", err)
	}

	return measurements, total, nil
}

func (s *Service) Summary(ctx context.Context, userID uuid.UUID) (_ *Summary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.progress.summary")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	measurements, err := s.repo.All(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get measurements: %w", err)
	}

	summary := &Summary{
		Entries: len(measurements),
	}

	m, err := ComputeMetrics(measurements)
	switch {
	case err == nil:
		summary.Metrics = &m
	case !errors.Is(err, ErrNotEnoughData):
		return nil, err
	}

	p, err := s.profiles.Get(ctx, userID)
	if err != nil && !errors.Is(err, profile.ErrProfileNotFound) {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if p != nil && p.TargetWeightKg != nil {
		summary.TargetWeightKg = p.TargetWeightKg
		if len(measurements) > 0 {
			sorted := Chronological(measurements)
			goal := ComputeGoalProgress(
				sorted[0].WeightKg,
				sorted[len(sorted)-1].WeightKg,
				*p.TargetWeightKg,
			)
			summary.Goal = &goal
		}
	}

	return summary, nil
}
