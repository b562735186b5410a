package progress

import (
	"context"
	"errors"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var ErrUnknownUser = errors.New("unknown user")

type ListParams struct {
	UserID uuid.UUID
	Page   int
	Size   int
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, m Measurement) (_ *Measurement, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.measurements.add")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.String("user", m.UserID.String()))

	err = r.db.QueryRow(ctx, `
		INSERT INTO measurement (user_id, taken_at, weight_kg, body_fat_pct, muscle_kg, waist_cm, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`,
		m.UserID, m.TakenAt, m.WeightKg,
		m.BodyFatPct, m.MuscleKg, m.WaistCm,
		m.Notes,
	).Scan(&m.ID)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}

	return &m, nil
}

func (r *Repo) Delete(ctx context.Context, userID uuid.UUID, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.measurements.delete")
	defer func() {
		if err != nil && !errors.Is(err, ErrMeasurementNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(ctx, `
		DELETE FROM measurement WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMeasurementNotFound
	}
	return nil
}

// List returns a page of the user's measurements, newest first.
func (r *Repo) List(ctx context.Context, params ListParams) (_ []Measurement, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.measurements.list")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(
		attribute.String("user", params.UserID.String()),
		attribute.Int("page", params.Page),
		attribute.Int("size", params.Size),
	)

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, taken_at, weight_kg, body_fat_pct, muscle_kg, waist_cm, notes
		FROM measurement
		WHERE user_id = $1
		ORDER BY taken_at DESC
		LIMIT $2 OFFSET $3;
	`,
		params.UserID,
		params.Size, params.Size*params.Page,
	)
	if err != nil {
		return nil, err
	}
	return collectMeasurements(rows)
}

// All returns every measurement of the user, oldest first.
func (r *Repo) All(ctx context.Context, userID uuid.UUID) (_ []Measurement, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.measurements.all")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.String("user", userID.String()))

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, taken_at, weight_kg, body_fat_pct, muscle_kg, waist_cm, notes
		FROM measurement
		WHERE user_id = $1
		ORDER BY taken_at ASC;
	`, userID)
	if err != nil {
		return nil, err
	}
	return collectMeasurements(rows)
}

func (r *Repo) Count(ctx context.Context, userID uuid.UUID) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.measurements.count")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	var count int
	err = r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM measurement WHERE user_id = $1
	`, userID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func collectMeasurements(rows pgx.Rows) ([]Measurement, error) {
	measurements, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Measurement, error) {
		var m Measurement
		err := row.Scan(
			&m.ID, &m.UserID, &m.TakenAt, &m.WeightKg,
			&m.BodyFatPct, &m.MuscleKg, &m.WaistCm, &m.Notes,
		)
		return m, err
	})
	if err != nil {
		return nil, err
	}
	if measurements == nil {
		measurements = []Measurement{}
	}
	return measurements, nil
}
