package routine

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var ErrUnknownUser = errors.New("unknown user")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// endSpan leaves the not-found sentinels off the span.
func endSpan(span trace.Span, err error) {
	if errors.Is(err, ErrDayNotFound) || errors.Is(err, ErrExerciseNotFound) {
		span.End()
		return
	}
	tracing.EndSpan(span, err)
}

func (r *Repo) AddDay(ctx context.Context, day Day) (_ *Day, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routine.days.add")
	defer func() {
		tracing.EndSpan(span, err)
	}()
	span.SetAttributes(attribute.String("user", day.UserID.String()))

	err = r.db.QueryRow(ctx, `
		INSERT INTO routine_day (user_id, name, scheduled_on)
		VALUES ($1, $2, $3)
		RETURNING id
	`, day.UserID, day.Name, day.ScheduledOn).Scan(&day.ID)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}

	day.Exercises = []Exercise{}
	return &day, nil
}

// DeleteDay removes the day together with its exercises.
func (r *Repo) DeleteDay(ctx context.Context, userID uuid.UUID, dayID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routine.days.delete")
	defer func() {
		endSpan(span, err)
	}()
	span.SetAttributes(attribute.Int("day", dayID))

	tag, err := r.db.Exec(ctx, `
		DELETE FROM routine_day WHERE id = $1 AND user_id = $2
	`, dayID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDayNotFound
	}
	return nil
}

// Days returns the user's routine, earliest day first, each with its exercises.
func (r *Repo) Days(ctx context.Context, userID uuid.UUID) (_ []Day, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routine.days.list")
	defer func() {
		tracing.EndSpan(span, err)
	}()
	span.SetAttributes(attribute.String("user", userID.String()))

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, name, scheduled_on
		FROM routine_day
		WHERE user_id = $1
		ORDER BY scheduled_on ASC, id ASC;
	`, userID)
	if err != nil {
		return nil, err
	}
	days, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Day, error) {
		d := Day{Exercises: []Exercise{}}
		err := row.Scan(&d.ID, &d.UserID, &d.Name, &d.ScheduledOn)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("collect days: %w", err)
	}
	if len(days) == 0 {
		return []Day{}, nil
	}

	dayIDs := make([]int, len(days))
	dayIndex := make(map[int]int, len(days))
	for i, d := range days {
		dayIDs[i] = d.ID
		dayIndex[d.ID] = i
	}

	rows, err = r.db.Query(ctx, `
		SELECT id, day_id, position, name, reps, weight_kg, status
		FROM routine_exercise
		WHERE day_id = ANY($1)
		ORDER BY day_id, position;
	`, dayIDs)
	if err != nil {
		return nil, err
	}
	exercises, err := collectExercises(rows)
	if err != nil {
		return nil, fmt.Errorf("collect exercises: %w", err)
	}

	for _, e := range exercises {
		i := dayIndex[e.DayID]
		days[i].Exercises = append(days[i].Exercises, e)
	}

	return days, nil
}

// AddExercise appends the exercise to the end of the user's day.
func (r *Repo) AddExercise(ctx context.Context, userID uuid.UUID, e Exercise) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routine.exercises.add")
	defer func() {
		endSpan(span, err)
	}()
	span.SetAttributes(attribute.Int("day", e.DayID))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("rollback: %w: %w", rollbackErr, err)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	// lock the day so concurrent adds get distinct positions
	var dayID int
	err = tx.QueryRow(ctx, `
		SELECT id FROM routine_day WHERE id = $1 AND user_id = $2 FOR UPDATE
	`, e.DayID, userID).Scan(&dayID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDayNotFound
		}
		return nil, err
	}

	var count int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM routine_exercise WHERE day_id = $1
	`, dayID).Scan(&count)
	if err != nil {
		return nil, err
	}
	if count >= maxExercisesInDay {
		return nil, fmt.Errorf("%w: a day holds at most %d exercises", ErrInvalidRoutine, maxExercisesInDay)
	}

	e.Status = StatusPending
	err = tx.QueryRow(ctx, `
		INSERT INTO routine_exercise (day_id, position, name, reps, weight_kg, status)
		VALUES ($1, COALESCE((SELECT MAX(position) + 1 FROM routine_exercise WHERE day_id = $1), 0), $2, $3, $4, $5)
		RETURNING id, position
	`, e.DayID, e.Name, e.Reps, e.WeightKg, e.Status).Scan(&e.ID, &e.Position)
	if err != nil {
		return nil, err
	}

	return &e, nil
}

// UpdateExercise changes name, reps and weight. The status is left alone.
func (r *Repo) UpdateExercise(ctx context.Context, userID uuid.UUID, e Exercise) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routine.exercises.update")
	defer func() {
		endSpan(span, err)
	}()
	span.SetAttributes(attribute.Int("id", e.ID))

	rows, err := r.db.Query(ctx, `
		UPDATE routine_exercise e
		SET name = $3, reps = $4, weight_kg = $5
		FROM routine_day d
		WHERE e.id = $1 AND e.day_id = d.id AND d.user_id = $2
		RETURNING e.id, e.day_id, e.position, e.name, e.reps, e.weight_kg, e.status
	`, e.ID, userID, e.Name, e.Reps, e.WeightKg)
	if err != nil {
		return nil, err
	}
	updated, err := collectExercises(rows)
	if err != nil {
		return nil, err
	}
	if len(updated) == 0 {
		return nil, ErrExerciseNotFound
	}
	return &updated[0], nil
}

// ToggleExercise flips the exercise between pending and done.
func (r *Repo) ToggleExercise(ctx context.Context, userID uuid.UUID, exerciseID int) (_ Status, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routine.exercises.toggle")
	defer func() {
		endSpan(span, err)
	}()
	span.SetAttributes(attribute.Int("id", exerciseID))

	var status Status
	err = r.db.QueryRow(ctx, `
		UPDATE routine_exercise e
		SET status = CASE WHEN e.status = $3 THEN $4 ELSE $3 END
		FROM routine_day d
		WHERE e.id = $1 AND e.day_id = d.id AND d.user_id = $2
		RETURNING e.status
	`, exerciseID, userID, StatusDone, StatusPending).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrExerciseNotFound
		}
		return "", err
	}
	return status, nil
}

func (r *Repo) DeleteExercise(ctx context.Context, userID uuid.UUID, exerciseID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.routine.exercises.delete")
	defer func() {
		endSpan(span, err)
	}()
	span.SetAttributes(attribute.Int("id", exerciseID))

	tag, err := r.db.Exec(ctx, `
		DELETE FROM routine_exercise e
		USING routine_day d
		WHERE e.id = $1 AND e.day_id = d.id AND d.user_id = $2
	`, exerciseID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExerciseNotFound
	}
	return nil
}

func collectExercises(rows pgx.Rows) ([]Exercise, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Exercise, error) {
		var e Exercise
		err := row.Scan(&e.ID, &e.DayID, &e.Position, &e.Name, &e.Reps, &e.WeightKg, &e.Status)
		return e, err
	})
}
