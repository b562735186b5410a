package meals

import (
	"context"
	"errors"
	"time"

	"github.com/2beens/fittrack/internal/nutrition"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

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

func endSpan(span trace.Span, err error) {
	if errors.Is(err, ErrMealNotFound) {
		span.End()
		return
	}
	tracing.EndSpan(span, err)
}

func (r *Repo) Add(ctx context.Context, meal Meal) (_ *Meal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.meals.add")
	defer func() {
		tracing.EndSpan(span, err)
	}()
	span.SetAttributes(attribute.String("user", meal.UserID.String()))

	if meal.Items == nil {
		meal.Items = []nutrition.IntakeItem{}
	}
	err = r.db.QueryRow(ctx, `
		INSERT INTO meal (user_id, eaten_on, name, items)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, meal.UserID, meal.EatenOn, meal.Name, meal.Items).Scan(&meal.ID)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}

	return &meal, nil
}

// UpdateItems replaces the food of a meal.
func (r *Repo) UpdateItems(ctx context.Context, userID uuid.UUID, mealID int, items []nutrition.IntakeItem) (_ *Meal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.meals.update-items")
	defer func() {
		endSpan(span, err)
	}()
	span.SetAttributes(attribute.Int("id", mealID), attribute.Int("items", len(items)))

	rows, err := r.db.Query(ctx, `
		UPDATE meal SET items = $3
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, eaten_on, name, items
	`, mealID, userID, items)
	if err != nil {
		return nil, err
	}
	updated, err := collectMeals(rows)
	if err != nil {
		return nil, err
	}
	if len(updated) == 0 {
		return nil, ErrMealNotFound
	}
	return &updated[0], nil
}

func (r *Repo) Delete(ctx context.Context, userID uuid.UUID, mealID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.meals.delete")
	defer func() {
		endSpan(span, err)
	}()
	span.SetAttributes(attribute.Int("id", mealID))

	tag, err := r.db.Exec(ctx, `
		DELETE FROM meal WHERE id = $1 AND user_id = $2
	`, mealID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMealNotFound
	}
	return nil
}

// OnDay returns the meals of one day in the order they were logged.
func (r *Repo) OnDay(ctx context.Context, userID uuid.UUID, day time.Time) (_ []Meal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.meals.day")
	defer func() {
		tracing.EndSpan(span, err)
	}()
	span.SetAttributes(
		attribute.String("user", userID.String()),
		attribute.String("day", day.Format(DateLayout)),
	)

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, eaten_on, name, items
		FROM meal
		WHERE user_id = $1 AND eaten_on = $2
		ORDER BY id ASC;
	`, userID, day)
	if err != nil {
		return nil, err
	}
	return collectMeals(rows)
}

// List returns a page of the user's meals, latest day first.
func (r *Repo) List(ctx context.Context, params ListParams) (_ []Meal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.meals.list")
	defer func() {
		tracing.EndSpan(span, err)
	}()
	span.SetAttributes(
		attribute.String("user", params.UserID.String()),
		attribute.Int("page", params.Page),
		attribute.Int("size", params.Size),
	)

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, eaten_on, name, items
		FROM meal
		WHERE user_id = $1
		ORDER BY eaten_on DESC, id DESC
		LIMIT $2 OFFSET $3;
	`,
		params.UserID,
		params.Size, params.Size*params.Page,
	)
	if err != nil {
		return nil, err
	}
	return collectMeals(rows)
}

func (r *Repo) Count(ctx context.Context, userID uuid.UUID) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.meals.count")
	defer func() {
		tracing.EndSpan(span, err)
	}()

	var count int
	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM meal WHERE user_id = $1
	`, userID).Scan(&count); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return count, nil
}

func collectMeals(rows pgx.Rows) ([]Meal, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Meal, error) {
		var m Meal
		err := row.Scan(&m.ID, &m.UserID, &m.EatenOn, &m.Name, &m.Items)
		if m.Items == nil {
			m.Items = []nutrition.IntakeItem{}
		}
		return m, err
	})
}
