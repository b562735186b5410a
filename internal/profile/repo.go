package profile

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

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Get(ctx context.Context, userID uuid.UUID) (_ *Profile, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.profile.get")
	defer func() {
		if err != nil && !errors.Is(err, ErrProfileNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.String("user", userID.String()))

	p := &Profile{}
	err = r.db.QueryRow(ctx, `
		SELECT user_id, name, weight_kg, height_cm, age_years, sex,
		       activity_level, goal, target_weight_kg, updated_at
		FROM profile
		WHERE user_id = $1
	`, userID).Scan(
		&p.UserID, &p.Name, &p.WeightKg, &p.HeightCm, &p.AgeYears, &p.Sex,
		&p.ActivityLevel, &p.Goal, &p.TargetWeightKg, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	return p, nil
}

func (r *Repo) Upsert(ctx context.Context, p *Profile) (_ *Profile, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.profile.upsert")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.String("user", p.UserID.String()))

	saved := *p
	err = r.db.QueryRow(ctx, `
		INSERT INTO profile (user_id, name, weight_kg, height_cm, age_years, sex,
		                     activity_level, goal, target_weight_kg, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id) DO UPDATE SET
			name             = EXCLUDED.name,
			weight_kg        = EXCLUDED.weight_kg,
			height_cm        = EXCLUDED.height_cm,
			age_years        = EXCLUDED.age_years,
			sex              = EXCLUDED.sex,
			activity_level   = EXCLUDED.activity_level,
			goal             = EXCLUDED.goal,
			target_weight_kg = EXCLUDED.target_weight_kg,
			updated_at       = EXCLUDED.updated_at
		RETURNING updated_at
	`,
		p.UserID, p.Name, p.WeightKg, p.HeightCm, p.AgeYears, p.Sex,
		p.ActivityLevel, p.Goal, p.TargetWeightKg, p.UpdatedAt,
	).Scan(&saved.UpdatedAt)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}

	return &saved, nil
}
