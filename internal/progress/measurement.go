package progress

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotEnoughData       = errors.New("not enough data")
	ErrInvalidMeasurement  = errors.New("invalid measurement")
	ErrMeasurementNotFound = errors.New("measurement not found")
)

const maxNotesLength = 500

type Measurement struct {
	ID         int       `json:"id"`
	UserID     uuid.UUID `json:"userId"`
	TakenAt    time.Time `json:"takenAt"`
	WeightKg   float64   `json:"weightKg"`
	BodyFatPct *float64  `json:"bodyFatPct,omitempty"`
	MuscleKg   *float64  `json:"muscleKg,omitempty"`
	WaistCm    *float64  `json:"waistCm,omitempty"`
	Notes      string    `json:"notes"`
}

func (m *Measurement) Validate() error {
	var problems []string
	if m.TakenAt.IsZero() {
		problems = append(problems, "taken at must be set")
	}
	if m.WeightKg <= 0 {
		problems = append(problems, "weight must be > 0")
	}
	if m.BodyFatPct != nil && (*m.BodyFatPct < 0 || *m.BodyFatPct > 100) {
		problems = append(problems, "body fat must be within [0, 100]")
	}
	if m.MuscleKg != nil && *m.MuscleKg <= 0 {
		problems = append(problems, "muscle mass must be > 0")
	}
	if m.WaistCm != nil && *m.WaistCm <= 0 {
		problems = append(problems, "waist must be > 0")
	}
	if len(m.Notes) > maxNotesLength {
		problems = append(problems, fmt.Sprintf("notes longer than %d", maxNotesLength))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidMeasurement, strings.Join(problems, ", "))
	}
	return nil
}

// Metrics compares the first and the last measurement. Optional deltas are
// set only when both ends carry the value.
type Metrics struct {
	Entries        int      `json:"entries"`
	WeightLostKg   float64  `json:"weightLostKg"`
	FatLostPct     *float64 `json:"fatLostPct,omitempty"`
	MuscleGainedKg *float64 `json:"muscleGainedKg,omitempty"`
	WaistReducedCm *float64 `json:"waistReducedCm,omitempty"`
	Weeks          int      `json:"weeks"`
	WeeklyAvgKg    float64  `json:"weeklyAvgKg"`
}

// ComputeMetrics needs at least two measurements, in any order.
func ComputeMetrics(measurements []Measurement) (Metrics, error) {
	if len(measurements) < 2 {
		return Metrics{}, fmt.Errorf("%w: %d measurements", ErrNotEnoughData, len(measurements))
	}

	sorted := Chronological(measurements)
	first, last := sorted[0], sorted[len(sorted)-1]

	weeks := int(math.Ceil(last.TakenAt.Sub(first.TakenAt).Hours() / (7 * 24)))
	metrics := Metrics{
		Entries:        len(sorted),
		WeightLostKg:   first.WeightKg - last.WeightKg,
		FatLostPct:     delta(first.BodyFatPct, last.BodyFatPct),
		MuscleGainedKg: delta(last.MuscleKg, first.MuscleKg),
		WaistReducedCm: delta(first.WaistCm, last.WaistCm),
		Weeks:          weeks,
	}
	if weeks > 0 {
		metrics.WeeklyAvgKg = metrics.WeightLostKg / float64(weeks)
	}

	return metrics, nil
}

// Chronological returns a copy of measurements ordered by TakenAt, oldest first.
func Chronological(measurements []Measurement) []Measurement {
	sorted := make([]Measurement, len(measurements))
	copy(sorted, measurements)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TakenAt.Before(sorted[j].TakenAt)
	})
	return sorted
}

func delta(from, to *float64) *float64 {
	if from == nil || to == nil {
		return nil
	}
	d := *from - *to
	return &d
}

type Direction string

const (
	DirectionLoss     Direction = "loss"
	DirectionGain     Direction = "gain"
	DirectionMaintain Direction = "maintain"
)

type GoalProgress struct {
	Percent     float64   `json:"percent"`
	RemainingKg float64   `json:"remainingKg"`
	Direction   Direction `json:"direction"`
}

// ComputeGoalProgress reports how far current is from initial toward target,
// in [0, 100]. Moving away from the target counts as 0.
func ComputeGoalProgress(initialKg, currentKg, targetKg float64) GoalProgress {
	progress := GoalProgress{
		RemainingKg: math.Abs(currentKg - targetKg),
	}

	switch {
	case targetKg < initialKg:
		progress.Direction = DirectionLoss
		progress.Percent = (initialKg - currentKg) / (initialKg - targetKg) * 100
	case targetKg > initialKg:
		progress.Direction = DirectionGain
		progress.Percent = (currentKg - initialKg) / (targetKg - initialKg) * 100
	default:
		progress.Direction = DirectionMaintain
		if progress.RemainingKg == 0 {
			progress.Percent = 100
		}
	}

	progress.Percent = math.Max(0, math.Min(100, progress.Percent))
	return progress
}
