package routine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidRoutine   = errors.New("invalid routine")
	ErrDayNotFound      = errors.New("routine day not found")
	ErrExerciseNotFound = errors.New("routine exercise not found")
)

const (
	maxNameLength     = 100
	maxReps           = 1000
	maxWeightKg       = 1000
	maxExercisesInDay = 50
)

// Status of an exercise within its day. New exercises are pending.
type Status string

const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
)

func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusDone
}

func (s Status) Toggled() Status {
	if s == StatusDone {
		return StatusPending
	}
	return StatusDone
}

type Exercise struct {
	ID       int     `json:"id"`
	DayID    int     `json:"dayId"`
	Position int     `json:"position"`
	Name     string  `json:"name"`
	Reps     int     `json:"reps"`
	WeightKg float64 `json:"weightKg"`
	Status   Status  `json:"status"`
}

func (e *Exercise) Validate() error {
	var problems []string
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		problems = append(problems, "name must be set")
	}
	if len(e.Name) > maxNameLength {
		problems = append(problems, fmt.Sprintf("name longer than %d", maxNameLength))
	}
	if e.Reps < 0 || e.Reps > maxReps {
		problems = append(problems, fmt.Sprintf("reps must be within [0, %d]", maxReps))
	}
	if e.WeightKg < 0 || e.WeightKg > maxWeightKg {
		problems = append(problems, fmt.Sprintf("weight must be within [0, %d]", maxWeightKg))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidRoutine, strings.Join(problems, ", "))
	}
	return nil
}

// Day is one training day of the weekly routine, e.g. "Monday - legs".
// Exercises keep the order they were added in.
type Day struct {
	ID          int        `json:"id"`
	UserID      uuid.UUID  `json:"userId"`
	Name        string     `json:"name"`
	ScheduledOn time.Time  `json:"scheduledOn"`
	Exercises   []Exercise `json:"exercises"`
}

func (d *Day) Validate() error {
	var problems []string
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		problems = append(problems, "name must be set")
	}
	if len(d.Name) > maxNameLength {
		problems = append(problems, fmt.Sprintf("name longer than %d", maxNameLength))
	}
	if d.ScheduledOn.IsZero() {
		problems = append(problems, "scheduled on must be set")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidRoutine, strings.Join(problems, ", "))
	}
	return nil
}

// Progress counts the done exercises of the day.
func (d *Day) Progress() (done, total int) {
	for _, e := range d.Exercises {
		if e.Status == StatusDone {
			done++
		}
	}
	return done, len(d.Exercises)
}
