package profile

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/2beens/fittrack/internal/nutrition"

	"github.com/google/uuid"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrUnknownUser     = errors.New("unknown user")
)

// Profile holds the body attributes collected by the onboarding form.
// It is keyed by the identity user id.
type Profile struct {
	UserID         uuid.UUID               `json:"userId"`
	Name           string                  `json:"name"`
	WeightKg       float64                 `json:"weightKg"`
	HeightCm       float64                 `json:"heightCm"`
	AgeYears       int                     `json:"ageYears"`
	Sex            nutrition.Sex           `json:"sex"`
	ActivityLevel  nutrition.ActivityLevel `json:"activityLevel"`
	Goal           nutrition.Goal          `json:"goal"`
	TargetWeightKg *float64                `json:"targetWeightKg,omitempty"`
	UpdatedAt      time.Time               `json:"updatedAt"`
}

func (p *Profile) Input() nutrition.Input {
	return nutrition.Input{
		WeightKg:      p.WeightKg,
		HeightCm:      p.HeightCm,
		AgeYears:      p.AgeYears,
		Sex:           p.Sex,
		ActivityLevel: p.ActivityLevel,
		Goal:          p.Goal,
	}
}

// Validate checks every field the calculator reads, plus the optional target weight.
func (p *Profile) Validate() error {
	var problems []string
	if p.WeightKg <= 0 {
		problems = append(problems, "weight must be > 0")
	}
	if p.HeightCm <= 0 {
		problems = append(problems, "height must be > 0")
	}
	if p.AgeYears <= 0 {
		problems = append(problems, "age must be > 0")
	}
	if !p.Sex.IsValid() {
		problems = append(problems, fmt.Sprintf("unknown sex [%s]", p.Sex))
	}
	if !p.ActivityLevel.IsValid() {
		problems = append(problems, fmt.Sprintf("unknown activity level [%s]", p.ActivityLevel))
	}
	if !p.Goal.IsValid() {
		problems = append(problems, fmt.Sprintf("unknown goal [%s]", p.Goal))
	}
	if p.TargetWeightKg != nil && *p.TargetWeightKg <= 0 {
		problems = append(problems, "target weight must be > 0")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", nutrition.ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}

// Complete reports whether the profile has everything the calculator needs.
func (p *Profile) Complete() bool {
	return p != nil && p.Validate() == nil
}

func (p *Profile) Targets() (nutrition.Targets, error) {
	return nutrition.Compute(p.Input())
}
