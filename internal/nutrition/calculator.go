package nutrition

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidInput = errors.New("invalid input")

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

func (s Sex) IsValid() bool {
	switch s {
	case SexMale, SexFemale:
		return true
	default:
		return false
	}
}

type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

// activityFactors maps each activity level to its TDEE multiplier.
// It is also the list of valid activity levels.
var activityFactors = map[ActivityLevel]float64{
	ActivitySedentary:  1.2,
	ActivityLight:      1.375,
	ActivityModerate:   1.55,
	ActivityActive:     1.725,
	ActivityVeryActive: 1.9,
}

func (a ActivityLevel) IsValid() bool {
	_, ok := activityFactors[a]
	return ok
}

// Factor returns the activity multiplier, false for unknown levels.
func (a ActivityLevel) Factor() (float64, bool) {
	f, ok := activityFactors[a]
	return f, ok
}

type Goal string

const (
	GoalLoss        Goal = "loss"
	GoalMaintenance Goal = "maintenance"
	GoalGain        Goal = "gain"
)

// MacroSplit holds percentages of daily calories, summing to 100.
type MacroSplit struct {
	ProteinPct int `json:"proteinPct"`
	FatPct     int `json:"fatPct"`
	CarbsPct   int `json:"carbsPct"`
}

var goalSplits = map[Goal]MacroSplit{
	GoalLoss:        {ProteinPct: 40, FatPct: 35, CarbsPct: 25},
	GoalMaintenance: {ProteinPct: 30, FatPct: 30, CarbsPct: 40},
	GoalGain:        {ProteinPct: 25, FatPct: 25, CarbsPct: 50},
}

func (g Goal) IsValid() bool {
	_, ok := goalSplits[g]
	return ok
}

// Split returns the macro split for the goal, false for unknown goals.
func (g Goal) Split() (MacroSplit, bool) {
	s, ok := goalSplits[g]
	return s, ok
}

const (
	KcalPerGramProtein = 4.0
	KcalPerGramCarbs   = 4.0
	KcalPerGramFat     = 9.0
)

// MacroTargets are unrounded; use Rounded for display.
type MacroTargets struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"proteinG"`
	CarbsG   float64 `json:"carbsG"`
	FatG     float64 `json:"fatG"`
}

// Rounded returns the targets rounded to the nearest kcal / gram.
func (m MacroTargets) Rounded() MacroTargets {
	return MacroTargets{
		Calories: math.Round(m.Calories),
		ProteinG: math.Round(m.ProteinG),
		CarbsG:   math.Round(m.CarbsG),
		FatG:     math.Round(m.FatG),
	}
}

// Kcal sums the energy of the macro grams.
func (m MacroTargets) Kcal() float64 {
	return m.ProteinG*KcalPerGramProtein + m.FatG*KcalPerGramFat + m.CarbsG*KcalPerGramCarbs
}

// ComputeBMR uses the Mifflin-St Jeor equation.
func ComputeBMR(weightKg, heightCm float64, ageYears int, sex Sex) (float64, error) {
	if weightKg <= 0 || math.IsNaN(weightKg) || math.IsInf(weightKg, 0) {
		return 0, fmt.Errorf("%w: weight must be > 0, got %v", ErrInvalidInput, weightKg)
	}
	if heightCm <= 0 || math.IsNaN(heightCm) || math.IsInf(heightCm, 0) {
		return 0, fmt.Errorf("%w: height must be > 0, got %v", ErrInvalidInput, heightCm)
	}
	if ageYears <= 0 {
		return 0, fmt.Errorf("%w: age must be > 0, got %d", ErrInvalidInput, ageYears)
	}

	bmr := 10*weightKg + 6.25*heightCm - 5*float64(ageYears)
	switch sex {
	case SexMale:
		return bmr + 5, nil
	case SexFemale:
		return bmr - 161, nil
	default:
		return 0, fmt.Errorf("%w: unknown sex [%s]", ErrInvalidInput, sex)
	}
}

func ComputeDailyCalories(bmr float64, level ActivityLevel) (float64, error) {
	if bmr <= 0 || math.IsNaN(bmr) || math.IsInf(bmr, 0) {
		return 0, fmt.Errorf("%w: bmr must be > 0, got %v", ErrInvalidInput, bmr)
	}
	factor, ok := level.Factor()
	if !ok {
		return 0, fmt.Errorf("%w: unknown activity level [%s]", ErrInvalidInput, level)
	}
	return bmr * factor, nil
}

func ComputeMacros(dailyCalories float64, goal Goal) (MacroTargets, error) {
	if dailyCalories <= 0 || math.IsNaN(dailyCalories) || math.IsInf(dailyCalories, 0) {
		return MacroTargets{}, fmt.Errorf("%w: calories must be > 0, got %v", ErrInvalidInput, dailyCalories)
	}
	split, ok := goal.Split()
	if !ok {
		return MacroTargets{}, fmt.Errorf("%w: unknown goal [%s]", ErrInvalidInput, goal)
	}

	return MacroTargets{
		Calories: dailyCalories,
		ProteinG: dailyCalories * float64(split.ProteinPct) / 100 / KcalPerGramProtein,
		FatG:     dailyCalories * float64(split.FatPct) / 100 / KcalPerGramFat,
		CarbsG:   dailyCalories * float64(split.CarbsPct) / 100 / KcalPerGramCarbs,
	}, nil
}

// Input carries the body attributes the calculator reads.
type Input struct {
	WeightKg      float64       `json:"weightKg"`
	HeightCm      float64       `json:"heightCm"`
	AgeYears      int           `json:"ageYears"`
	Sex           Sex           `json:"sex"`
	ActivityLevel ActivityLevel `json:"activityLevel"`
	Goal          Goal          `json:"goal"`
}

type Targets struct {
	BMR           float64      `json:"bmr"`
	DailyCalories float64      `json:"dailyCalories"`
	Macros        MacroTargets `json:"macros"`
}

// Rounded returns display values.
func (t Targets) Rounded() Targets {
	return Targets{
		BMR:           math.Round(t.BMR),
		DailyCalories: math.Round(t.DailyCalories),
		Macros:        t.Macros.Rounded(),
	}
}

// Compute chains ComputeBMR, ComputeDailyCalories and ComputeMacros.
func Compute(in Input) (Targets, error) {
	bmr, err := ComputeBMR(in.WeightKg, in.HeightCm, in.AgeYears, in.Sex)
	if err != nil {
		return Targets{}, err
	}
	daily, err := ComputeDailyCalories(bmr, in.ActivityLevel)
	if err != nil {
		return Targets{}, err
	}
	macros, err := ComputeMacros(daily, in.Goal)
	if err != nil {
		return Targets{}, err
	}
	return Targets{
		BMR:           bmr,
		DailyCalories: daily,
		Macros:        macros,
	}, nil
}
