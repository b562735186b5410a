package nutrition

import (
	"fmt"
	"math"
)

// IntakeItem is a single logged food item.
type IntakeItem struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"proteinG"`
	CarbsG   float64 `json:"carbsG"`
	FatG     float64 `json:"fatG"`
}

func (i IntakeItem) Validate() error {
	if i.Calories < 0 || i.ProteinG < 0 || i.CarbsG < 0 || i.FatG < 0 {
		return fmt.Errorf("%w: item [%s] has negative values", ErrInvalidInput, i.Name)
	}
	return nil
}

type Intake struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"proteinG"`
	CarbsG   float64 `json:"carbsG"`
	FatG     float64 `json:"fatG"`
	Items    int     `json:"items"`
}

func SumIntake(items []IntakeItem) Intake {
	var total Intake
	for _, item := range items {
		total.Calories += item.Calories
		total.ProteinG += item.ProteinG
		total.CarbsG += item.CarbsG
		total.FatG += item.FatG
		total.Items++
	}
	return total
}

// PercentOf is capped at 100 and 0 for non-positive targets.
func PercentOf(consumed, target float64) int {
	if target <= 0 || consumed <= 0 {
		return 0
	}
	return int(math.Min(100, math.Round(consumed/target*100)))
}

type IntakeProgress struct {
	CaloriesPct int `json:"caloriesPct"`
	ProteinPct  int `json:"proteinPct"`
	CarbsPct    int `json:"carbsPct"`
	FatPct      int `json:"fatPct"`
}

func ProgressOf(consumed Intake, targets MacroTargets) IntakeProgress {
	return IntakeProgress{
		CaloriesPct: PercentOf(consumed.Calories, targets.Calories),
		ProteinPct:  PercentOf(consumed.ProteinG, targets.ProteinG),
		CarbsPct:    PercentOf(consumed.CarbsG, targets.CarbsG),
		FatPct:      PercentOf(consumed.FatG, targets.FatG),
	}
}

// IntakeReport compares what was eaten with the day's targets.
type IntakeReport struct {
	Consumed  Intake         `json:"consumed"`
	Targets   MacroTargets   `json:"targets"`
	Progress  IntakeProgress `json:"progress"`
	Remaining MacroTargets   `json:"remaining"`
}

// ReportOf never reports a negative remainder.
func ReportOf(consumed Intake, targets MacroTargets) IntakeReport {
	return IntakeReport{
		Consumed: consumed,
		Targets:  targets,
		Progress: ProgressOf(consumed, targets),
		Remaining: MacroTargets{
			Calories: max(0, targets.Calories-consumed.Calories),
			ProteinG: max(0, targets.ProteinG-consumed.ProteinG),
			CarbsG:   max(0, targets.CarbsG-consumed.CarbsG),
			FatG:     max(0, targets.FatG-consumed.FatG),
		},
	}
}
