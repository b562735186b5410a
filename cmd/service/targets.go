package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/2beens/fittrack/internal/nutrition"

	"github.com/spf13/cobra"
)

func newTargetsCmd() *cobra.Command {
	var (
		in       nutrition.Input
		sex      string
		activity string
		goal     string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "targets",
		Short: "compute BMR, daily calories and macros for the given body data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in.Sex = nutrition.Sex(sex)
			in.ActivityLevel = nutrition.ActivityLevel(activity)
			in.Goal = nutrition.Goal(goal)

			targets, err := nutrition.Compute(in)
			if err != nil {
				return err
			}
			return printTargets(cmd.OutOrStdout(), targets.Rounded(), asJSON)
		},
	}

	cmd.Flags().Float64Var(&in.WeightKg, "weight", 0, "weight in kg")
	cmd.Flags().Float64Var(&in.HeightCm, "height", 0, "height in cm")
	cmd.Flags().IntVar(&in.AgeYears, "age", 0, "age in years")
	cmd.Flags().StringVar(&sex, "sex", string(nutrition.SexMale), "male | female")
	cmd.Flags().StringVar(&activity, "activity", string(nutrition.ActivityModerate), "sedentary | light | moderate | active | very_active")
	cmd.Flags().StringVar(&goal, "goal", string(nutrition.GoalMaintenance), "loss | maintenance | gain")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as json")
	_ = cmd.MarkFlagRequired("weight")
	_ = cmd.MarkFlagRequired("height")
	_ = cmd.MarkFlagRequired("age")

	return cmd
}

func printTargets(w io.Writer, t nutrition.Targets, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(t)
	}

	_, err := fmt.Fprintf(w,
		"BMR:      %.0f kcal\nDaily:    %.0f kcal\nProtein:  %.0f g\nFat:      %.0f g\nCarbs:    %.0f g\n",
		t.BMR, t.DailyCalories, t.Macros.ProteinG, t.Macros.FatG, t.Macros.CarbsG,
	)
	return err
}
