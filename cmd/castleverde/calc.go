package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pmitra96/castleverde/models"
	"github.com/pmitra96/castleverde/services"
)

func newCalcCmd() *cobra.Command {
	var (
		input   models.MacroNutrients
		anchor  string
		seed    uint64
		noNoise bool
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Calculate the index for one macro record",
		Example: "  castleverde calc --protein 20 --fat 10 --total-carbs 30 --fiber 5 --sugar 8 --anchor Protein --no-noise",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := models.ParseAnchor(anchor)
			if err != nil {
				return err
			}
			settings := services.DefaultIndexSettings()
			settings.NoiseEnabled = !noNoise
			opts := []services.IndexOption{services.WithSettings(settings)}
			if cmd.Flags().Changed("seed") {
				opts = append(opts, services.WithSeed(seed))
			}

			result, err := services.NewIndexService(opts...).Calculate(input, key)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				b, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(b))
				return nil
			}
			fmt.Fprintf(out, "Predicted spike: %.2f (%s)\n", result.PredictedSpike, models.ZoneFor(result.PredictedSpike))
			fmt.Fprintf(out, "Net carbs: %.2f g\n", *result.InputData.NetCarbs)
			printMacros(cmd, "Balanced ("+string(key)+" anchor)", result.BalancedMacros)
			return nil
		},
	}
	f := cmd.Flags()
	f.Float64Var(&input.Protein, "protein", 0, "Protein in grams")
	f.Float64Var(&input.Fat, "fat", 0, "Fat in grams")
	f.Float64Var(&input.TotalCarbs, "total-carbs", 0, "Total carbohydrates in grams")
	f.Float64Var(&input.Fiber, "fiber", 0, "Fiber in grams")
	f.Float64Var(&input.Sugar, "sugar", 0, "Sugar in grams")
	f.StringVar(&anchor, "anchor", string(models.AnchorProtein), "Anchor nutrient: Protein, Fat, TotalCarbs, Fiber or Sugar")
	f.Uint64Var(&seed, "seed", 0, "Seed the noise for reproducible output")
	f.BoolVar(&noNoise, "no-noise", false, "Disable noise")
	f.BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func printMacros(cmd *cobra.Command, title string, m models.MacroNutrients) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, title+":")
	fmt.Fprintf(out, "  protein      %8.2f g\n", m.Protein)
	fmt.Fprintf(out, "  fat          %8.2f g\n", m.Fat)
	fmt.Fprintf(out, "  total_carbs  %8.2f g\n", m.TotalCarbs)
	fmt.Fprintf(out, "  fiber        %8.2f g\n", m.Fiber)
	fmt.Fprintf(out, "  sugar        %8.2f g\n", m.Sugar)
}
