package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pmitra96/castleverde/models"
	"github.com/pmitra96/castleverde/services"
)

func newBalanceCmd() *cobra.Command {
	var (
		anchor string
		value  float64
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Print the 4:2:3:1:2 balanced macros for an anchor amount",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := models.ParseAnchor(anchor)
			if err != nil {
				return err
			}
			balanced, err := services.Balance(key, value)
			if err != nil {
				return err
			}
			if asJSON {
				b, err := json.MarshalIndent(balanced, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			}
			printMacros(cmd, fmt.Sprintf("Balanced (%s = %g g)", key, value), balanced)
			return nil
		},
	}
	cmd.Flags().StringVar(&anchor, "anchor", string(models.AnchorProtein), "Anchor nutrient")
	cmd.Flags().Float64Var(&value, "value", 0, "Anchor amount in grams")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	_ = cmd.MarkFlagRequired("value")
	return cmd
}
