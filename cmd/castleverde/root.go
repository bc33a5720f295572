package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "castleverde",
		Short:         "castleverde predicts glycemic spikes and balances macros",
		Long:          "castleverde scores macronutrient records with the Castle Verde Index and computes a balanced macro target around an anchor nutrient.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newCalcCmd(), newBalanceCmd(), newLabelCmd())
	return root
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
