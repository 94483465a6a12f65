package main

import (
	"context"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the market and every team",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			st, err := a.orch.Status(ctx)
			if err != nil {
				return err
			}
			return printResult(cmd, st)
		})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the market to its starting state",
	Long:  `Reset overwrites the stored market with the default market. Team states are kept.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			ms, err := a.orch.Reset(ctx)
			if err != nil {
				return err
			}
			return printResult(cmd, ms)
		})
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(resetCmd)
}
