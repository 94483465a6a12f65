package main

import (
	"context"
	"fmt"
	"os"

	"airlinesim/workflow"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed <roster.yaml>",
	Short: "Register the teams of a roster file",
	Long: `Seed registers every team listed in a YAML roster with its starting cash
and reputation. Teams that already exist are left untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open roster: %w", err)
	}
	defer f.Close()

	roster, err := workflow.LoadRoster(f)
	if err != nil {
		return err
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		created, skipped, err := a.orch.Seed(ctx, roster, a.sim.StartingCash, a.sim.StartingReputation)
		if err != nil {
			return err
		}
		return printResult(cmd, map[string][]string{
			"created": created,
			"skipped": skipped,
		})
	})
}
