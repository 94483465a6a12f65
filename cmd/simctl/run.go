package main

import (
	"context"
	"errors"
	"fmt"

	"airlinesim/workflow"

	"github.com/spf13/cobra"
)

var runPeriod string

var runCmd = &cobra.Command{
	Use:   "run [plan files...]",
	Short: "Process plan submissions through the full workflow",
	Long: `Run processes one batch of plans. Plans are read from JSON or YAML files,
or with --period every stored plan of that semester is processed again.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runPeriod, "period", "", "process the stored plans of this semester instead of files")
}

func runRun(cmd *cobra.Command, args []string) error {
	if runPeriod == "" && len(args) == 0 {
		return errors.New("provide plan files or --period")
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		var (
			result workflow.BatchResult
			err    error
		)
		if runPeriod != "" {
			result, err = a.orch.ProcessPeriod(ctx, runPeriod)
		} else {
			plans, loadErr := workflow.LoadPlanFiles(args)
			if loadErr != nil {
				return loadErr
			}
			result = a.orch.Process(ctx, plans)
		}
		if err != nil {
			return err
		}

		if perr := printResult(cmd, result); perr != nil {
			return perr
		}
		if result.Error != "" {
			return fmt.Errorf("batch failed: %s", result.Error)
		}
		if result.Summary != nil {
			warnf("%s", workflow.FormatSummary(*result.Summary))
		}
		return nil
	})
}
