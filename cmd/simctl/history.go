package main

import (
	"context"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history <team>",
	Short: "Show a team's evaluation feedback, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			feedback, err := a.repo.FeedbackHistory(ctx, args[0], historyLimit)
			if err != nil {
				return err
			}
			return printResult(cmd, feedback)
		})
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "maximum entries, 0 for all")
}
