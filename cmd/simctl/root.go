package main

import (
	"encoding/json"
	"fmt"
	"os"

	"airlinesim"

	"github.com/spf13/cobra"
)

// flags shared by every subcommand. Unset flags fall back to the environment configuration.
var (
	llmBackend   string
	storeBackend string
	storeDir     string
	seed         uint64
	workers      int
	dump         bool
	stageLog     bool
)

var rootCmd = &cobra.Command{
	Use:   "simctl",
	Short: "Run the airline business simulation from the command line",
	Long: `simctl drives the airline simulation workflow locally: it processes plan
submissions through validation, implementation, the market step and the
evaluation step, and inspects or resets the stored simulation state.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&llmBackend, "llm", "", "text generation backend: bedrock, ollama or mock (default from LLM_BACKEND)")
	rootCmd.PersistentFlags().StringVar(&storeBackend, "store", "", "state store: file, s3 or memory (default from STORE_BACKEND)")
	rootCmd.PersistentFlags().StringVar(&storeDir, "dir", "", "directory of the file store (default from STORE_DIR)")
	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", 0, "market random seed, 0 picks one from the clock (default from RANDOM_SEED)")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "teams processed in parallel per stage (default from WORKERS)")
	rootCmd.PersistentFlags().BoolVar(&dump, "dump", false, "dump results with spew instead of printing JSON")
	rootCmd.PersistentFlags().BoolVar(&stageLog, "stage-log", false, "write stage logs to ./logs")
}

func printResult(cmd *cobra.Command, v any) error {
	if dump {
		airlinesim.DumpTo(cmd.OutOrStdout(), v)
		return nil
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}

func warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
