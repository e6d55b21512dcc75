package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/opsgate/opsgate/internal/config"
	"github.com/opsgate/opsgate/internal/policy"
)

var (
	evalData    string
	evalContext string
	evalConfig  string
)

func init() {
	rootCmd.AddCommand(evaluateCmd)
	evaluateCmd.Flags().StringVar(&evalData, "data", "", "Operation data as JSON")
	evaluateCmd.Flags().StringVar(&evalContext, "context", "", "Operation context as JSON")
	evaluateCmd.Flags().StringVar(&evalConfig, "config", "", "Path to config YAML")
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <operation>",
	Short: "Check an operation against the active principles",
	Long:  "Runs only the principle checks, without impact assessment or audit.\nPrints per-principle verdicts and recommendations.\n\nExit code 0 when compliant, 1 when any principle is violated.",
	Args:  cobra.ExactArgs(1),
	RunE:  runEvaluate,
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	data, octx, err := parseOperationInput(evalData, evalContext)
	if err != nil {
		return err
	}

	cfg, err := config.Load(evalConfig)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	evaluator, err := policy.NewEvaluator(cfg.ActivePrinciples, logger)
	if err != nil {
		return err
	}

	eval, err := evaluator.Evaluate(context.Background(), args[0], data, octx)
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}

	printJSON(eval)

	if !eval.Approved {
		os.Exit(1)
	}
	return nil
}
