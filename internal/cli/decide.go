package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	decideData    string
	decideContext string
	decideConfig  string
)

func init() {
	rootCmd.AddCommand(decideCmd)
	decideCmd.Flags().StringVar(&decideData, "data", "", "Operation data as JSON")
	decideCmd.Flags().StringVar(&decideContext, "context", "", "Operation context as JSON (purpose, contains_personal_data, ...)")
	decideCmd.Flags().StringVar(&decideConfig, "config", "", "Path to config YAML")
}

var decideCmd = &cobra.Command{
	Use:   "decide <operation>",
	Short: "Run an operation through the full oversight pipeline",
	Long: "Evaluates the operation against the active principles, assesses its\n" +
		"impact, and prints the composed decision with guidance.\n\n" +
		"Exit code 0 when approved, 1 when denied.\n" +
		"Use in scripts to gate deployments and data operations.",
	Args: cobra.ExactArgs(1),
	RunE: runDecide,
}

func runDecide(cmd *cobra.Command, args []string) error {
	data, octx, err := parseOperationInput(decideData, decideContext)
	if err != nil {
		return err
	}

	composer, sink, err := buildComposer(decideConfig)
	if err != nil {
		return err
	}
	if sink != nil {
		defer sink.Close()
	}

	decision, err := composer.Decide(context.Background(), args[0], data, octx)
	if err != nil {
		return fmt.Errorf("decide: %w", err)
	}

	printJSON(decision)

	if !decision.Approved {
		os.Exit(1)
	}
	return nil
}
