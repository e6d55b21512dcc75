package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opsgate/opsgate/internal/config"
	"github.com/opsgate/opsgate/internal/model"
	"github.com/opsgate/opsgate/internal/resilience"
)

var (
	healthMetrics []string
	healthConfig  string
)

func init() {
	rootCmd.AddCommand(healthCmd)
	healthCmd.Flags().StringArrayVarP(&healthMetrics, "metric", "m", nil, "Metric as key=value (repeatable), e.g. -m error_rate=0.3 -m response_time=1200")
	healthCmd.Flags().StringVar(&healthConfig, "config", "", "Path to config YAML")
}

var healthCmd = &cobra.Command{
	Use:   "health <component>",
	Short: "Score a component's health from raw metrics",
	Long: "Scores the given metrics, classifies the component's status, and, when\n" +
		"degraded or critical, selects and executes a recovery strategy.\n\n" +
		"Recognized metrics: error_rate, response_time, availability, success_rate.\n" +
		"Exit code 0 when healthy or warning, 1 otherwise.",
	Args: cobra.ExactArgs(1),
	RunE: runHealth,
}

func runHealth(cmd *cobra.Command, args []string) error {
	metrics := make(map[string]float64, len(healthMetrics))
	for _, m := range healthMetrics {
		key, val, ok := strings.Cut(m, "=")
		if !ok {
			return fmt.Errorf("invalid metric %q: expected key=value", m)
		}
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid metric value %q: %w", val, err)
		}
		metrics[key] = f
	}

	cfg, err := config.Load(healthConfig)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	monitor := resilience.NewMonitor(
		resilience.NewSelector(cfg.RecoveryOverrides),
		resilience.PlanExecutor{},
		logger,
	)

	check, err := monitor.Record(context.Background(), args[0], metrics)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}

	printJSON(check)

	switch check.Status {
	case model.StatusHealthy, model.StatusWarning:
		return nil
	default:
		os.Exit(1)
	}
	return nil
}
