package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/opsgate/opsgate/internal/audit"
	"github.com/opsgate/opsgate/internal/config"
	"github.com/opsgate/opsgate/internal/impact"
	"github.com/opsgate/opsgate/internal/model"
	"github.com/opsgate/opsgate/internal/oversight"
	"github.com/opsgate/opsgate/internal/policy"
)

// buildComposer constructs the oversight pipeline for one-shot CLI commands.
// Returns the composer and the sink to close (nil when auditing is off).
func buildComposer(configPath string) (*oversight.Composer, *audit.Sink, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	evaluator, err := policy.NewEvaluator(cfg.ActivePrinciples, logger)
	if err != nil {
		return nil, nil, err
	}

	var sink *audit.Sink
	var ledger *audit.Ledger
	if cfg.AuditEnabled() {
		if cfg.AuditSink != "" {
			sink, err = audit.OpenSink(cfg.AuditSink)
			if err != nil {
				return nil, nil, fmt.Errorf("open audit sink: %w", err)
			}
		}
		ledger = audit.NewLedger(sink, logger)
	}

	composer := oversight.NewComposer(evaluator, impact.NewAssessor(), ledger, logger)
	return composer, sink, nil
}

// parseOperationInput decodes the --data and --context flag values.
func parseOperationInput(dataJSON, contextJSON string) (any, model.Context, error) {
	var data any
	if dataJSON != "" {
		if err := json.Unmarshal([]byte(dataJSON), &data); err != nil {
			return nil, nil, fmt.Errorf("invalid --data JSON: %w", err)
		}
	}

	octx := model.Context{}
	if contextJSON != "" {
		if err := json.Unmarshal([]byte(contextJSON), &octx); err != nil {
			return nil, nil, fmt.Errorf("invalid --context JSON: %w", err)
		}
	}
	return data, octx, nil
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
