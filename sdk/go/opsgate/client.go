package opsgate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/opsgate/opsgate/internal/audit"
	"github.com/opsgate/opsgate/internal/config"
	"github.com/opsgate/opsgate/internal/enforce"
	"github.com/opsgate/opsgate/internal/impact"
	"github.com/opsgate/opsgate/internal/oversight"
	"github.com/opsgate/opsgate/internal/perf"
	"github.com/opsgate/opsgate/internal/policy"
	"github.com/opsgate/opsgate/internal/resilience"
)

// OperationFunc is the guarded work Execute runs after approval.
type OperationFunc func(ctx context.Context) (any, error)

// Client holds the oversight pipeline for in-process gating.
// Thread-safe for concurrent operations.
type Client struct {
	cfg      clientConfig
	composer *oversight.Composer
	assessor *impact.Assessor
	ledger   *audit.Ledger
	sink     *audit.Sink
	monitor  *resilience.Monitor
	tracker  *perf.Tracker
}

// New creates a Client with the given options. Options override the
// corresponding config file settings.
func New(opts ...Option) (*Client, error) {
	ccfg := clientConfig{actor: "opsgate-go"}
	for _, o := range opts {
		o(&ccfg)
	}
	if ccfg.logger == nil {
		ccfg.logger = slog.Default()
	}

	cfg, err := config.Load(ccfg.configPath)
	if err != nil {
		return nil, fmt.Errorf("opsgate: failed to load config: %w", err)
	}

	principles := cfg.ActivePrinciples
	if ccfg.principles != nil {
		principles = ccfg.principles
	}
	evaluator, err := policy.NewEvaluator(principles, ccfg.logger)
	if err != nil {
		return nil, fmt.Errorf("opsgate: %w", err)
	}

	sinkPath := cfg.AuditSink
	if ccfg.auditSink != "" {
		sinkPath = ccfg.auditSink
	}

	var sink *audit.Sink
	var ledger *audit.Ledger
	if cfg.AuditEnabled() {
		if sinkPath != "" {
			sink, err = audit.OpenSink(sinkPath)
			if err != nil {
				return nil, fmt.Errorf("opsgate: failed to open audit sink: %w", err)
			}
		}
		ledger = audit.NewLedger(sink, ccfg.logger)
	}

	overrides := cfg.RecoveryOverrides
	if ccfg.overrides != nil {
		overrides = ccfg.overrides
	}

	var monitor *resilience.Monitor
	if cfg.ResilienceEnabled() {
		monitor = resilience.NewMonitor(
			resilience.NewSelector(overrides),
			resilience.PlanExecutor{},
			ccfg.logger,
		)
	}

	assessor := impact.NewAssessor()
	return &Client{
		cfg:      ccfg,
		composer: oversight.NewComposer(evaluator, assessor, ledger, ccfg.logger),
		assessor: assessor,
		ledger:   ledger,
		sink:     sink,
		monitor:  monitor,
		tracker:  perf.NewTracker(),
	}, nil
}

// Close releases the audit sink, if any.
func (c *Client) Close() error {
	if c.sink != nil {
		return c.sink.Close()
	}
	return nil
}

// Check runs an operation through the oversight pipeline without executing
// anything. The decision is still recorded in the ledger.
func (c *Client) Check(ctx context.Context, operation string, data any, octx Context) (Decision, error) {
	return c.composer.Decide(ctx, operation, data, octx)
}

// Execute gates fn behind an oversight decision. Denied operations return a
// *BlockedError without calling fn; the blocked attempt is recorded in the
// ledger. Approved operations run, and their duration and outcome feed the
// performance tracker and the audit ledger.
func (c *Client) Execute(ctx context.Context, operation string, data any, octx Context, fn OperationFunc, opts ...ExecuteOption) (any, error) {
	ecfg := executeConfig{}
	for _, o := range opts {
		o(&ecfg)
	}

	decision, err := c.composer.Decide(ctx, operation, data, octx)
	if err != nil {
		return nil, err
	}

	if err := enforce.Check(decision); err != nil {
		c.appendOperation(decision.ID, operation, data, octx, "blocked")
		return nil, err
	}

	started := time.Now()
	result, err := fn(ctx)
	duration := time.Since(started)

	success := err == nil
	c.tracker.Record(operation, map[string]float64{
		"duration_ms": float64(duration.Milliseconds()),
	}, success)

	outcome := "executed"
	if !success {
		outcome = "failed"
	}
	c.appendOperation(decision.ID, operation, data, octx, outcome)

	if ecfg.component != "" && c.monitor != nil {
		metrics := map[string]float64{
			"response_time": float64(duration.Milliseconds()),
			"error_rate":    0,
		}
		if !success {
			metrics["error_rate"] = 1
		}
		if _, herr := c.monitor.Record(ctx, ecfg.component, metrics); herr != nil {
			c.cfg.logger.Warn("health record failed", "component", ecfg.component, "error", herr)
		}
	}

	return result, err
}

// PreventHarm scans an operation's context for harm scenarios without
// running the full oversight pipeline. Nothing is audited; use Check for a
// recorded decision.
func (c *Client) PreventHarm(operation string, octx Context) impact.HarmPrevention {
	return c.assessor.PreventHarm(operation, octx)
}

// Optimize analyzes an operation's metrics against optional targets and
// recommends remediations for identified bottlenecks.
func (c *Client) Optimize(operation string, current, target map[string]float64) perf.Optimization {
	return c.tracker.Optimize(operation, current, target)
}

// RecordHealth scores a component's metrics, triggering recovery when the
// component is degraded or critical. Returns an error when resilience
// monitoring is disabled by configuration.
func (c *Client) RecordHealth(ctx context.Context, component string, metrics map[string]float64) (HealthCheck, error) {
	if c.monitor == nil {
		return HealthCheck{}, fmt.Errorf("opsgate: resilience monitoring disabled")
	}
	return c.monitor.Record(ctx, component, metrics)
}

// RecordAccess writes an access-kind entry to the audit ledger.
func (c *Client) RecordAccess(resource, accessor, action string, granted bool) error {
	if c.ledger == nil {
		return nil
	}
	_, err := c.ledger.AppendAccess("", audit.AccessPayload{
		Resource: resource,
		Accessor: accessor,
		Action:   action,
		Granted:  granted,
	})
	return err
}

// DecisionHistory returns all decisions made through this client.
func (c *Client) DecisionHistory() []Decision {
	return c.composer.History()
}

// ComplianceReport summarizes the audit ledger. Zero when auditing is off.
func (c *Client) ComplianceReport() audit.ComplianceReport {
	if c.ledger == nil {
		return audit.ComplianceReport{}
	}
	return c.ledger.Report()
}

// ResilienceReport summarizes recent component health.
func (c *Client) ResilienceReport() resilience.Report {
	if c.monitor == nil {
		return resilience.Report{}
	}
	return c.monitor.Report()
}

// PerformanceSummary reports per-operation trends and success rates.
func (c *Client) PerformanceSummary() perf.Summary {
	return c.tracker.Summary()
}

// VerifyLedger checks the in-memory ledger's ordering and completeness.
func (c *Client) VerifyLedger() audit.IntegrityResult {
	if c.ledger == nil {
		return audit.IntegrityResult{}
	}
	return c.ledger.VerifyIntegrity()
}

func (c *Client) appendOperation(decisionID, operation string, data any, octx Context, result string) {
	if c.ledger == nil {
		return
	}
	if _, err := c.ledger.AppendOperation(decisionID, audit.OperationPayload{
		Operation:   operation,
		Actor:       c.cfg.actor,
		DataSummary: summarize(data),
		Context:     octx,
		Result:      result,
	}); err != nil {
		c.cfg.logger.Warn("audit append failed", "operation", operation, "error", err)
	}
}

// summarize renders operation data for the audit trail, truncated so large
// payloads never bloat the ledger.
func summarize(data any) string {
	if data == nil {
		return ""
	}
	s := fmt.Sprintf("%v", data)
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
