package resilience

import (
	"context"
	"fmt"

	"github.com/opsgate/opsgate/internal/model"
)

// Recovery strategy names. The mapping from status to strategy is fixed.
const (
	StrategyRestart        = "restart_component"
	StrategyReduceLoad     = "reduce_load"
	StrategyMonitorAndWait = "monitor_and_wait"
)

// Selector maps a failing component's status to a recovery strategy.
// A per-component override table may replace the default mapping.
type Selector struct {
	overrides map[string]string
}

// NewSelector creates a Selector. overrides maps component name to strategy
// name and may be nil.
func NewSelector(overrides map[string]string) *Selector {
	return &Selector{overrides: overrides}
}

// Select returns the strategy for a component in the given status.
// critical → restart_component, degraded → reduce_load, anything else →
// monitor_and_wait. An unmapped component or status never errors: the
// fallback is always monitor_and_wait.
func (s *Selector) Select(component string, status model.HealthStatus) string {
	if s.overrides != nil {
		if strategy, ok := s.overrides[component]; ok {
			return strategy
		}
	}
	switch status {
	case model.StatusCritical:
		return StrategyRestart
	case model.StatusDegraded:
		return StrategyReduceLoad
	default:
		return StrategyMonitorAndWait
	}
}

// Executor runs a recovery strategy for a component and returns the ordered
// actions taken. Implementations may perform real remediation; a non-nil
// error marks the recovery attempt failed without crashing the monitor.
type Executor interface {
	Execute(ctx context.Context, strategy, component string) ([]string, error)
}

// PlanExecutor is the default Executor: it returns the fixed action plan for
// the strategy and always succeeds. Real deployments substitute an Executor
// that performs the actions.
type PlanExecutor struct{}

// Execute returns the ordered action list for the strategy.
func (PlanExecutor) Execute(ctx context.Context, strategy, component string) ([]string, error) {
	return ActionPlan(strategy, component), nil
}

// ActionPlan returns the fixed ordered action list for a strategy.
func ActionPlan(strategy, component string) []string {
	switch strategy {
	case StrategyRestart:
		return []string{
			fmt.Sprintf("Gracefully shutdown %s", component),
			"Clear component state",
			fmt.Sprintf("Restart %s", component),
			"Verify health after restart",
		}
	case StrategyReduceLoad:
		return []string{
			fmt.Sprintf("Enable rate limiting for %s", component),
			"Redirect traffic to healthy instances",
			"Monitor recovery progress",
		}
	case StrategyMonitorAndWait:
		return []string{
			fmt.Sprintf("Increase monitoring frequency for %s", component),
			"Set up alerts for further degradation",
			"Continue normal operation",
		}
	default:
		return []string{"Log issue and notify operators"}
	}
}
