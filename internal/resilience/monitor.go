// Package resilience converts raw component metrics into health scores and
// statuses, keeps a bounded rolling window of checks, and drives recovery
// for failing components.
package resilience

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/opsgate/opsgate/internal/model"
)

const (
	// windowSize bounds the rolling health-check window: most-recent-N
	// retained, oldest evicted.
	windowSize = 100
	// overallWindow is how many recent checks feed the overall status.
	overallWindow = 10
	// reportWindow is how many recent checks feed the resilience report
	// average.
	reportWindow = 20
)

// Observer is notified after each recorded check. Used to feed metrics
// exporters; must not block.
type Observer func(model.HealthCheck)

// Monitor scores component health, tracks a rolling window of checks, and
// invokes recovery automatically on degraded or critical checks. It owns its
// window exclusively; all access goes through its lock.
type Monitor struct {
	selector *Selector
	executor Executor
	logger   *slog.Logger
	observer Observer
	now      func() time.Time

	mu               sync.Mutex
	window           []model.HealthCheck
	overall          model.HealthStatus
	recoveryFailures int
}

// NewMonitor creates a Monitor. selector and executor may be nil, in which
// case the default mapping and the plan executor are used.
func NewMonitor(selector *Selector, executor Executor, logger *slog.Logger) *Monitor {
	if selector == nil {
		selector = NewSelector(nil)
	}
	if executor == nil {
		executor = PlanExecutor{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		selector: selector,
		executor: executor,
		logger:   logger,
		overall:  model.StatusUnknown,
		now:      time.Now,
	}
}

// SetObserver registers a post-check observer. Call before recording.
func (m *Monitor) SetObserver(obs Observer) {
	m.observer = obs
}

// Score converts raw metrics into a [0,1] health score.
// Starting at 1.0: subtract min(error_rate, 0.5); subtract 0.3 when
// response_time exceeds 1000, else 0.1 when it exceeds 500; multiply by
// availability and success_rate when present; clamp to [0,1].
// An empty metric set scores 0.5: no evidence either way.
func Score(metrics map[string]float64) float64 {
	if len(metrics) == 0 {
		return 0.5
	}

	score := 1.0

	if errRate, ok := metrics["error_rate"]; ok {
		score -= min(errRate, 0.5)
	}

	if rt, ok := metrics["response_time"]; ok {
		if rt > 1000 {
			score -= 0.3
		} else if rt > 500 {
			score -= 0.1
		}
	}

	if avail, ok := metrics["availability"]; ok {
		score *= avail
	}

	if sr, ok := metrics["success_rate"]; ok {
		score *= sr
	}

	return max(0.0, min(score, 1.0))
}

// StatusFor maps a health score to its status band.
func StatusFor(score float64) model.HealthStatus {
	switch {
	case score < 0.5:
		return model.StatusCritical
	case score < 0.7:
		return model.StatusDegraded
	case score < 0.9:
		return model.StatusWarning
	default:
		return model.StatusHealthy
	}
}

// Record scores a component's metrics, appends the check to the rolling
// window, recomputes the overall status, and triggers recovery when the
// check is degraded or critical. ctx is checked before scoring and passed
// to the recovery executor.
func (m *Monitor) Record(ctx context.Context, component string, metrics map[string]float64) (model.HealthCheck, error) {
	if err := ctx.Err(); err != nil {
		return model.HealthCheck{}, err
	}

	score := Score(metrics)
	check := model.HealthCheck{
		Component: component,
		Metrics:   metrics,
		Score:     score,
		Status:    StatusFor(score),
		CreatedAt: m.now().UTC(),
	}

	if check.Status == model.StatusDegraded || check.Status == model.StatusCritical {
		check.Recovery = m.recover(ctx, component, check.Status)
		if !check.Recovery.Succeeded {
			check.Status = model.StatusRecoveryFailed
		}
	}

	m.mu.Lock()
	m.window = append(m.window, check)
	if len(m.window) > windowSize {
		m.window = m.window[len(m.window)-windowSize:]
	}
	if check.Recovery != nil && !check.Recovery.Succeeded {
		m.recoveryFailures++
	}
	m.overall = m.overallLocked()
	m.mu.Unlock()

	if m.observer != nil {
		m.observer(check)
	}

	return check, nil
}

// recover selects and executes the recovery strategy for a failing check.
// Executor failure is recorded on the action, never returned: a failed
// recovery must not crash the monitoring cycle.
func (m *Monitor) recover(ctx context.Context, component string, status model.HealthStatus) *model.RecoveryAction {
	strategy := m.selector.Select(component, status)

	m.logger.Warn("initiating recovery",
		"component", component, "status", status, "strategy", strategy)

	action := &model.RecoveryAction{
		Component: component,
		Strategy:  strategy,
		CreatedAt: m.now().UTC(),
	}

	actions, err := m.executor.Execute(ctx, strategy, component)
	if err != nil {
		action.Error = err.Error()
		m.logger.Error("recovery failed",
			"component", component, "strategy", strategy, "error", err)
		return action
	}

	action.Actions = actions
	action.Succeeded = true
	return action
}

// overallLocked recomputes the overall status from the mean score of the
// most recent checks across all components. Caller holds m.mu.
func (m *Monitor) overallLocked() model.HealthStatus {
	if len(m.window) == 0 {
		return model.StatusUnknown
	}

	recent := m.window
	if len(recent) > overallWindow {
		recent = recent[len(recent)-overallWindow:]
	}

	sum := 0.0
	for _, c := range recent {
		sum += c.Score
	}
	return StatusFor(sum / float64(len(recent)))
}

// Overall returns the current overall system status.
func (m *Monitor) Overall() model.HealthStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.overall
}

// Report aggregates the rolling window for operational reporting.
type Report struct {
	OverallHealth     model.HealthStatus  `json:"overall_health"`
	AvgHealthScore    float64             `json:"avg_health_score"`
	TotalChecks       int                 `json:"total_checks"`
	CriticalIncidents int                 `json:"critical_incidents"`
	DegradedIncidents int                 `json:"degraded_incidents"`
	RecoveryFailures  int                 `json:"recovery_failures"`
	RecentChecks      []model.HealthCheck `json:"recent_health_checks,omitempty"`
}

// Report summarizes recent health: average score and incident counts over
// the last checks, plus the five most recent checks verbatim.
func (m *Monitor) Report() Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	r := Report{
		OverallHealth:    m.overall,
		TotalChecks:      len(m.window),
		RecoveryFailures: m.recoveryFailures,
	}
	if len(m.window) == 0 {
		return r
	}

	recent := m.window
	if len(recent) > reportWindow {
		recent = recent[len(recent)-reportWindow:]
	}

	sum := 0.0
	for _, c := range recent {
		sum += c.Score
		switch c.Status {
		case model.StatusCritical:
			r.CriticalIncidents++
		case model.StatusDegraded:
			r.DegradedIncidents++
		}
	}
	r.AvgHealthScore = sum / float64(len(recent))

	tail := recent
	if len(tail) > 5 {
		tail = tail[len(tail)-5:]
	}
	r.RecentChecks = make([]model.HealthCheck, len(tail))
	copy(r.RecentChecks, tail)

	return r
}
