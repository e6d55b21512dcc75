// Package oversight combines policy evaluation and impact assessment into a
// single approve/deny decision with guidance, mirrored into the audit ledger.
package oversight

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/opsgate/opsgate/internal/audit"
	"github.com/opsgate/opsgate/internal/impact"
	"github.com/opsgate/opsgate/internal/model"
	"github.com/opsgate/opsgate/internal/policy"
)

// Risk-banded guidance appended when the assessed risk is medium or high.
const (
	highRiskGuidance   = "High risk operation - consider alternatives or additional safeguards"
	mediumRiskGuidance = "Moderate risk - implement recommended mitigations"
)

// Composer produces oversight decisions. It always invokes the policy
// evaluator first, then the impact assessor: a high risk level overrides an
// otherwise-compliant policy verdict to deny.
type Composer struct {
	evaluator *policy.Evaluator
	assessor  *impact.Assessor
	ledger    *audit.Ledger // may be nil when auditing is disabled
	logger    *slog.Logger
	now       func() time.Time

	mu        sync.Mutex
	decisions []model.Decision
}

// NewComposer wires an evaluator and assessor together. ledger may be nil;
// when attached, every decision is written as one decision-kind entry
// atomically with the decision being recorded.
func NewComposer(evaluator *policy.Evaluator, assessor *impact.Assessor, ledger *audit.Ledger, logger *slog.Logger) *Composer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{
		evaluator: evaluator,
		assessor:  assessor,
		ledger:    ledger,
		logger:    logger,
		now:       time.Now,
	}
}

// Decide evaluates the operation and composes the oversight decision.
// Approved is true iff every verdict is compliant and the assessed risk is
// not high. The decision history append and the ledger write happen under
// one lock, so a recorded decision is never observable without its ledger
// entry.
func (c *Composer) Decide(ctx context.Context, operation string, data any, octx model.Context) (model.Decision, error) {
	c.mu.Lock()
	evaluator := c.evaluator
	c.mu.Unlock()

	eval, err := evaluator.Evaluate(ctx, operation, data, octx)
	if err != nil {
		return model.Decision{}, err
	}

	assessment, err := c.assessor.Assess(ctx, operation, data, octx)
	if err != nil {
		return model.Decision{}, err
	}

	decision := model.Decision{
		ID:         uuid.NewString(),
		Operation:  operation,
		Approved:   eval.Approved && assessment.RiskLevel != model.RiskHigh,
		Evaluation: eval,
		Impact:     assessment,
		Guidance:   composeGuidance(eval, assessment),
		CreatedAt:  c.now().UTC(),
	}

	c.mu.Lock()
	c.decisions = append(c.decisions, decision)
	if c.ledger != nil {
		if _, err := c.ledger.AppendDecision(decision); err != nil {
			c.mu.Unlock()
			return model.Decision{}, err
		}
	}
	c.mu.Unlock()

	c.logger.Info("oversight decision",
		"operation", operation,
		"approved", decision.Approved,
		"risk_level", assessment.RiskLevel,
		"decision_id", decision.ID)

	return decision, nil
}

// composeGuidance concatenates verdict recommendations (evaluation order),
// mitigation strategies (harm order), and a risk-banded note.
func composeGuidance(eval model.Evaluation, assessment model.Assessment) []string {
	var guidance []string
	guidance = append(guidance, eval.Recommendations...)
	guidance = append(guidance, assessment.MitigationStrategies...)

	switch assessment.RiskLevel {
	case model.RiskHigh:
		guidance = append(guidance, highRiskGuidance)
	case model.RiskMedium:
		guidance = append(guidance, mediumRiskGuidance)
	}

	return guidance
}

// SetEvaluator swaps the policy evaluator. Used by configuration hot-reload;
// in-flight decisions keep the evaluator they started with.
func (c *Composer) SetEvaluator(e *policy.Evaluator) {
	c.mu.Lock()
	c.evaluator = e
	c.mu.Unlock()
}

// History returns a copy of all decisions made so far, oldest first.
func (c *Composer) History() []model.Decision {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Decision, len(c.decisions))
	copy(out, c.decisions)
	return out
}

// Summary reports oversight totals for the compliance report.
type Summary struct {
	TotalDecisions  int              `json:"total_decisions"`
	ApprovalRate    float64          `json:"approval_rate"`
	RecentDecisions []model.Decision `json:"recent_decisions,omitempty"`
}

// Summary returns decision totals, approval rate, and the five most recent
// decisions.
func (c *Composer) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Summary{TotalDecisions: len(c.decisions)}
	if len(c.decisions) == 0 {
		return s
	}

	approved := 0
	for _, d := range c.decisions {
		if d.Approved {
			approved++
		}
	}
	s.ApprovalRate = float64(approved) / float64(len(c.decisions))

	recent := c.decisions
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	s.RecentDecisions = make([]model.Decision, len(recent))
	copy(s.RecentDecisions, recent)

	return s
}
