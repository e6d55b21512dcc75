// Package impact derives risk levels, affected parties, potential harms and
// benefits, and mitigation strategies from a declared operation context.
package impact

import (
	"context"
	"sync"
	"time"

	"github.com/opsgate/opsgate/internal/model"
)

// mitigations is the fixed harm → mitigation mapping.
var mitigations = map[string]string{
	"privacy_violation":       "obtain_user_consent",
	"discriminatory_outcomes": "conduct_bias_audit",
}

// Assessor derives impact assessments and keeps an append-only history of
// every assessment it produced, for later reporting.
type Assessor struct {
	mu      sync.Mutex
	history []model.Assessment
	now     func() time.Time
}

// NewAssessor creates an Assessor with an empty history.
func NewAssessor() *Assessor {
	return &Assessor{now: time.Now}
}

// Assess derives the impact of an operation from its context and appends the
// result to the assessment history.
//
// Risk derivation from harm_assessment: none/minimal → low, moderate →
// medium, high → high, anything else (including absent) → medium. Unassessed
// harm defaults to medium, not low.
func (a *Assessor) Assess(ctx context.Context, operation string, data any, octx model.Context) (model.Assessment, error) {
	if err := ctx.Err(); err != nil {
		return model.Assessment{}, err
	}

	as := model.Assessment{
		Operation: operation,
		RiskLevel: riskFromHarm(octx.Harm()),
		CreatedAt: a.now().UTC(),
	}

	if octx.Bool("contains_personal_data", false) {
		as.AffectedParties = append(as.AffectedParties, "data_subjects")
	}
	if octx.Bool("public_facing", false) {
		as.AffectedParties = append(as.AffectedParties, "public")
	}

	if octx.Bool("contains_personal_data", false) && !octx.Bool("user_consent", false) {
		as.PotentialHarms = append(as.PotentialHarms, "privacy_violation")
	}
	// Explicit false only: an absent bias assessment is not a harm signal.
	if v, ok := octx["bias_assessment"]; ok {
		if b, ok := v.(bool); ok && !b {
			as.PotentialHarms = append(as.PotentialHarms, "discriminatory_outcomes")
		}
	}

	if purpose := octx.String("purpose", ""); purpose != "" {
		as.PotentialBenefits = append(as.PotentialBenefits, "achieve_"+purpose)
	}

	for _, harm := range as.PotentialHarms {
		if m, ok := mitigations[harm]; ok {
			as.MitigationStrategies = append(as.MitigationStrategies, m)
		}
	}

	a.mu.Lock()
	a.history = append(a.history, as)
	a.mu.Unlock()

	return as, nil
}

// History returns a copy of all assessments produced so far, oldest first.
func (a *Assessor) History() []model.Assessment {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]model.Assessment, len(a.history))
	copy(out, a.history)
	return out
}

func riskFromHarm(h model.HarmLevel) model.RiskLevel {
	switch h {
	case model.HarmNone, model.HarmMinimal:
		return model.RiskLow
	case model.HarmModerate:
		return model.RiskMedium
	case model.HarmHigh:
		return model.RiskHigh
	default:
		return model.RiskMedium
	}
}
