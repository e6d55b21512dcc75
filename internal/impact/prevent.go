package impact

import (
	"time"

	"github.com/opsgate/opsgate/internal/model"
)

// HarmPrevention is the outcome of a proactive harm scan: the scenarios the
// declared context triggers and the actions that would clear them.
type HarmPrevention struct {
	Operation         string    `json:"operation"`
	ShouldProceed     bool      `json:"should_proceed"`
	PotentialHarms    []string  `json:"potential_harms"`
	PreventiveActions []string  `json:"preventive_actions"`
	CreatedAt         time.Time `json:"created_at"`
}

// PreventHarm scans the context for harm scenarios ahead of any evaluation:
// personal data without consent, automated decisions without human review,
// and high-stakes operations without safeguards. ShouldProceed is true only
// when no scenario triggers.
func (a *Assessor) PreventHarm(operation string, octx model.Context) HarmPrevention {
	p := HarmPrevention{
		Operation: operation,
		CreatedAt: a.now().UTC(),
	}

	if octx.Bool("contains_personal_data", false) && !octx.Bool("user_consent", false) {
		p.PotentialHarms = append(p.PotentialHarms, "unauthorized_data_use")
		p.PreventiveActions = append(p.PreventiveActions, "obtain_consent_before_processing")
	}
	if octx.Bool("automated_decision", false) && !octx.Bool("human_review", false) {
		p.PotentialHarms = append(p.PotentialHarms, "unreviewed_automated_decision")
		p.PreventiveActions = append(p.PreventiveActions, "implement_human_oversight")
	}
	if octx.Bool("high_stakes", false) && !octx.Bool("safeguards", false) {
		p.PotentialHarms = append(p.PotentialHarms, "high_stakes_without_safeguards")
		p.PreventiveActions = append(p.PreventiveActions, "add_safety_mechanisms")
	}

	p.ShouldProceed = len(p.PotentialHarms) == 0
	return p
}
