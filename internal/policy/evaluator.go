package policy

import (
	"context"
	"log/slog"

	"github.com/opsgate/opsgate/internal/model"
)

// checkFunc evaluates one principle against an operation. Checks are pure
// functions of the context: same input, same verdict.
type checkFunc func(operation string, data any, octx model.Context) model.Verdict

// checks is the closed dispatch table from principle to its check.
// Principles without a rule (beneficence, autonomy, justice) are reported
// compliant for completeness.
var checks = map[Principle]checkFunc{
	Transparency:   checkTransparency,
	Fairness:       checkFairness,
	Privacy:        checkPrivacy,
	Accountability: checkAccountability,
	NonMaleficence: checkNonMaleficence,
}

// Evaluator evaluates operations against a fixed set of active principles.
// Safe for concurrent use: it holds no mutable state.
type Evaluator struct {
	active []Principle
	logger *slog.Logger
}

// NewEvaluator creates an Evaluator enforcing the named principles.
// Empty names selects the full fixed set. Unknown names fail with
// *ConfigError here, never at evaluation time.
func NewEvaluator(names []string, logger *slog.Logger) (*Evaluator, error) {
	active, err := ParsePrinciples(names)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("policy evaluator initialized", "principles", len(active))
	return &Evaluator{active: active, logger: logger}, nil
}

// Active returns the active principles in evaluation order.
func (e *Evaluator) Active() []Principle {
	out := make([]Principle, len(e.active))
	copy(out, e.active)
	return out
}

// Evaluate checks the operation against every active principle.
// All principles are always evaluated, never short-circuited, so the
// evaluation carries every verdict and every recommendation in evaluation
// order. Approved is true iff every verdict is compliant.
// ctx is checked before each principle check.
func (e *Evaluator) Evaluate(ctx context.Context, operation string, data any, octx model.Context) (model.Evaluation, error) {
	eval := model.Evaluation{
		PrinciplesChecked: make([]string, 0, len(e.active)),
	}

	approved := true
	for _, p := range e.active {
		if err := ctx.Err(); err != nil {
			return model.Evaluation{}, err
		}

		verdict := checkPrinciple(p, operation, data, octx)
		eval.Verdicts = append(eval.Verdicts, verdict)
		eval.Recommendations = append(eval.Recommendations, verdict.Recommendations...)
		eval.PrinciplesChecked = append(eval.PrinciplesChecked, string(p))
		if !verdict.Compliant {
			eval.Violations = append(eval.Violations, verdict)
			approved = false
		}
	}

	eval.Approved = approved
	return eval, nil
}

func checkPrinciple(p Principle, operation string, data any, octx model.Context) model.Verdict {
	if check, ok := checks[p]; ok {
		return check(operation, data, octx)
	}
	return model.Verdict{Principle: string(p), Compliant: true}
}

// checkTransparency requires a declared purpose. Missing documentation only
// adds a recommendation, it does not fail the check.
func checkTransparency(operation string, data any, octx model.Context) model.Verdict {
	hasPurpose := octx.Has("purpose")
	hasDocumentation := octx.Has("description") || octx.Has("documentation")

	var recs []string
	if !hasPurpose {
		recs = append(recs, "Add 'purpose' to context for transparency")
	}
	if !hasDocumentation {
		recs = append(recs, "Consider adding operation documentation")
	}

	return model.Verdict{
		Principle:       string(Transparency),
		Compliant:       hasPurpose,
		Recommendations: recs,
	}
}

// checkFairness trusts the caller-declared bias assessment. An absent
// assessment is treated as compliant; only an explicit false fails.
func checkFairness(operation string, data any, octx model.Context) model.Verdict {
	biasOK := octx.Bool("bias_assessment", true)

	var recs []string
	if !biasOK {
		recs = append(recs, "Perform bias assessment")
	}

	return model.Verdict{
		Principle:       string(Fairness),
		Compliant:       biasOK,
		Recommendations: recs,
	}
}

// checkPrivacy requires consent or anonymization whenever personal data is
// processed. Operations without personal data are always compliant.
func checkPrivacy(operation string, data any, octx model.Context) model.Verdict {
	personal := octx.Bool("contains_personal_data", false)
	consent := octx.Bool("user_consent", false)
	anonymized := octx.Bool("anonymized", false)

	compliant := true
	var recs []string
	if personal && !(consent || anonymized) {
		compliant = false
		recs = append(recs, "Personal data requires consent or anonymization")
	}

	return model.Verdict{
		Principle:       string(Privacy),
		Compliant:       compliant,
		Recommendations: recs,
	}
}

// checkAccountability requires audit to be enabled (default true). A missing
// responsible party only adds a recommendation.
func checkAccountability(operation string, data any, octx model.Context) model.Verdict {
	auditEnabled := octx.Bool("audit_enabled", true)
	hasResponsible := octx.Has("responsible_party") || octx.Has("owner")

	var recs []string
	if !hasResponsible {
		recs = append(recs, "Assign responsible party for accountability")
	}

	return model.Verdict{
		Principle:       string(Accountability),
		Compliant:       auditEnabled,
		Recommendations: recs,
	}
}

// checkNonMaleficence requires harm to be assessed as none or minimal.
// Unknown is a hard failure: unassessed harm is not permitted to proceed.
// Unrecognized values fail without a recommendation; only a literal unknown
// asks for a harm assessment.
func checkNonMaleficence(operation string, data any, octx model.Context) model.Verdict {
	harm := octx.Harm()

	compliant := harm == model.HarmNone || harm == model.HarmMinimal
	var recs []string
	switch harm {
	case model.HarmModerate, model.HarmHigh:
		recs = append(recs, "High harm risk detected - review operation")
	case model.HarmUnknown:
		recs = append(recs, "Conduct harm assessment before proceeding")
	}

	return model.Verdict{
		Principle:       string(NonMaleficence),
		Compliant:       compliant,
		Recommendations: recs,
	}
}
