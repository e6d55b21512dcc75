package impact

import (
	"context"
	"testing"

	"github.com/opsgate/opsgate/internal/model"
)

func TestRiskDerivationFromHarm(t *testing.T) {
	cases := []struct {
		harm string
		want model.RiskLevel
	}{
		{"none", model.RiskLow},
		{"minimal", model.RiskLow},
		{"moderate", model.RiskMedium},
		{"high", model.RiskHigh},
		{"catastrophic", model.RiskMedium},
	}

	a := NewAssessor()
	for _, c := range cases {
		as, err := a.Assess(context.Background(), "op", nil, model.Context{"harm_assessment": c.harm})
		if err != nil {
			t.Fatalf("assess: %v", err)
		}
		if as.RiskLevel != c.want {
			t.Fatalf("harm %q: expected risk %s, got %s", c.harm, c.want, as.RiskLevel)
		}
	}
}

func TestAbsentHarmAssessmentDefaultsToMediumRisk(t *testing.T) {
	a := NewAssessor()
	as, _ := a.Assess(context.Background(), "op", nil, model.Context{})
	if as.RiskLevel != model.RiskMedium {
		t.Fatalf("expected medium risk for unassessed harm, got %s", as.RiskLevel)
	}
}

func TestAffectedPartiesFromContext(t *testing.T) {
	a := NewAssessor()
	as, _ := a.Assess(context.Background(), "op", nil, model.Context{
		"contains_personal_data": true,
		"public_facing":          true,
	})

	if len(as.AffectedParties) != 2 || as.AffectedParties[0] != "data_subjects" || as.AffectedParties[1] != "public" {
		t.Fatalf("expected [data_subjects public], got %v", as.AffectedParties)
	}
}

func TestPersonalDataWithoutConsentIsPrivacyHarm(t *testing.T) {
	a := NewAssessor()
	as, _ := a.Assess(context.Background(), "op", nil, model.Context{
		"contains_personal_data": true,
	})

	if len(as.PotentialHarms) != 1 || as.PotentialHarms[0] != "privacy_violation" {
		t.Fatalf("expected [privacy_violation], got %v", as.PotentialHarms)
	}
	if len(as.MitigationStrategies) != 1 || as.MitigationStrategies[0] != "obtain_user_consent" {
		t.Fatalf("expected [obtain_user_consent], got %v", as.MitigationStrategies)
	}
}

func TestAbsentBiasAssessmentIsNotAHarm(t *testing.T) {
	a := NewAssessor()
	as, _ := a.Assess(context.Background(), "op", nil, model.Context{})
	for _, h := range as.PotentialHarms {
		if h == "discriminatory_outcomes" {
			t.Fatal("absent bias_assessment must not produce discriminatory_outcomes")
		}
	}
}

func TestExplicitFalseBiasAssessmentIsAHarm(t *testing.T) {
	a := NewAssessor()
	as, _ := a.Assess(context.Background(), "op", nil, model.Context{
		"bias_assessment": false,
	})

	found := false
	for _, h := range as.PotentialHarms {
		if h == "discriminatory_outcomes" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected discriminatory_outcomes harm, got %v", as.PotentialHarms)
	}
	if len(as.MitigationStrategies) == 0 || as.MitigationStrategies[len(as.MitigationStrategies)-1] != "conduct_bias_audit" {
		t.Fatalf("expected conduct_bias_audit mitigation, got %v", as.MitigationStrategies)
	}
}

func TestPurposeBecomesBenefit(t *testing.T) {
	a := NewAssessor()
	as, _ := a.Assess(context.Background(), "op", nil, model.Context{
		"purpose": "fraud_detection",
	})

	if len(as.PotentialBenefits) != 1 || as.PotentialBenefits[0] != "achieve_fraud_detection" {
		t.Fatalf("expected [achieve_fraud_detection], got %v", as.PotentialBenefits)
	}
}

func TestHistoryAccumulatesInOrder(t *testing.T) {
	a := NewAssessor()
	for _, op := range []string{"first", "second", "third"} {
		if _, err := a.Assess(context.Background(), op, nil, model.Context{}); err != nil {
			t.Fatalf("assess %s: %v", op, err)
		}
	}

	h := a.History()
	if len(h) != 3 {
		t.Fatalf("expected 3 assessments, got %d", len(h))
	}
	if h[0].Operation != "first" || h[2].Operation != "third" {
		t.Fatalf("history out of order: %v", []string{h[0].Operation, h[1].Operation, h[2].Operation})
	}
}

func TestCancelledContextStopsAssessment(t *testing.T) {
	a := NewAssessor()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := a.Assess(ctx, "op", nil, model.Context{}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if len(a.History()) != 0 {
		t.Fatal("cancelled assessment must not be recorded")
	}
}
