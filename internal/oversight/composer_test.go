package oversight

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/opsgate/opsgate/internal/audit"
	"github.com/opsgate/opsgate/internal/impact"
	"github.com/opsgate/opsgate/internal/model"
	"github.com/opsgate/opsgate/internal/policy"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestComposer(t *testing.T, ledger *audit.Ledger, principles ...string) *Composer {
	t.Helper()
	evaluator, err := policy.NewEvaluator(principles, discard())
	if err != nil {
		t.Fatalf("failed to create evaluator: %v", err)
	}
	return NewComposer(evaluator, impact.NewAssessor(), ledger, discard())
}

func compliantContext() model.Context {
	return model.Context{
		"purpose":                "user_request",
		"description":            "requested by the account owner",
		"contains_personal_data": true,
		"user_consent":           true,
		"responsible_party":      "support",
		"harm_assessment":        "minimal",
	}
}

func TestCompliantOperationIsApproved(t *testing.T) {
	c := newTestComposer(t, nil)

	d, err := c.Decide(context.Background(), "update_profile", nil, compliantContext())
	if err != nil {
		t.Fatalf("decide: %v", err)
	}

	if !d.Approved {
		t.Fatalf("expected approval, guidance: %v", d.Guidance)
	}
	if d.ID == "" {
		t.Fatal("decision must carry an ID")
	}
	if d.Impact.RiskLevel != model.RiskLow {
		t.Fatalf("expected low risk, got %s", d.Impact.RiskLevel)
	}
	if d.CreatedAt.IsZero() {
		t.Fatal("decision must carry a timestamp")
	}
}

func TestPrivacyViolationIsDenied(t *testing.T) {
	c := newTestComposer(t, nil)

	octx := compliantContext()
	delete(octx, "user_consent")

	d, err := c.Decide(context.Background(), "share_records", nil, octx)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}

	if d.Approved {
		t.Fatal("expected denial for personal data without consent")
	}
	joined := strings.Join(d.Guidance, "; ")
	if !strings.Contains(joined, "Personal data requires consent or anonymization") {
		t.Fatalf("guidance missing privacy recommendation: %v", d.Guidance)
	}
	if !strings.Contains(joined, "obtain_user_consent") {
		t.Fatalf("guidance missing mitigation: %v", d.Guidance)
	}
}

func TestHighRiskOverridesCompliantEvaluation(t *testing.T) {
	// Only transparency is active, so a high-harm operation still passes
	// evaluation. The assessed risk must deny it anyway.
	c := newTestComposer(t, nil, "transparency")

	d, err := c.Decide(context.Background(), "purge_backups", nil, model.Context{
		"purpose":         "cost_reduction",
		"harm_assessment": "high",
	})
	if err != nil {
		t.Fatalf("decide: %v", err)
	}

	if d.Evaluation.Approved != true {
		t.Fatal("evaluation itself should be compliant in this setup")
	}
	if d.Approved {
		t.Fatal("high risk must deny a compliant evaluation")
	}
	if d.Guidance[len(d.Guidance)-1] != "High risk operation - consider alternatives or additional safeguards" {
		t.Fatalf("expected high risk guidance last, got %v", d.Guidance)
	}
}

func TestMediumRiskApprovedWithGuidance(t *testing.T) {
	c := newTestComposer(t, nil, "transparency")

	d, err := c.Decide(context.Background(), "migrate_data", nil, model.Context{
		"purpose":         "platform_upgrade",
		"harm_assessment": "moderate",
	})
	if err != nil {
		t.Fatalf("decide: %v", err)
	}

	if !d.Approved {
		t.Fatal("medium risk with compliant evaluation must be approved")
	}
	if d.Guidance[len(d.Guidance)-1] != "Moderate risk - implement recommended mitigations" {
		t.Fatalf("expected moderate risk guidance last, got %v", d.Guidance)
	}
}

func TestApprovedMatchesEvaluationAndRisk(t *testing.T) {
	c := newTestComposer(t, nil)

	contexts := []model.Context{
		compliantContext(),
		{},
		{"purpose": "x", "harm_assessment": "high"},
		{"contains_personal_data": true, "purpose": "x", "harm_assessment": "none", "user_consent": true},
	}

	for i, octx := range contexts {
		d, err := c.Decide(context.Background(), "op", nil, octx)
		if err != nil {
			t.Fatalf("decide %d: %v", i, err)
		}
		want := d.Evaluation.Approved && d.Impact.RiskLevel != model.RiskHigh
		if d.Approved != want {
			t.Fatalf("context %d: Approved=%v, want %v", i, d.Approved, want)
		}
	}
}

func TestEveryDecisionIsLedgered(t *testing.T) {
	ledger := audit.NewLedger(nil, discard())
	c := newTestComposer(t, ledger)

	for i := 0; i < 3; i++ {
		if _, err := c.Decide(context.Background(), "op", nil, compliantContext()); err != nil {
			t.Fatalf("decide %d: %v", i, err)
		}
	}

	entries := ledger.Query(audit.QueryFilter{Kind: audit.KindDecision})
	if len(entries) != 3 {
		t.Fatalf("expected 3 decision entries, got %d", len(entries))
	}
	if len(c.History()) != 3 {
		t.Fatalf("expected 3 decisions in history, got %d", len(c.History()))
	}
}

func TestNilLedgerStillDecides(t *testing.T) {
	c := newTestComposer(t, nil)
	if _, err := c.Decide(context.Background(), "op", nil, compliantContext()); err != nil {
		t.Fatalf("decide without ledger: %v", err)
	}
}

func TestSummaryCountsAndRecentWindow(t *testing.T) {
	c := newTestComposer(t, nil)

	// 6 approved, 2 denied.
	for i := 0; i < 6; i++ {
		c.Decide(context.Background(), "ok_op", nil, compliantContext())
	}
	for i := 0; i < 2; i++ {
		c.Decide(context.Background(), "bad_op", nil, model.Context{})
	}

	s := c.Summary()
	if s.TotalDecisions != 8 {
		t.Fatalf("expected 8 decisions, got %d", s.TotalDecisions)
	}
	if s.ApprovalRate != 0.75 {
		t.Fatalf("expected approval rate 0.75, got %v", s.ApprovalRate)
	}
	if len(s.RecentDecisions) != 5 {
		t.Fatalf("expected 5 recent decisions, got %d", len(s.RecentDecisions))
	}
	last := s.RecentDecisions[len(s.RecentDecisions)-1]
	if last.Operation != "bad_op" {
		t.Fatalf("recent window must end with the latest decision, got %s", last.Operation)
	}
}

func TestCancelledContextReturnsError(t *testing.T) {
	c := newTestComposer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Decide(ctx, "op", nil, compliantContext()); err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if len(c.History()) != 0 {
		t.Fatal("cancelled decision must not be recorded")
	}
}
