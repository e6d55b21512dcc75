package perf

import (
	"testing"

	"github.com/opsgate/opsgate/internal/model"
)

func record(t *testing.T, tr *Tracker, op string, outcomes ...bool) Analysis {
	t.Helper()
	var last Analysis
	for _, ok := range outcomes {
		last = tr.Record(op, map[string]float64{"duration_ms": 12}, ok)
	}
	return last
}

func TestSingleSampleIsInsufficient(t *testing.T) {
	tr := NewTracker()

	a := record(t, tr, "deploy", true)
	if a.Trend != model.TrendInsufficientData {
		t.Fatalf("expected insufficient_data, got %s", a.Trend)
	}
	if a.Recommendation != "Collect more data before making changes" {
		t.Fatalf("unexpected recommendation: %q", a.Recommendation)
	}
	if a.SampleSize != 1 {
		t.Fatalf("expected sample size 1, got %d", a.SampleSize)
	}
}

func TestAllSuccessesTrendPositive(t *testing.T) {
	tr := NewTracker()

	a := record(t, tr, "deploy", true, true, true, true, true)
	if a.Trend != model.TrendPositive {
		t.Fatalf("expected positive, got %s", a.Trend)
	}
	if a.SuccessRate != 1.0 {
		t.Fatalf("expected rate 1.0, got %v", a.SuccessRate)
	}
	if a.Recommendation != "Continue current approach, monitor for consistency" {
		t.Fatalf("unexpected recommendation: %q", a.Recommendation)
	}
}

func TestMostlyFailuresTrendNegative(t *testing.T) {
	tr := NewTracker()

	a := record(t, tr, "deploy", false, false, false, true, false)
	if a.Trend != model.TrendNegative {
		t.Fatalf("expected negative, got %s", a.Trend)
	}
	if a.Recommendation != "Consider strategy adaptation or intervention" {
		t.Fatalf("unexpected recommendation: %q", a.Recommendation)
	}
}

func TestMixedOutcomesTrendStable(t *testing.T) {
	tr := NewTracker()

	// 3 of 5 recent succeed: 0.6 sits between the trend thresholds.
	a := record(t, tr, "deploy", true, true, true, false, false)
	if a.Trend != model.TrendStable {
		t.Fatalf("expected stable, got %s", a.Trend)
	}
	if a.SuccessRate != 0.6 {
		t.Fatalf("expected rate 0.6, got %v", a.SuccessRate)
	}
	if a.Recommendation != "Performance is adequate, minor optimizations may help" {
		t.Fatalf("unexpected recommendation: %q", a.Recommendation)
	}
}

func TestTrendUsesOnlyRecentWindow(t *testing.T) {
	tr := NewTracker()

	// A long failing history followed by five straight successes must read
	// positive: older records fall out of the trend window.
	record(t, tr, "deploy", false, false, false, false, false, false, false, false)
	a := record(t, tr, "deploy", true, true, true, true, true)
	if a.Trend != model.TrendPositive {
		t.Fatalf("expected positive over recent window, got %s", a.Trend)
	}
	if a.SampleSize != 5 {
		t.Fatalf("expected window of 5, got %d", a.SampleSize)
	}
}

func TestTrendWithoutRecording(t *testing.T) {
	tr := NewTracker()
	record(t, tr, "deploy", true, true, true)

	trend, rate := tr.Trend("deploy")
	if trend != model.TrendPositive || rate != 1.0 {
		t.Fatalf("unexpected trend %s rate %v", trend, rate)
	}

	trend, _ = tr.Trend("unknown_op")
	if trend != model.TrendInsufficientData {
		t.Fatalf("untracked operation must be insufficient_data, got %s", trend)
	}
}

func TestOperationsAreTrackedSeparately(t *testing.T) {
	tr := NewTracker()
	record(t, tr, "deploy", true, true, true)
	record(t, tr, "purge", false, false, false)

	if trend, _ := tr.Trend("deploy"); trend != model.TrendPositive {
		t.Fatalf("deploy trend contaminated: %s", trend)
	}
	if trend, _ := tr.Trend("purge"); trend != model.TrendNegative {
		t.Fatalf("purge trend contaminated: %s", trend)
	}
}

func TestSummaryAcrossOperations(t *testing.T) {
	tr := NewTracker()
	record(t, tr, "deploy", true, true, true)
	record(t, tr, "purge", false)

	s := tr.Summary()
	if s.TotalOperations != 4 {
		t.Fatalf("expected 4 records, got %d", s.TotalOperations)
	}
	if s.TrackedOps != 2 {
		t.Fatalf("expected 2 tracked operations, got %d", s.TrackedOps)
	}
	if s.SuccessRate != 0.75 {
		t.Fatalf("expected rate 0.75, got %v", s.SuccessRate)
	}
}

func TestEmptySummary(t *testing.T) {
	s := NewTracker().Summary()
	if s.TotalOperations != 0 || s.TrackedOps != 0 || s.SuccessRate != 0 {
		t.Fatalf("unexpected empty summary: %+v", s)
	}
}

func TestHistoryIsBounded(t *testing.T) {
	tr := NewTracker()
	for i := 0; i < 1100; i++ {
		tr.Record("deploy", nil, true)
	}

	if got := tr.Summary().TotalOperations; got != 1000 {
		t.Fatalf("expected history capped at 1000, got %d", got)
	}
}

func TestUnknownTrendRecommendation(t *testing.T) {
	if got := Recommendation(model.Trend("bogus")); got != "Insufficient information for recommendation" {
		t.Fatalf("unexpected fallback: %q", got)
	}
}
