package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/opsgate/opsgate/internal/model"
)

func newTestSink(t *testing.T) (*Sink, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	s, err := OpenSink(path)
	if err != nil {
		t.Fatalf("open sink: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func writeEntries(t *testing.T, s *Sink, n int) {
	t.Helper()
	l := NewLedger(s, discard())
	for i := 0; i < n; i++ {
		if _, err := l.AppendEvent("", EventPayload{EventType: "tick"}); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
}

func TestSequentialWritesProduceValidChain(t *testing.T) {
	s, path := newTestSink(t)
	writeEntries(t, s, 5)

	res := VerifyFile(path)
	if !res.Valid {
		t.Fatalf("chain invalid: %s (line %d)", res.Error, res.ErrorLine)
	}
	if !res.Chronological {
		t.Fatal("entries must be chronological")
	}
	if res.Lines != 5 {
		t.Fatalf("expected 5 lines, got %d", res.Lines)
	}
}

func TestReopenRecoversChainTail(t *testing.T) {
	s, path := newTestSink(t)
	writeEntries(t, s, 3)
	s.Close()

	s2, err := OpenSink(path)
	if err != nil {
		t.Fatalf("reopen sink: %v", err)
	}
	defer s2.Close()
	writeEntries(t, s2, 2)

	res := VerifyFile(path)
	if !res.Valid {
		t.Fatalf("chain broke across reopen: %s (line %d)", res.Error, res.ErrorLine)
	}
	if res.Lines != 5 {
		t.Fatalf("expected 5 lines, got %d", res.Lines)
	}
}

func TestVerifyDetectsTamperedEntry(t *testing.T) {
	s, path := newTestSink(t)
	l := NewLedger(s, discard())
	l.AppendOperation("t1", OperationPayload{Operation: "deploy", Result: "executed"})
	l.AppendOperation("t2", OperationPayload{Operation: "rollback", Result: "executed"})
	l.AppendOperation("t3", OperationPayload{Operation: "deploy", Result: "executed"})
	s.Close()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sink: %v", err)
	}
	tampered := strings.Replace(string(raw), `"rollback"`, `"restart"`, 1)
	if tampered == string(raw) {
		t.Fatal("tampering had no effect")
	}
	if err := os.WriteFile(path, []byte(tampered), 0o600); err != nil {
		t.Fatalf("write tampered sink: %v", err)
	}

	res := VerifyFile(path)
	if res.Valid {
		t.Fatal("tampered file must not verify")
	}
	// The edited line still parses; the next line's prev_hash exposes it.
	if res.ErrorLine != 3 {
		t.Fatalf("expected failure at line 3, got %d (%s)", res.ErrorLine, res.Error)
	}
}

func TestVerifyRejectsMissingGenesis(t *testing.T) {
	s, path := newTestSink(t)
	writeEntries(t, s, 3)
	s.Close()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sink: %v", err)
	}
	lines := strings.SplitAfter(string(raw), "\n")
	// Drop the first entry: line 1 now carries a non-genesis prev_hash.
	truncated := strings.Join(lines[1:], "")
	if err := os.WriteFile(path, []byte(truncated), 0o600); err != nil {
		t.Fatalf("write truncated sink: %v", err)
	}

	res := VerifyFile(path)
	if res.Valid {
		t.Fatal("file without genesis entry must not verify")
	}
	if res.ErrorLine != 1 {
		t.Fatalf("expected failure at line 1, got %d (%s)", res.ErrorLine, res.Error)
	}
}

func TestVerifyFailsOnUnparseableLine(t *testing.T) {
	s, path := newTestSink(t)
	writeEntries(t, s, 2)
	s.Close()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		t.Fatalf("open sink: %v", err)
	}
	f.WriteString("not json\n")
	f.Close()

	res := VerifyFile(path)
	if res.Valid {
		t.Fatal("corrupt file must not verify")
	}
	if res.ErrorLine != 3 {
		t.Fatalf("expected failure at line 3, got %d", res.ErrorLine)
	}
}

func TestVerifyReportsNonChronologicalChain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	s, err := OpenSink(path)
	if err != nil {
		t.Fatalf("open sink: %v", err)
	}
	defer s.Close()

	// Persist directly with out-of-order timestamps: the chain is intact
	// but the ordering invariant is broken.
	s.Persist(Entry{Kind: KindEvent, Timestamp: "2026-03-01T12:00:00.000Z", Payload: []byte(`{}`)})
	s.Persist(Entry{Kind: KindEvent, Timestamp: "2026-03-01T11:00:00.000Z", Payload: []byte(`{}`)})

	res := VerifyFile(path)
	if !res.Valid {
		t.Fatalf("chain must still verify: %s", res.Error)
	}
	if res.Chronological {
		t.Fatal("out-of-order timestamps must be reported")
	}
}

func TestSinkFailureDoesNotLoseInMemoryEntry(t *testing.T) {
	s, _ := newTestSink(t)
	l := NewLedger(s, discard())
	l.AppendEvent("", EventPayload{EventType: "tick"})

	// Closing the file forces every subsequent persist to fail.
	s.Close()
	if _, err := l.AppendDecision(model.Decision{ID: "d1", Operation: "op", Approved: true}); err != nil {
		t.Fatalf("append must survive sink failure: %v", err)
	}

	if l.Len() != 2 {
		t.Fatalf("expected 2 in-memory entries, got %d", l.Len())
	}
	if l.SinkFailures() != 1 {
		t.Fatalf("expected 1 sink failure, got %d", l.SinkFailures())
	}
}
