package audit

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newPopulatedSink(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	s, err := OpenSink(path)
	if err != nil {
		t.Fatalf("open sink: %v", err)
	}
	defer s.Close()

	l := NewLedger(s, discard())
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	l.now = func() time.Time { n++; return base.Add(time.Duration(n) * time.Minute) }

	l.AppendOperation("t1", OperationPayload{Operation: "deploy", Result: "executed"})
	l.AppendAccess("t2", AccessPayload{Resource: "db", Accessor: "svc", Action: "read", Granted: true})
	l.AppendOperation("t3", OperationPayload{Operation: "purge", Result: "blocked"})
	l.AppendEvent("t4", EventPayload{EventType: "startup"})
	return path
}

func TestReplayReturnsAllEntries(t *testing.T) {
	path := newPopulatedSink(t)

	res, err := Replay(path, ReplayFilter{})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if res.Summary.Total != 4 {
		t.Fatalf("expected 4 entries, got %d", res.Summary.Total)
	}
	if res.Summary.Operations != 2 || res.Summary.Accesses != 1 || res.Summary.Events != 1 {
		t.Fatalf("unexpected per-kind counts: %+v", res.Summary)
	}
	if res.Summary.FirstTimestamp != "2026-03-01T12:01:00.000Z" {
		t.Fatalf("unexpected first timestamp: %s", res.Summary.FirstTimestamp)
	}
	if res.Summary.LastTimestamp != "2026-03-01T12:04:00.000Z" {
		t.Fatalf("unexpected last timestamp: %s", res.Summary.LastTimestamp)
	}
}

func TestReplayFiltersByKind(t *testing.T) {
	path := newPopulatedSink(t)

	res, err := Replay(path, ReplayFilter{Kind: KindOperation})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if len(res.Entries) != 2 {
		t.Fatalf("expected 2 operation entries, got %d", len(res.Entries))
	}
	for _, e := range res.Entries {
		if e.Kind != KindOperation {
			t.Fatalf("unexpected kind %s", e.Kind)
		}
	}
}

func TestReplayFiltersByTimeRange(t *testing.T) {
	path := newPopulatedSink(t)

	res, err := Replay(path, ReplayFilter{
		Start: "2026-03-01T12:02:00.000Z",
		End:   "2026-03-01T12:03:00.000Z",
	})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if len(res.Entries) != 2 {
		t.Fatalf("expected 2 entries in range, got %d", len(res.Entries))
	}
	if res.Entries[0].Kind != KindAccess || res.Entries[1].Kind != KindOperation {
		t.Fatalf("unexpected entries in range: %+v", res.Entries)
	}
}

func appendCorruptLine(t *testing.T, path string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		t.Fatalf("open sink: %v", err)
	}
	f.WriteString("{truncated\n")
	f.Close()
}

func TestReplaySkipsCorruptLines(t *testing.T) {
	path := newPopulatedSink(t)
	appendCorruptLine(t, path)

	res, err := Replay(path, ReplayFilter{})
	if err != nil {
		t.Fatalf("damaged file must still replay: %v", err)
	}
	if res.Summary.Total != 4 {
		t.Fatalf("expected 4 readable entries, got %d", res.Summary.Total)
	}
	if res.Summary.Skipped != 1 {
		t.Fatalf("expected 1 skipped line, got %d", res.Summary.Skipped)
	}
}

func TestReplayMissingFile(t *testing.T) {
	_, err := Replay(filepath.Join(t.TempDir(), "absent.jsonl"), ReplayFilter{})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
