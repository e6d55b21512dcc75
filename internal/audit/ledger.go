package audit

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/opsgate/opsgate/internal/model"
	"github.com/opsgate/opsgate/internal/redact"
)

// Ledger is the append-only, chronologically-ordered record of operations,
// decisions, accesses, and events. Append is the only mutator: entries are
// inserted at the tail with timestamps assigned here from a single time
// source, never reordered, edited, or deleted.
//
// The in-memory sequence is the ledger of record for the current process.
// When a sink is attached, every append is also persisted best-effort:
// persistence failure is logged and counted, never rolled back.
type Ledger struct {
	mu       sync.Mutex
	entries  []Entry
	sink     *Sink
	logger   *slog.Logger
	now      func() time.Time
	lastTS   string
	sinkErrs int
}

// NewLedger creates an empty ledger. sink may be nil for in-memory-only
// operation.
func NewLedger(sink *Sink, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{sink: sink, logger: logger, now: time.Now}
}

// Append records an entry of the given kind. The payload is marshaled to
// JSON and the timestamp assigned here, monotonically non-decreasing.
func (l *Ledger) Append(kind Kind, traceID string, payload any) (Entry, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Entry{}, fmt.Errorf("audit: marshal payload: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.appendLocked(kind, traceID, raw), nil
}

// appendLocked inserts at the tail. Caller holds l.mu.
func (l *Ledger) appendLocked(kind Kind, traceID string, raw json.RawMessage) Entry {
	ts := l.now().UTC().Format(TimestampFormat)
	// Single time source, monotonic: never step backwards even under
	// clock skew.
	if ts < l.lastTS {
		ts = l.lastTS
	}
	l.lastTS = ts

	e := Entry{
		Kind:      kind,
		Timestamp: ts,
		TraceID:   traceID,
		Payload:   raw,
	}
	l.entries = append(l.entries, e)

	if l.sink != nil {
		if err := l.sink.Persist(e); err != nil {
			// Best-effort replication: the in-memory append stands.
			l.sinkErrs++
			l.logger.Warn("audit sink persist failed, durability degraded",
				"error", err, "failures", l.sinkErrs)
		}
	}

	return e
}

// AppendOperation records an executed or blocked operation. Personal and
// credential data in the context and data summary is masked before the
// entry is written; the ledger is append-only, so raw PII recorded here
// could never be unwritten.
func (l *Ledger) AppendOperation(traceID string, p OperationPayload) (Entry, error) {
	if p.Context != nil {
		p.Context = model.Context(redact.Map(p.Context, nil))
	}
	p.DataSummary = redact.Text(p.DataSummary)
	return l.Append(KindOperation, traceID, p)
}

// AppendDecision records an oversight decision.
func (l *Ledger) AppendDecision(d model.Decision) (Entry, error) {
	return l.Append(KindDecision, d.ID, d)
}

// AppendAccess records access to a resource.
func (l *Ledger) AppendAccess(traceID string, p AccessPayload) (Entry, error) {
	return l.Append(KindAccess, traceID, p)
}

// AppendEvent records a general event.
func (l *Ledger) AppendEvent(traceID string, p EventPayload) (Entry, error) {
	return l.Append(KindEvent, traceID, p)
}

// QueryFilter selects entries by inclusive timestamp bounds and kind.
// Zero values mean no constraint. Bounds are ISO-8601 strings compared
// lexicographically, which is exact for the fixed UTC format.
type QueryFilter struct {
	Start string
	End   string
	Kind  Kind
}

// Query returns matching entries in append order, from a snapshot taken
// under the ledger lock.
func (l *Ledger) Query(f QueryFilter) []Entry {
	l.mu.Lock()
	snapshot := make([]Entry, len(l.entries))
	copy(snapshot, l.entries)
	l.mu.Unlock()

	var out []Entry
	for _, e := range snapshot {
		if f.Start != "" && e.Timestamp < f.Start {
			continue
		}
		if f.End != "" && e.Timestamp > f.End {
			continue
		}
		if f.Kind != "" && e.Kind != f.Kind {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Len returns the number of entries appended so far.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// SinkFailures returns the number of persistence failures observed.
// Non-zero means durability is degraded; the in-memory ledger is unaffected.
func (l *Ledger) SinkFailures() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sinkErrs
}

// IntegrityResult is the outcome of a ledger integrity verification.
type IntegrityResult struct {
	IsComplete        bool `json:"is_complete"`
	IsChronological   bool `json:"is_chronological"`
	TotalEntries      int  `json:"total_entries"`
	IntegrityVerified bool `json:"integrity_verified"`
}

// VerifyIntegrity scans entry timestamps pairwise. It never fails: a broken
// invariant is a reportable fact, not an error. A non-chronological sequence
// signals tampering or clock skew.
func (l *Ledger) VerifyIntegrity() IntegrityResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	chronological := true
	for i := 1; i < len(l.entries); i++ {
		if l.entries[i].Timestamp < l.entries[i-1].Timestamp {
			chronological = false
			break
		}
	}

	complete := len(l.entries) > 0
	return IntegrityResult{
		IsComplete:        complete,
		IsChronological:   chronological,
		TotalEntries:      len(l.entries),
		IntegrityVerified: complete && chronological,
	}
}

// ComplianceReport summarizes ledger contents for reporting.
type ComplianceReport struct {
	TotalOperations   int             `json:"total_operations"`
	TotalDecisions    int             `json:"total_decisions"`
	TotalAccesses     int             `json:"total_accesses"`
	TotalEvents       int             `json:"total_events"`
	DeniedAccesses    int             `json:"denied_accesses"`
	TotalAuditEntries int             `json:"total_audit_entries"`
	PeriodStart       string          `json:"period_start,omitempty"`
	PeriodEnd         string          `json:"period_end,omitempty"`
	Integrity         IntegrityResult `json:"audit_integrity"`
}

// Report counts entries per kind and denied accesses over the whole ledger.
func (l *Ledger) Report() ComplianceReport {
	l.mu.Lock()
	snapshot := make([]Entry, len(l.entries))
	copy(snapshot, l.entries)
	l.mu.Unlock()

	r := ComplianceReport{TotalAuditEntries: len(snapshot)}
	for _, e := range snapshot {
		switch e.Kind {
		case KindOperation:
			r.TotalOperations++
		case KindDecision:
			r.TotalDecisions++
		case KindAccess:
			r.TotalAccesses++
			var p AccessPayload
			if err := json.Unmarshal(e.Payload, &p); err == nil && !p.Granted {
				r.DeniedAccesses++
			}
		case KindEvent:
			r.TotalEvents++
		}
	}
	if len(snapshot) > 0 {
		r.PeriodStart = snapshot[0].Timestamp
		r.PeriodEnd = snapshot[len(snapshot)-1].Timestamp
	}
	r.Integrity = l.VerifyIntegrity()
	return r
}
