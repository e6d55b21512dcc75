package audit

import (
	"encoding/json"

	"github.com/opsgate/opsgate/internal/model"
)

// Kind classifies an audit entry.
type Kind string

const (
	KindOperation Kind = "operation"
	KindDecision  Kind = "decision"
	KindAccess    Kind = "access"
	KindEvent     Kind = "event"
)

// TimestampFormat is the layout used in audit entry timestamps. Fixed-width
// UTC so timestamps compare correctly as strings.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

// Entry is one record in the append-only audit ledger and, when persisted,
// one line in the hash-chained JSONL sink. PrevHash is assigned by the sink
// at persist time; in-memory entries leave it empty.
type Entry struct {
	Kind      Kind            `json:"kind"`
	Timestamp string          `json:"ts"`
	TraceID   string          `json:"trace_id,omitempty"`
	Payload   json.RawMessage `json:"payload"`
	PrevHash  string          `json:"prev_hash,omitempty"`
}

// OperationPayload records an executed (or blocked) operation.
type OperationPayload struct {
	Operation   string        `json:"operation"`
	Actor       string        `json:"actor"`
	DataSummary string        `json:"data_summary"`
	Context     model.Context `json:"context"`
	Result      string        `json:"result"`
}

// AccessPayload records access to a resource and whether it was granted.
type AccessPayload struct {
	Resource string `json:"resource"`
	Accessor string `json:"accessor"`
	Action   string `json:"action"`
	Granted  bool   `json:"granted"`
}

// EventPayload records a general system event.
type EventPayload struct {
	EventType   string         `json:"event_type"`
	Description string         `json:"description"`
	Details     map[string]any `json:"details,omitempty"`
}
