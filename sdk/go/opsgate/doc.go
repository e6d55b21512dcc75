// Package opsgate provides in-process operation gating for Go services.
// It runs each operation through principle checks and impact assessment,
// blocks denied operations before they execute, and records the outcome in
// a tamper-evident audit ledger, with health monitoring and performance
// trend tracking on the side.
//
// Usage:
//
//	gate, err := opsgate.New(opsgate.WithAuditSink("audit.jsonl"))
//	result, err := gate.Execute(ctx, "delete_user_data", nil, opsgate.Context{
//	    "purpose":                "gdpr_erasure",
//	    "contains_personal_data": true,
//	    "user_consent":           true,
//	    "responsible_party":      "dpo",
//	    "harm_assessment":        "minimal",
//	}, func(ctx context.Context) (any, error) {
//	    return store.DeleteUser(ctx, userID)
//	})
//
// The SDK links directly against internal packages for zero-subprocess
// overhead. External users import github.com/opsgate/opsgate/sdk/go/opsgate.
package opsgate
