// Package redact masks personal and credential data before it reaches the
// audit trail. The ledger is append-only and long-lived; raw PII written
// there cannot be unwritten.
package redact

import "strings"

// DefaultPIIKeys are the keys automatically redacted.
var DefaultPIIKeys = []string{
	"name", "email", "phone", "ssn", "social_security",
	"address", "date_of_birth", "dob", "passport",
	"credit_card", "card_number", "cvv", "password",
	"token", "api_key", "secret",
}

// MaskValue replaces a value with "***". Numbers and bools are preserved.
func MaskValue(v any) any {
	switch v.(type) {
	case int, int64, float64, bool:
		return v
	case nil:
		return nil
	default:
		return "***"
	}
}

// Map redacts default PII keys plus any extra keys from a map.
// The input map is never modified.
func Map(data map[string]any, extraKeys []string) map[string]any {
	keySet := make(map[string]bool, len(DefaultPIIKeys)+len(extraKeys))
	for _, k := range DefaultPIIKeys {
		keySet[k] = true
	}
	for _, k := range extraKeys {
		keySet[strings.ToLower(k)] = true
	}

	result := make(map[string]any, len(data))
	for k, v := range data {
		if keySet[strings.ToLower(k)] {
			result[k] = MaskValue(v)
		} else if nested, ok := v.(map[string]any); ok {
			result[k] = Map(nested, extraKeys)
		} else {
			result[k] = v
		}
	}
	return result
}
