package model

// Context carries the caller-declared facts about an operation.
// It is read-only input: evaluators and assessors never mutate it.
// Values arrive from JSON or YAML, so getters coerce defensively.
type Context map[string]any

// Has reports whether the key is present, regardless of value.
func (c Context) Has(key string) bool {
	_, ok := c[key]
	return ok
}

// Bool returns the value for key as a bool, or def when the key is absent
// or not boolean-shaped.
func (c Context) Bool(key string, def bool) bool {
	v, ok := c[key]
	if !ok {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		if b == "true" {
			return true
		}
		if b == "false" {
			return false
		}
	}
	return def
}

// String returns the value for key as a string, or def when absent.
func (c Context) String(key, def string) string {
	v, ok := c[key]
	if !ok {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return def
}

// Harm returns the declared harm assessment, defaulting to unknown.
func (c Context) Harm() HarmLevel {
	return HarmLevel(c.String("harm_assessment", string(HarmUnknown)))
}
