package alert

// Config defines a webhook alert destination.
type Config struct {
	URL     string            `yaml:"url"     json:"url"`
	Format  string            `yaml:"format"  json:"format"` // "generic", "slack", "pagerduty"
	Events  []string          `yaml:"events"  json:"events"` // ["denied", "critical", "degraded", "recovery_failed"]
	Headers map[string]string `yaml:"headers" json:"headers"`
}

// Event is the payload sent to webhook endpoints. Kind is "denied" for
// blocked oversight decisions, or the health status for failing checks.
type Event struct {
	Timestamp string   `json:"timestamp"`
	Kind      string   `json:"kind"`
	Operation string   `json:"operation,omitempty"`
	Component string   `json:"component,omitempty"`
	RiskLevel string   `json:"risk_level,omitempty"`
	Score     float64  `json:"health_score,omitempty"`
	Guidance  []string `json:"guidance,omitempty"`
	Detail    string   `json:"detail,omitempty"`
}
