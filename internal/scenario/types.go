// Package scenario runs YAML-defined oversight assertions, for gating
// deployments on policy correctness in CI.
package scenario

// Case is one test case within a scenario.
type Case struct {
	Operation string         `yaml:"operation"`
	Data      any            `yaml:"data,omitempty"`
	Context   map[string]any `yaml:"context,omitempty"`
	Expect    string         `yaml:"expect"` // "approved" or "denied"
}

// Scenario is a named collection of oversight test cases.
type Scenario struct {
	Name       string   `yaml:"name"`
	Principles []string `yaml:"principles,omitempty"` // empty = full set
	Cases      []Case   `yaml:"cases"`
}

// CaseResult is the outcome of evaluating one test case.
type CaseResult struct {
	Index     int      `json:"index"`
	Passed    bool     `json:"passed"`
	Operation string   `json:"operation"`
	Expected  string   `json:"expected"`
	Actual    string   `json:"actual"`
	RiskLevel string   `json:"risk_level"`
	Guidance  []string `json:"guidance,omitempty"`
}

// RunResult is the outcome of running all cases in one scenario file.
type RunResult struct {
	File   string       `json:"file"`
	Name   string       `json:"name"`
	Total  int          `json:"total"`
	Passed int          `json:"passed"`
	Failed int          `json:"failed"`
	Cases  []CaseResult `json:"cases"`
}
