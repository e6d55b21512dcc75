package model

import "time"

// RiskLevel classifies the derived risk of an operation.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// HarmLevel is the caller-declared harm assessment for an operation.
type HarmLevel string

const (
	HarmNone     HarmLevel = "none"
	HarmMinimal  HarmLevel = "minimal"
	HarmModerate HarmLevel = "moderate"
	HarmHigh     HarmLevel = "high"
	HarmUnknown  HarmLevel = "unknown"
)

// HealthStatus classifies a component's wellness band.
type HealthStatus string

const (
	StatusHealthy  HealthStatus = "healthy"
	StatusWarning  HealthStatus = "warning"
	StatusDegraded HealthStatus = "degraded"
	StatusCritical HealthStatus = "critical"
	StatusUnknown  HealthStatus = "unknown"

	// StatusRecoveryFailed marks a failing component whose recovery
	// attempt also failed. It is a sub-state of degraded/critical, never
	// produced by scoring alone.
	StatusRecoveryFailed HealthStatus = "recovery_failed"
)

// Trend classifies the recent success-rate direction of an operation.
type Trend string

const (
	TrendPositive         Trend = "positive"
	TrendNegative         Trend = "negative"
	TrendStable           Trend = "stable"
	TrendInsufficientData Trend = "insufficient_data"
)

// Verdict is the outcome of evaluating one principle against an operation.
// Produced fresh per evaluation; never mutated after creation.
type Verdict struct {
	Principle       string   `json:"principle"`
	Compliant       bool     `json:"compliant"`
	Recommendations []string `json:"recommendations"`
}

// Evaluation is the combined result of checking all active principles.
// Violations holds the non-compliant verdicts in evaluation order; Verdicts
// holds every verdict, compliant or not.
type Evaluation struct {
	Approved          bool      `json:"approved"`
	Verdicts          []Verdict `json:"verdicts"`
	Violations        []Verdict `json:"violations"`
	Recommendations   []string  `json:"recommendations"`
	PrinciplesChecked []string  `json:"principles_checked"`
}

// Assessment captures the derived impact of an operation.
type Assessment struct {
	Operation            string    `json:"operation"`
	RiskLevel            RiskLevel `json:"risk_level"`
	AffectedParties      []string  `json:"affected_parties"`
	PotentialHarms       []string  `json:"potential_harms"`
	PotentialBenefits    []string  `json:"potential_benefits"`
	MitigationStrategies []string  `json:"mitigation_strategies"`
	CreatedAt            time.Time `json:"created_at"`
}

// Decision is one oversight decision: policy verdicts plus impact assessment
// combined into an approve/deny outcome with guidance.
// Invariant: Approved == (all verdicts compliant) && Impact.RiskLevel != high.
// Immutable once created.
type Decision struct {
	ID         string     `json:"id"`
	Operation  string     `json:"operation"`
	Approved   bool       `json:"approved"`
	Evaluation Evaluation `json:"ethical_validation"`
	Impact     Assessment `json:"impact_assessment"`
	Guidance   []string   `json:"guidance"`
	CreatedAt  time.Time  `json:"created_at"`
}

// HealthCheck is one scored health observation for a component.
type HealthCheck struct {
	Component string             `json:"component"`
	Metrics   map[string]float64 `json:"metrics"`
	Score     float64            `json:"health_score"`
	Status    HealthStatus       `json:"status"`
	Recovery  *RecoveryAction    `json:"recovery_initiated,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// RecoveryAction records one recovery attempt for a failing component.
type RecoveryAction struct {
	Component string    `json:"component"`
	Strategy  string    `json:"strategy"`
	Actions   []string  `json:"actions_taken"`
	Succeeded bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PerformanceRecord is one recorded operation outcome used for trend analysis.
type PerformanceRecord struct {
	Operation string             `json:"operation"`
	Metrics   map[string]float64 `json:"metrics"`
	Success   bool               `json:"success"`
	CreatedAt time.Time          `json:"created_at"`
}
