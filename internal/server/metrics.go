package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/opsgate/opsgate/internal/model"
)

var (
	// decisionsTotal counts oversight decisions.
	// Labels: approved ("true", "false"), risk_level
	decisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "opsgate",
		Subsystem: "oversight",
		Name:      "decisions_total",
		Help:      "Total oversight decisions",
	}, []string{"approved", "risk_level"})

	// evaluationsTotal counts policy evaluations.
	// Labels: compliant ("true", "false")
	evaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "opsgate",
		Subsystem: "policy",
		Name:      "evaluations_total",
		Help:      "Total policy evaluations",
	}, []string{"compliant"})

	// violationsTotal counts principle violations.
	// Labels: principle
	violationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "opsgate",
		Subsystem: "policy",
		Name:      "violations_total",
		Help:      "Total principle violations across evaluations",
	}, []string{"principle"})

	// healthScore tracks the latest health score per component.
	healthScore = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "opsgate",
		Subsystem: "resilience",
		Name:      "health_score",
		Help:      "Latest health score per component",
	}, []string{"component"})

	// healthChecksTotal counts health checks by resulting status.
	healthChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "opsgate",
		Subsystem: "resilience",
		Name:      "health_checks_total",
		Help:      "Total health checks by status",
	}, []string{"status"})

	// recoveriesTotal counts recovery attempts.
	// Labels: strategy, success ("true", "false")
	recoveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "opsgate",
		Subsystem: "resilience",
		Name:      "recoveries_total",
		Help:      "Total recovery attempts by strategy",
	}, []string{"strategy", "success"})
)

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func recordEvaluation(eval model.Evaluation) {
	evaluationsTotal.WithLabelValues(boolLabel(eval.Approved)).Inc()
	for _, v := range eval.Violations {
		violationsTotal.WithLabelValues(v.Principle).Inc()
	}
}

func recordDecision(d model.Decision) {
	decisionsTotal.WithLabelValues(boolLabel(d.Approved), string(d.Impact.RiskLevel)).Inc()
	recordEvaluation(d.Evaluation)
}

func recordHealthMetrics(check model.HealthCheck) {
	healthScore.WithLabelValues(check.Component).Set(check.Score)
	healthChecksTotal.WithLabelValues(string(check.Status)).Inc()
	if check.Recovery != nil {
		recoveriesTotal.WithLabelValues(check.Recovery.Strategy, boolLabel(check.Recovery.Succeeded)).Inc()
	}
}
