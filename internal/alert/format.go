package alert

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatPayload builds the webhook body for the given format.
func FormatPayload(format string, event Event) ([]byte, error) {
	switch format {
	case "slack":
		return formatSlack(event)
	case "pagerduty":
		return formatPagerDuty(event)
	default:
		return formatGeneric(event)
	}
}

func formatGeneric(event Event) ([]byte, error) {
	return json.Marshal(event)
}

func formatSlack(event Event) ([]byte, error) {
	subject := event.Operation
	if subject == "" {
		subject = event.Component
	}

	fields := []any{
		map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Subject:* %s", subject)},
	}
	if event.RiskLevel != "" {
		fields = append(fields, map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Risk:* %s", event.RiskLevel)})
	}
	if event.Component != "" {
		fields = append(fields, map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Score:* %.2f", event.Score)})
	}
	if len(event.Guidance) > 0 {
		fields = append(fields, map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Guidance:* %s", strings.Join(event.Guidance, "; "))})
	}

	payload := map[string]any{
		"blocks": []any{
			map[string]any{
				"type": "header",
				"text": map[string]any{
					"type": "plain_text",
					"text": fmt.Sprintf("opsgate: %s", event.Kind),
				},
			},
			map[string]any{
				"type":   "section",
				"fields": fields,
			},
		},
	}
	return json.Marshal(payload)
}

func formatPagerDuty(event Event) ([]byte, error) {
	severity := "info"
	switch event.Kind {
	case "critical", "recovery_failed":
		severity = "critical"
	case "denied", "degraded":
		severity = "error"
	case "warning":
		severity = "warning"
	}

	subject := event.Operation
	if subject == "" {
		subject = event.Component
	}

	payload := map[string]any{
		"event_action": "trigger",
		"payload": map[string]any{
			"summary":  fmt.Sprintf("opsgate %s: %s", event.Kind, subject),
			"severity": severity,
			"source":   "opsgate",
			"custom_details": map[string]any{
				"operation":    event.Operation,
				"component":    event.Component,
				"risk_level":   event.RiskLevel,
				"health_score": event.Score,
				"guidance":     event.Guidance,
				"detail":       event.Detail,
			},
		},
	}
	return json.Marshal(payload)
}
