// Package metrics implements the fluent usage-reporting builder (spec.md
// §4.9): per-turn usage events auto-populated from message context, posted
// through the Context-Aware Executor so reporting participates correctly in
// workflow replay.
package metrics

// Metric is one measured quantity within a UsageEvent, per spec.md §3.
type Metric struct {
	Category string  `json:"category"`
	Type     string  `json:"type"`
	Value    float64 `json:"value"`
	Unit     string  `json:"unit,omitempty"`
}

// UsageEvent is the structured usage record posted to
// /api/agent/usage/report, per spec.md §3/§4.9.
type UsageEvent struct {
	TenantID         string         `json:"tenantId"`
	ParticipantID    string         `json:"participantId,omitempty"`
	WorkflowID       string         `json:"workflowId"`
	RequestID        string         `json:"requestId,omitempty"`
	WorkflowType     string         `json:"workflowType"`
	AgentName        string         `json:"agentName"`
	ActivationName   string         `json:"activationName,omitempty"`
	Model            string         `json:"model,omitempty"`
	CustomIdentifier string         `json:"customIdentifier,omitempty"`
	Metrics          []Metric       `json:"metrics"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}
