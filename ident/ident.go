// Package ident implements the pure identity/queue-naming/memo-inheritance
// functions shared by the Messaging (A2A), Task, and Registry components:
// workflowId construction/parsing, task-queue derivation, and memo
// inheritance (spec.md §3/§6, DESIGN NOTES §9). Kept dependency-free so every
// consumer can import it without risking an import cycle.
package ident

import "strings"

// BuildWorkflowID constructs the composite workflowId
// "{tenantId}:{workflowType}[:{idPostfix}]", per spec.md §3. idPostfix may
// be empty, in which case no trailing segment is appended.
func BuildWorkflowID(tenantID, workflowType, idPostfix string) string {
	id := tenantID + ":" + workflowType
	if idPostfix != "" {
		id += ":" + idPostfix
	}
	return id
}

// ParseTenant recovers the tenantId from a workflowId built by
// BuildWorkflowID — the first ":"-delimited segment — per spec.md §3's
// invariant that a workflowId always contains at least two ":" separators.
func ParseTenant(workflowID string) (string, bool) {
	parts := strings.SplitN(workflowID, ":", 2)
	if len(parts) < 2 || parts[0] == "" {
		return "", false
	}
	return parts[0], true
}

// TaskQueueName derives the flow-engine routing label for workflowType, per
// spec.md §3 ("TaskQueueName... derived from (workflowType, systemScoped,
// tenantId)"). System-scoped definitions route on a tenant-independent
// queue; tenant-scoped definitions get a per-tenant queue so workers for one
// tenant never pick up another tenant's work.
func TaskQueueName(workflowType string, systemScoped bool, tenantID string) string {
	if systemScoped {
		return "system:" + workflowType
	}
	return tenantID + ":" + workflowType
}

// WorkflowType formats the canonical "{agentName}:{displayName}" workflow
// type name, per spec.md §3.
func WorkflowType(agentName, displayName string) string {
	return agentName + ":" + displayName
}

// InheritMemo builds a child workflow's memo by copying every key from
// parent and then overlaying overlay's keys on top, per DESIGN NOTES §9
// ("avoids accidental leaks from per-subsystem copying loops"). The
// invariant this preserves: every memo key in the parent is present in a
// task child's memo (spec.md §8), unless explicitly replaced by overlay.
func InheritMemo(parent map[string]any, overlay map[string]any) map[string]any {
	child := make(map[string]any, len(parent)+len(overlay))
	for k, v := range parent {
		child[k] = v
	}
	for k, v := range overlay {
		child[k] = v
	}
	return child
}
