package messaging

import (
	"context"
	"fmt"

	"github.com/xiansai/agent-sdk-go/engine"
	"github.com/xiansai/agent-sdk-go/ident"
)

// BuiltInWorkflowName names one of the SDK-provided workflow templates a
// SendChatToBuiltIn call may target, per spec.md §4.6/GLOSSARY.
type BuiltInWorkflowName string

const (
	BuiltInSupervisor    BuiltInWorkflowName = "Supervisor"
	BuiltInIntegrator    BuiltInWorkflowName = "Integrator"
	BuiltInFileUpload    BuiltInWorkflowName = "File Upload"
	BuiltInConversational BuiltInWorkflowName = "Conversational"
	BuiltInWeb           BuiltInWorkflowName = "Web"
)

// A2ADispatcher sends a chat/data signal to another agent's built-in
// workflow (spec.md §4.6 "A2A dispatch"). The target workflow id/type are
// tracked for metrics/usage attribution, not the sender's, per spec.md §8
// scenario 5.
type A2ADispatcher struct {
	engine   engine.Engine
	tenantID string
}

// NewA2ADispatcher constructs an A2ADispatcher that signals built-in
// workflows on behalf of tenantID.
func NewA2ADispatcher(eng engine.Engine, tenantID string) *A2ADispatcher {
	return &A2ADispatcher{engine: eng, tenantID: tenantID}
}

// SendChatToBuiltIn signals the named built-in workflow of targetAgent with
// message, returning the target workflow id/type so the caller can populate
// an A2ATarget for Metrics attribution.
func (d *A2ADispatcher) SendChatToBuiltIn(ctx context.Context, targetAgent string, workflowName BuiltInWorkflowName, message InboundMessage) (A2ATarget, error) {
	workflowType := ident.WorkflowType(targetAgent, string(workflowName))
	workflowID := ident.BuildWorkflowID(d.tenantID, workflowType, "")

	startReq := engine.WorkflowStartRequest{
		ID:        workflowID,
		Workflow:  workflowType,
		TaskQueue: ident.TaskQueueName(workflowType, false, d.tenantID),
		Memo: map[string]any{
			"tenantId":     d.tenantID,
			"agentName":    targetAgent,
			"systemScoped": false,
		},
	}
	handle, err := d.engine.StartOrGetWorkflow(ctx, startReq)
	if err != nil {
		return A2ATarget{}, fmt.Errorf("messaging: a2a start/get workflow %q: %w", workflowID, err)
	}
	if err := handle.Signal(ctx, SignalHandleInbound, message); err != nil {
		return A2ATarget{}, fmt.Errorf("messaging: a2a signal workflow %q: %w", workflowID, err)
	}
	return A2ATarget{TargetWorkflowID: workflowID, TargetWorkflowType: workflowType}, nil
}
