package task

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/xiansai/agent-sdk-go/engine"
	"github.com/xiansai/agent-sdk-go/ident"
)

// Handle is the parent-side view of a running (or completed) task child
// workflow: the start/query/signal/await surface spec.md §4.7 describes.
type Handle struct {
	wfHandle engine.WorkflowHandle
	taskID   string
	actions  []string
}

// Start launches a task child workflow under eng for the given agent and
// tenant, applying the identity/memo rules of spec.md §4.7: composite
// workflow id with "--{taskName}" suffix, TerminateIfRunning id-reuse,
// execution timeout = request timeout + 1 day, and memo inheritance from
// parentMemo.
func Start(ctx context.Context, eng engine.Engine, agent, tenantID string, req Request, parentMemo map[string]any) (*Handle, error) {
	req = req.Normalize(func() string { return uuid.NewString() })
	if err := req.Validate(); err != nil {
		return nil, err
	}
	participantID, err := ResolveParticipant(req.ParticipantID, parentMemo)
	if err != nil {
		return nil, err
	}

	workflowType := WorkflowType(agent)
	workflowID := WorkflowID(workflowType, tenantID, "", req.TaskName)
	memo := BuildMemo(parentMemo, req, participantID)

	parentClose := engine.ParentCloseTerminate
	if req.SurviveParentClose {
		parentClose = engine.ParentCloseAbandon
	}

	startReq := engine.WorkflowStartRequest{
		ID:        workflowID,
		Workflow:  workflowType,
		TaskQueue: ident.TaskQueueName(workflowType, false, tenantID),
		Input: WorkflowInput{
			TaskID:        req.TaskName,
			Title:         req.Title,
			Description:   req.Description,
			DraftWork:     req.DraftWork,
			ParticipantID: participantID,
			Metadata:      req.Metadata,
			Actions:       req.Actions,
			Timeout:       req.Timeout,
		},
		Memo:              memo,
		RetryPolicy:       req.RetryPolicy,
		ExecutionTimeout:  req.Timeout + 24*time.Hour,
		IDReusePolicy:     engine.IDReuseTerminateIfRunning,
		ParentClosePolicy: parentClose,
	}

	h, err := eng.StartWorkflow(ctx, startReq)
	if err != nil {
		return nil, fmt.Errorf("task: start %q: %w", workflowID, err)
	}
	return &Handle{wfHandle: h, taskID: req.TaskName, actions: req.Actions}, nil
}

// GetInfo runs the getInfo() query (spec.md §4.7).
func (h *Handle) GetInfo(ctx context.Context) (Info, error) {
	var info Info
	if err := h.wfHandle.Query(ctx, QueryGetInfo, &info); err != nil {
		return Info{}, err
	}
	return info, nil
}

// GetInitialWork runs the getInitialWork() query.
func (h *Handle) GetInitialWork(ctx context.Context) (string, error) {
	var work string
	if err := h.wfHandle.Query(ctx, QueryGetInitialWork, &work); err != nil {
		return "", err
	}
	return work, nil
}

// GetCurrentDraft runs the getCurrentDraft() query.
func (h *Handle) GetCurrentDraft(ctx context.Context) (string, error) {
	var draft string
	if err := h.wfHandle.Query(ctx, QueryGetCurrentDraft, &draft); err != nil {
		return "", err
	}
	return draft, nil
}

// UpdateDraft sends the updateDraft(text) signal.
func (h *Handle) UpdateDraft(ctx context.Context, text string) error {
	return h.wfHandle.Signal(ctx, SignalUpdateDraft, updateDraftSignal{Text: text})
}

// PerformAction sends the performAction(action, comment) signal. It
// validates action against the availableActions captured at Start time
// before sending, so callers get ErrInvalidAction synchronously instead of
// only a server-side warning (the workflow itself also re-validates, per
// spec.md §4.11, since availableActions could differ if Handle was
// reconstructed from a bare workflow id without the original Request).
func (h *Handle) PerformAction(ctx context.Context, action, comment string) error {
	if len(h.actions) > 0 && !slices.Contains(h.actions, action) {
		return &ErrInvalidAction{Action: action, Available: h.actions}
	}
	return h.wfHandle.Signal(ctx, SignalPerformAction, performActionSignal{Action: action, Comment: comment})
}

// ApproveTask is sugar over PerformAction("approve", comment), per spec.md
// §4.7's convenience tools.
func (h *Handle) ApproveTask(ctx context.Context, comment string) error {
	return h.PerformAction(ctx, "approve", comment)
}

// RejectTask is sugar over PerformAction("reject", reason).
func (h *Handle) RejectTask(ctx context.Context, reason string) error {
	return h.PerformAction(ctx, "reject", reason)
}

// Await blocks until the task workflow completes and returns its Result.
func (h *Handle) Await(ctx context.Context) (Result, error) {
	var res Result
	if err := h.wfHandle.Wait(ctx, &res); err != nil {
		return Result{}, err
	}
	return res, nil
}

// FormatSummary renders getTaskInfo()'s human-formatted summary, per
// spec.md §4.7.
func FormatSummary(info Info) string {
	status := "pending"
	if info.IsCompleted {
		if info.PerformedAction != "" {
			status = fmt.Sprintf("completed (%s)", info.PerformedAction)
		} else {
			status = "timed out"
		}
	}
	return fmt.Sprintf("%s: %s [%s]", info.Title, info.Description, status)
}
