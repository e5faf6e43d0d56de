// Package task implements the HITL (human-in-the-loop) task subsystem: a
// task is a child workflow carrying a draft/action/comment state machine
// (spec.md §4.7), started by a parent workflow and driven to completion by
// external queries/signals. The state machine is grounded on the teacher's
// pause/resume signal controller (runtime/agent/interrupt/controller.go),
// generalized from a fixed pause/resume pair to an arbitrary
// caller-supplied action set.
package task

import (
	"time"

	"github.com/xiansai/agent-sdk-go/engine"
	"github.com/xiansai/agent-sdk-go/ident"
	"github.com/xiansai/agent-sdk-go/sdkerr"
)

// State names a task's position in its state machine, per spec.md §4.7/§3.
type State string

const (
	StatePending   State = "Pending"
	StateCompleted State = "Completed"
	StateTimedOut  State = "TimedOut"
	StateTerminated State = "Terminated"
)

// DefaultActions is the availableActions default applied when a request
// omits or empties the field, per spec.md §4.7/§9.
var DefaultActions = []string{"approve", "reject"}

const (
	// WorkflowTypeSuffix names the built-in task workflow type, combined
	// with the owning agent as "{agent}:Task Workflow" (spec.md §4.7).
	WorkflowTypeSuffix = "Task Workflow"

	// SignalUpdateDraft delivers a new currentDraft value while Pending.
	SignalUpdateDraft = "task.updateDraft"
	// SignalPerformAction delivers a terminal action+comment while Pending.
	SignalPerformAction = "task.performAction"

	// QueryGetInfo returns the getInfo() summary.
	QueryGetInfo = "task.getInfo"
	// QueryGetInitialWork returns the immutable initialWork value.
	QueryGetInitialWork = "task.getInitialWork"
	// QueryGetCurrentDraft returns the live currentDraft value.
	QueryGetCurrentDraft = "task.getCurrentDraft"
)

// WorkflowType formats the task workflow type name for agent, per spec.md
// §4.7 ("workflowType = {agent}:Task Workflow").
func WorkflowType(agent string) string {
	return ident.WorkflowType(agent, WorkflowTypeSuffix)
}

// WorkflowID formats the composite task workflow id, per spec.md §4.7
// ("workflowId = buildId(workflowType, tenant, idPostfix) + \"--\" +
// taskName"). idPostfix is normally empty; it exists for parity with the
// generic buildId signature used elsewhere.
func WorkflowID(workflowType, tenantID, idPostfix, taskName string) string {
	return ident.BuildWorkflowID(tenantID, workflowType, idPostfix) + "--" + taskName
}

// Request is TaskWorkflowRequest (spec.md §4.7): the parameters a parent
// workflow supplies when starting a task child workflow.
type Request struct {
	Title              string            `validate:"required"`
	Description        string            `validate:"required"`
	DraftWork          string
	ParticipantID      string
	Metadata           map[string]string
	Actions            []string
	Timeout            time.Duration
	SurviveParentClose bool
	TaskName           string
	RetryPolicy        engine.RetryPolicy
}

// Normalize applies the defaults spec.md §4.7/§9 names: an empty or absent
// Actions becomes DefaultActions, an absent TaskName gets a fresh one, and
// an absent RetryPolicy gets max attempts = 1 (a task that fails to start
// is not silently retried forever, since the parent is waiting on it
// synchronously). Normalize does not resolve ParticipantID inheritance —
// that requires the parent's memo and is the caller's responsibility.
func (r Request) Normalize(newTaskName func() string) Request {
	if len(r.Actions) == 0 {
		r.Actions = append([]string(nil), DefaultActions...)
	}
	if r.TaskName == "" {
		r.TaskName = newTaskName()
	}
	if r.RetryPolicy.MaxAttempts == 0 {
		r.RetryPolicy.MaxAttempts = 1
	}
	return r
}

// Validate enforces the required, non-empty constraints spec.md §4.7 names
// for Request (title, description). ParticipantID's inheritance-or-fail
// invariant is enforced by ResolveParticipant, not here, since it depends
// on parent memo state this type doesn't carry.
func (r Request) Validate() error {
	if r.Title == "" {
		return sdkerr.Validationf("task.Request", "title is required")
	}
	if r.Description == "" {
		return sdkerr.Validationf("task.Request", "description is required")
	}
	return nil
}

// ResolveParticipant implements spec.md §4.7's inheritance rule: if the
// request omits ParticipantID, fall back to the parent memo's "userId".
// If neither is present, fail fast per the Open Question resolution in
// spec.md §9 ("do NOT guess").
func ResolveParticipant(requested string, parentMemo map[string]any) (string, error) {
	if requested != "" {
		return requested, nil
	}
	if v, ok := parentMemo["userId"].(string); ok && v != "" {
		return v, nil
	}
	return "", sdkerr.Validationf("task.ResolveParticipant", "participantId omitted and parent memo has no userId to inherit")
}

// BuildMemo constructs a task child workflow's memo, per spec.md §4.7
// ("inherits all parent memo keys, then overlays userId, taskTitle,
// taskDescription, taskActions").
func BuildMemo(parentMemo map[string]any, r Request, participantID string) map[string]any {
	return ident.InheritMemo(parentMemo, map[string]any{
		"userId":          participantID,
		"taskTitle":       r.Title,
		"taskDescription": r.Description,
		"taskActions":     joinComma(r.Actions),
	})
}

func joinComma(items []string) string {
	out := ""
	for i, s := range items {
		if i > 0 {
			out += ","
		}
		out += s
	}
	return out
}

// Info is the getInfo() query result, per spec.md §4.7.
type Info struct {
	TaskID          string
	Title           string
	Description     string
	InitialWork     string
	FinalWork       string
	AvailableActions []string
	IsCompleted     bool
	PerformedAction string
	Comment         string
	ParticipantID   string
	Metadata        map[string]string
}

// Result is the task workflow's terminal return value, per spec.md §4.7.
type Result struct {
	TaskID          string
	InitialWork     string
	FinalWork       string
	CompletedAt     time.Time
	PerformedAction string
	Comment         string
	TimedOut        bool
}

// updateDraftSignal is the payload for SignalUpdateDraft.
type updateDraftSignal struct {
	Text string
}

// performActionSignal is the payload for SignalPerformAction.
type performActionSignal struct {
	Action  string
	Comment string
}

// ErrInvalidAction is returned by performAction when the requested action
// is not in the task's availableActions, per spec.md §4.7/§4.11 ("fatal for
// that signal; task remains Pending").
type ErrInvalidAction struct {
	Action    string
	Available []string
}

func (e *ErrInvalidAction) Error() string {
	return "task: action " + e.Action + " is not one of the available actions"
}
