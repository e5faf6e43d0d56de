package task

import (
	"context"
	"time"

	"github.com/xiansai/agent-sdk-go/engine"
)

// Controller drains the updateDraft/performAction signals for a single task
// workflow execution, generalizing the teacher's pause/resume Controller
// (runtime/agent/interrupt/controller.go) from a fixed two-signal protocol
// to the task's arbitrary-action state machine.
type Controller struct {
	draftCh  engine.SignalChannel
	actionCh engine.SignalChannel
}

// NewController builds a Controller wired to wf's signal channels.
func NewController(wf engine.WorkflowContext) *Controller {
	return &Controller{
		draftCh:  wf.SignalChannel(SignalUpdateDraft),
		actionCh: wf.SignalChannel(SignalPerformAction),
	}
}

// PollDraft attempts to dequeue an updateDraft signal without blocking.
func (c *Controller) PollDraft() (string, bool) {
	var sig updateDraftSignal
	if !c.draftCh.ReceiveAsync(&sig) {
		return "", false
	}
	return sig.Text, true
}

// awaitResult is what Await reports back to the workflow loop: either a
// completed action, a drained draft update, or a timeout.
type awaitResult struct {
	kind    awaitKind
	draft   string
	action  string
	comment string
}

type awaitKind int

const (
	awaitNone awaitKind = iota
	awaitDraft
	awaitAction
	awaitTimedOut
)

// Await blocks until the next draft update, a terminal performAction, or
// deadline (the task's absolute timeout instant, zero meaning no timeout)
// elapses, whichever comes first. It never blocks past deadline.
func (c *Controller) Await(ctx context.Context, now func() time.Time, deadline time.Time) (awaitResult, error) {
	var timeout time.Duration
	if !deadline.IsZero() {
		timeout = deadline.Sub(now())
		if timeout <= 0 {
			return awaitResult{kind: awaitTimedOut}, nil
		}
	}

	// Race both signal channels plus the timeout by polling non-blocking
	// first (cheap, avoids an extra timer when work is already queued), then
	// falling back to the action channel's timed receive — the common case
	// is waiting for performAction, and draft updates arrive in between as
	// no-ops we simply re-poll for on the next loop iteration.
	if text, ok := c.PollDraft(); ok {
		return awaitResult{kind: awaitDraft, draft: text}, nil
	}
	var action performActionSignal
	if deadline.IsZero() {
		if err := c.actionCh.Receive(ctx, &action); err != nil {
			return awaitResult{}, err
		}
		return awaitResult{kind: awaitAction, action: action.Action, comment: action.Comment}, nil
	}
	received, err := c.actionCh.ReceiveWithTimeout(ctx, &action, timeout)
	if err != nil {
		return awaitResult{}, err
	}
	if !received {
		return awaitResult{kind: awaitTimedOut}, nil
	}
	return awaitResult{kind: awaitAction, action: action.Action, comment: action.Comment}, nil
}
