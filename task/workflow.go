package task

import (
	"fmt"
	"slices"
	"time"

	"github.com/xiansai/agent-sdk-go/engine"
)

// WorkflowInput is the payload passed to Workflow when a parent workflow
// starts a task child workflow via engine.Engine.StartWorkflow.
type WorkflowInput struct {
	TaskID        string
	Title         string
	Description   string
	DraftWork     string
	ParticipantID string
	Metadata      map[string]string
	Actions       []string
	// Timeout is the task's own timeout (request.timeout), not the
	// execution timeout the registry sets on the start request. Zero means
	// no timeout, per spec.md §4.7.
	Timeout time.Duration
}

// state is the task workflow's private, mutating state: rebuilt from
// scratch on every replay by the Workflow function closure, never stored
// outside it, and read by the query handlers registered against it.
type state struct {
	initialWork     string
	currentDraft    string
	finalWork       string
	completed       bool
	performedAction string
	comment         string
	timedOut        bool
}

func (s *state) info(in WorkflowInput) Info {
	return Info{
		TaskID:           in.TaskID,
		Title:            in.Title,
		Description:      in.Description,
		InitialWork:      s.initialWork,
		FinalWork:        s.finalWork,
		AvailableActions: in.Actions,
		IsCompleted:      s.completed,
		PerformedAction:  s.performedAction,
		Comment:          s.comment,
		ParticipantID:    in.ParticipantID,
		Metadata:         in.Metadata,
	}
}

// Workflow implements the task child workflow state machine described in
// spec.md §4.7: Pending -> (updateDraft)* -> Completed{action,comment} |
// TimedOut. It registers the three query handlers (getInfo,
// getInitialWork, getCurrentDraft) then loops on Controller.Await until a
// terminal event arrives.
func Workflow(wf engine.WorkflowContext, input any) (any, error) {
	in, ok := input.(WorkflowInput)
	if !ok {
		return nil, fmt.Errorf("task: unexpected workflow input type %T", input)
	}

	st := &state{initialWork: in.DraftWork, currentDraft: in.DraftWork}

	if err := wf.SetQueryHandler(QueryGetInfo, func() (any, error) {
		return st.info(in), nil
	}); err != nil {
		return nil, err
	}
	if err := wf.SetQueryHandler(QueryGetInitialWork, func() (any, error) {
		return st.initialWork, nil
	}); err != nil {
		return nil, err
	}
	if err := wf.SetQueryHandler(QueryGetCurrentDraft, func() (any, error) {
		return st.currentDraft, nil
	}); err != nil {
		return nil, err
	}

	var deadline time.Time
	startedAt := wf.Now()
	if in.Timeout > 0 {
		deadline = startedAt.Add(in.Timeout)
	}

	ctrl := NewController(wf)
	for {
		res, err := ctrl.Await(wf.Context(), wf.Now, deadline)
		if err != nil {
			return nil, err
		}
		switch res.kind {
		case awaitDraft:
			st.currentDraft = res.draft
		case awaitTimedOut:
			st.completed = true
			st.timedOut = true
			st.finalWork = st.currentDraft
			return buildResult(in, st, wf.Now()), nil
		case awaitAction:
			if !slices.Contains(in.Actions, res.action) {
				wf.Logger().Warn(wf.Context(), "task: performAction rejected, not in availableActions", "action", res.action, "available", in.Actions)
				continue
			}
			// Drain any updateDraft signals that arrived in the same
			// workflow task as this performAction before finalizing: the
			// engine buffers both on its signal channels, and Await only
			// parks on one channel at a time, so a draft update sitting
			// behind the action signal would otherwise be lost.
			for {
				t, ok := ctrl.PollDraft()
				if !ok {
					break
				}
				st.currentDraft = t
			}
			st.completed = true
			st.performedAction = res.action
			st.comment = res.comment
			st.finalWork = st.currentDraft
			return buildResult(in, st, wf.Now()), nil
		}
	}
}

func buildResult(in WorkflowInput, st *state, completedAt time.Time) Result {
	return Result{
		TaskID:          in.TaskID,
		InitialWork:     st.initialWork,
		FinalWork:       st.finalWork,
		CompletedAt:     completedAt,
		PerformedAction: st.performedAction,
		Comment:         st.comment,
		TimedOut:        st.timedOut,
	}
}
