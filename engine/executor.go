package engine

import (
	"context"
	"fmt"
)

// Execute is the Context-Aware Executor (spec.md §4.4): the single
// abstraction every I/O-bearing SDK operation routes through, so that
// non-deterministic work always happens on the activity side of a workflow
// boundary. When ctx carries a WorkflowContext (deterministic workflow
// execution) Execute schedules opName as an activity and waits for its
// result; outside a workflow it calls svc directly.
//
// opName must match an ActivityDefinition registered with the engine ahead
// of time (typically by the registry at agent startup, per spec.md §4.8)
// whose Handler was built from the same svc via ActivityHandlerFor, so both
// paths perform identical work — the only difference is whether the engine
// mediates the call as a replay-safe activity.
func Execute[Req, Resp any](ctx context.Context, opName string, req Req, svc func(context.Context, Req) (Resp, error)) (Resp, error) {
	var zero Resp
	if wf := WorkflowContextFromContext(ctx); wf != nil && !IsActivityContext(ctx) {
		var resp Resp
		if err := wf.ExecuteActivity(ctx, ActivityRequest{Name: opName, Input: req}, &resp); err != nil {
			return zero, err
		}
		return resp, nil
	}
	return svc(ctx, req)
}

// ActivityHandlerFor adapts a typed (Req) -> (Resp, error) service function
// into an ActivityFunc suitable for ActivityDefinition.Handler, so the same
// function backs both Execute's in-workflow activity dispatch and its
// direct-call path.
func ActivityHandlerFor[Req, Resp any](svc func(context.Context, Req) (Resp, error)) ActivityFunc {
	return func(ctx context.Context, input any) (any, error) {
		req, ok := input.(Req)
		if !ok {
			return nil, fmt.Errorf("engine: activity input type mismatch: want %T, got %T", *new(Req), input)
		}
		return svc(ctx, req)
	}
}
