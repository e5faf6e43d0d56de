package inmem

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiansai/agent-sdk-go/engine"
)

func registerEcho(t *testing.T, e *Engine, name string) {
	t.Helper()
	require.NoError(t, e.RegisterWorkflow(context.Background(), engine.WorkflowDefinition{
		Name: name,
		Handler: func(wf engine.WorkflowContext, input any) (any, error) {
			ch := wf.SignalChannel("done")
			var v any
			_ = ch.Receive(wf.Context(), &v)
			return input, nil
		},
	}))
}

func TestStartOrGetWorkflowReturnsExistingHandleWhileRunning(t *testing.T) {
	e := New()
	registerEcho(t, e, "echo")
	ctx := context.Background()

	req := engine.WorkflowStartRequest{ID: "singleton-1", Workflow: "echo", Input: "first"}
	first, err := e.StartOrGetWorkflow(ctx, req)
	require.NoError(t, err)

	second, err := e.StartOrGetWorkflow(ctx, engine.WorkflowStartRequest{ID: "singleton-1", Workflow: "echo", Input: "second"})
	require.NoError(t, err)

	assert.Same(t, first, second, "expected the same handle while the first execution is still running")

	require.NoError(t, first.Signal(ctx, "done", nil))
	var out string
	require.NoError(t, first.Wait(ctx, &out))
	assert.Equal(t, "first", out, "the original execution's input should win, not the second call's")
}

func TestStartOrGetWorkflowStartsFreshAfterCompletion(t *testing.T) {
	e := New()
	registerEcho(t, e, "echo")
	ctx := context.Background()

	req := engine.WorkflowStartRequest{ID: "singleton-2", Workflow: "echo", Input: "first"}
	first, err := e.StartOrGetWorkflow(ctx, req)
	require.NoError(t, err)
	require.NoError(t, first.Signal(ctx, "done", nil))
	require.NoError(t, first.Wait(ctx, nil))

	second, err := e.StartOrGetWorkflow(ctx, engine.WorkflowStartRequest{ID: "singleton-2", Workflow: "echo", Input: "second"})
	require.NoError(t, err)
	assert.NotSame(t, first, second, "a completed execution must not be reused")

	require.NoError(t, second.Signal(ctx, "done", nil))
	var out string
	require.NoError(t, second.Wait(ctx, &out))
	assert.Equal(t, "second", out)
}

func TestStartOrGetWorkflowWithoutIDAlwaysStartsFresh(t *testing.T) {
	e := New()
	registerEcho(t, e, "echo")
	ctx := context.Background()

	first, err := e.StartOrGetWorkflow(ctx, engine.WorkflowStartRequest{Workflow: "echo", Input: "a"})
	require.NoError(t, err)
	second, err := e.StartOrGetWorkflow(ctx, engine.WorkflowStartRequest{Workflow: "echo", Input: "b"})
	require.NoError(t, err)
	assert.NotSame(t, first, second)

	require.NoError(t, first.Signal(ctx, "done", nil))
	require.NoError(t, second.Signal(ctx, "done", nil))
	require.NoError(t, first.Wait(ctx, nil))
	require.NoError(t, second.Wait(ctx, nil))
}

func TestStartWorkflowUnregisteredNameErrors(t *testing.T) {
	e := New()
	_, err := e.StartWorkflow(context.Background(), engine.WorkflowStartRequest{Workflow: "missing"})
	assert.Error(t, err)
}

func TestGetHandleUnknownIDErrors(t *testing.T) {
	e := New()
	_, err := e.GetHandle(context.Background(), "nope")
	assert.Error(t, err)
}

func TestTerminateCompletedExecutionIsNoop(t *testing.T) {
	e := New()
	registerEcho(t, e, "echo")
	ctx := context.Background()

	h, err := e.StartWorkflow(ctx, engine.WorkflowStartRequest{ID: "term-1", Workflow: "echo"})
	require.NoError(t, err)
	require.NoError(t, h.Signal(ctx, "done", nil))
	require.NoError(t, h.Wait(ctx, nil))

	require.NoError(t, e.Terminate(ctx, "term-1", "cleanup"))

	desc, err := e.Describe(ctx, "term-1")
	require.NoError(t, err)
	assert.Equal(t, "Completed", desc.Status)
}

func TestTerminateRunningExecutionFailsWait(t *testing.T) {
	e := New()
	registerEcho(t, e, "echo")
	ctx := context.Background()

	h, err := e.StartWorkflow(ctx, engine.WorkflowStartRequest{ID: "term-2", Workflow: "echo"})
	require.NoError(t, err)
	require.NoError(t, e.Terminate(ctx, "term-2", "shutdown"))

	err = h.Wait(ctx, nil)
	assert.Error(t, err)

	desc, err := e.Describe(ctx, "term-2")
	require.NoError(t, err)
	assert.Equal(t, "Failed", desc.Status)
}

func TestCreateScheduleIfNotExistsIsIdempotent(t *testing.T) {
	e := New()
	registerEcho(t, e, "echo")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := engine.WorkflowStartRequest{Workflow: "echo"}
	require.NoError(t, e.CreateScheduleIfNotExists(ctx, "sched-1", time.Hour, req))
	require.NoError(t, e.CreateScheduleIfNotExists(ctx, "sched-1", time.Minute, req))

	schedules, err := e.ListSchedules(ctx)
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Equal(t, time.Hour, schedules[0].Interval, "second call must not overwrite the first registration")
}

func TestDeleteScheduleRemovesIt(t *testing.T) {
	e := New()
	registerEcho(t, e, "echo")
	ctx := context.Background()

	require.NoError(t, e.CreateScheduleIfNotExists(ctx, "sched-2", time.Hour, engine.WorkflowStartRequest{Workflow: "echo"}))
	require.NoError(t, e.DeleteSchedule(ctx, "sched-2"))

	schedules, err := e.ListSchedules(ctx)
	require.NoError(t, err)
	assert.Empty(t, schedules)

	assert.NoError(t, e.DeleteSchedule(ctx, "sched-2"), "deleting a missing schedule is a no-op")
}
