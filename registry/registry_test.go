package registry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiansai/agent-sdk-go/engine"
	"github.com/xiansai/agent-sdk-go/engine/inmem"
)

// fakeUploader records every EnsureUploaded call, counting calls per
// workflowType so tests can assert idempotence.
type fakeUploader struct {
	mu    sync.Mutex
	calls map[string]int
}

func newFakeUploader() *fakeUploader { return &fakeUploader{calls: map[string]int{}} }

func (f *fakeUploader) EnsureUploaded(_ context.Context, _ string, def *Definition) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[def.WorkflowType]++
	return nil
}

func noopWorkflow(ctx engine.WorkflowContext, input any) (any, error) {
	return input, nil
}

func TestAgentsRegisterRejectsDuplicateName(t *testing.T) {
	agents := NewAgents(inmem.New(), newFakeUploader(), nil, "tenant-1")

	_, err := agents.Register(AgentConfig{Name: "billing"})
	require.NoError(t, err)

	_, err = agents.Register(AgentConfig{Name: "billing"})
	require.Error(t, err)
}

func TestAgentsRegisterAllowsSameNameAcrossTenants(t *testing.T) {
	a1 := NewAgents(inmem.New(), newFakeUploader(), nil, "tenant-1")
	a2 := NewAgents(inmem.New(), newFakeUploader(), nil, "tenant-2")

	_, err := a1.Register(AgentConfig{Name: "billing"})
	require.NoError(t, err)
	_, err = a2.Register(AgentConfig{Name: "billing"})
	require.NoError(t, err)
}

func TestWorkflowTypeFormatsAgentAndDisplayName(t *testing.T) {
	agents := NewAgents(inmem.New(), newFakeUploader(), nil, "tenant-1")
	ag, err := agents.Register(AgentConfig{Name: "billing"})
	require.NoError(t, err)

	def := ag.Workflows.DefineBuiltIn("invoice-chat", noopWorkflow, []string{"worker-a"})
	assert.Equal(t, "billing:invoice-chat", def.WorkflowType)
	assert.True(t, def.Activable)
}

func TestDefineCustomDefaultsActivableTrue(t *testing.T) {
	agents := NewAgents(inmem.New(), newFakeUploader(), nil, "tenant-1")
	ag, err := agents.Register(AgentConfig{Name: "billing"})
	require.NoError(t, err)

	def := ag.Workflows.DefineCustom("reconcile", noopWorkflow, Options{})
	assert.True(t, def.Activable)
	assert.Equal(t, "custom", def.Kind)
}

func TestDefineCustomCanDeactivate(t *testing.T) {
	agents := NewAgents(inmem.New(), newFakeUploader(), nil, "tenant-1")
	ag, err := agents.Register(AgentConfig{Name: "billing"})
	require.NoError(t, err)

	inactive := false
	def := ag.Workflows.DefineCustom("reconcile", noopWorkflow, Options{Activable: &inactive})
	assert.False(t, def.Activable)
}

func TestRegisterAllUploadsOnlyActivableDefinitions(t *testing.T) {
	uploader := newFakeUploader()
	agents := NewAgents(inmem.New(), uploader, nil, "tenant-1")
	ag, err := agents.Register(AgentConfig{Name: "billing"})
	require.NoError(t, err)

	ag.Workflows.DefineBuiltIn("invoice-chat", noopWorkflow, nil)
	inactive := false
	ag.Workflows.DefineCustom("dormant", noopWorkflow, Options{Activable: &inactive})

	require.NoError(t, agents.RegisterAll(context.Background()))

	uploader.mu.Lock()
	defer uploader.mu.Unlock()
	assert.Equal(t, 1, uploader.calls["billing:invoice-chat"])
	assert.Equal(t, 0, uploader.calls["billing:dormant"])
}

func TestRunAllAsyncStopsOnCancel(t *testing.T) {
	agents := NewAgents(inmem.New(), newFakeUploader(), nil, "tenant-1")
	_, err := agents.Register(AgentConfig{Name: "billing"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- agents.RunAllAsync(ctx) }()
	cancel()
	err = <-done
	require.Error(t, err) // ctx.Err() surfaces once cancelled
}
