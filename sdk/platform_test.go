package sdk

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiansai/agent-sdk-go/config"
	"github.com/xiansai/agent-sdk-go/engine"
	"github.com/xiansai/agent-sdk-go/engine/inmem"
	"github.com/xiansai/agent-sdk-go/registry"
)

func testOptions() config.Options {
	return config.Options{
		ServerURL: "http://localhost:0",
		APIKey:    "opaque-test-key",
	}
}

func TestNewWithEngineAssemblesEverySubsystem(t *testing.T) {
	p, err := NewWithEngine(context.Background(), testOptions(), inmem.New())
	require.NoError(t, err)

	assert.NotNil(t, p.Transport)
	assert.NotNil(t, p.Cache)
	assert.NotNil(t, p.Settings)
	assert.NotNil(t, p.Engine)
	assert.NotNil(t, p.Knowledge)
	assert.NotNil(t, p.Documents)
	assert.NotNil(t, p.History)
	assert.NotNil(t, p.A2A)
	assert.NotNil(t, p.Usage)
	assert.NotNil(t, p.Secrets)
	assert.NotNil(t, p.Agents)
	assert.True(t, p.Identity.Opaque)
}

// TestNewWithEngineAllowsAgentRegistrationAndWorkflowStart exercises
// Agents.Register and Workflows.DefineBuiltIn's bookkeeping, then registers
// the resulting definition with the engine directly (bypassing
// Agents.RegisterAll, which would call the real server-backed uploader).
func TestNewWithEngineAllowsAgentRegistrationAndWorkflowStart(t *testing.T) {
	p, err := NewWithEngine(context.Background(), testOptions(), inmem.New())
	require.NoError(t, err)

	ag, err := p.Agents.Register(registry.AgentConfig{Name: "billing"})
	require.NoError(t, err)

	def := ag.Workflows.DefineBuiltIn("invoice-chat", func(wf engine.WorkflowContext, input any) (any, error) {
		return input, nil
	}, nil)
	require.Len(t, ag.Definitions(), 1)

	require.NoError(t, p.Engine.RegisterWorkflow(context.Background(), engine.WorkflowDefinition{
		Name:      def.WorkflowType,
		TaskQueue: def.TaskQueue(p.TenantID),
		Handler:   def.Handler,
	}))

	_, err = p.Engine.StartWorkflow(context.Background(), engine.WorkflowStartRequest{
		ID:        "tenant:billing:invoice-chat:run-1",
		Workflow:  def.WorkflowType,
		TaskQueue: def.TaskQueue(p.TenantID),
		Input:     "hello",
	})
	require.NoError(t, err)
}

func TestNewRejectsMissingServerURL(t *testing.T) {
	opts := testOptions()
	opts.ServerURL = ""
	_, err := NewWithEngine(context.Background(), opts, inmem.New())
	require.Error(t, err)
}
