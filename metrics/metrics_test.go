package metrics_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiansai/agent-sdk-go/messaging"
	"github.com/xiansai/agent-sdk-go/metrics"
)

type recordingBackend struct {
	events []metrics.UsageEvent
}

func (b *recordingBackend) Report(_ context.Context, ev metrics.UsageEvent) error {
	b.events = append(b.events, ev)
	return nil
}

func TestBuilderStandaloneExplicitFields(t *testing.T) {
	backend := &recordingBackend{}
	svc := metrics.NewService(backend, nil)

	svc.New(context.Background()).
		TenantID("tenant-1").
		WorkflowID("tenant-1:OrderAgent:abc").
		WorkflowType("OrderAgent").
		AgentName("orders").
		AddMetric("llm", "tokens", 128, "count").
		ReportAsync()

	require.Len(t, backend.events, 1)
	ev := backend.events[0]
	assert.Equal(t, "tenant-1", ev.TenantID)
	assert.Equal(t, "tenant-1:OrderAgent:abc", ev.WorkflowID)
	assert.Equal(t, "orders", ev.AgentName)
	require.Len(t, ev.Metrics, 1)
	assert.Equal(t, float64(128), ev.Metrics[0].Value)
}

func TestBuilderFromMessageContextResolvesTenantFromWorkflowID(t *testing.T) {
	backend := &recordingBackend{}
	svc := metrics.NewService(backend, nil)

	msg := messaging.InboundMessage{
		Payload: messaging.Payload{
			Agent:         "orders",
			ParticipantID: "user-1",
			RequestID:     "req-1",
			Type:          messaging.TypeChat,
			Text:          "hi",
		},
		SourceWorkflowType: "OrderAgent",
	}
	mc := messaging.NewUserMessageContext(context.Background(), nil, msg, nil, nil)

	svc.FromMessageContext(mc).AddMetric("llm", "tokens", 10, "count").ReportAsync()

	require.Len(t, backend.events, 1)
	ev := backend.events[0]
	assert.Equal(t, "user-1", ev.ParticipantID)
	assert.Equal(t, "orders", ev.AgentName)
	assert.Equal(t, "req-1", ev.RequestID)
	assert.Equal(t, "OrderAgent", ev.WorkflowType)
	// No workflow context was supplied, so WorkflowID and the tenant derived
	// from it are both empty.
	assert.Empty(t, ev.WorkflowID)
	assert.Empty(t, ev.TenantID)
}

func TestBuilderFromMessageContextPrefersA2ATarget(t *testing.T) {
	backend := &recordingBackend{}
	svc := metrics.NewService(backend, nil)

	msg := messaging.InboundMessage{
		Payload:            messaging.Payload{Agent: "orders", Type: messaging.TypeChat},
		SourceWorkflowType: "OrderAgent",
	}
	mc := messaging.NewUserMessageContext(context.Background(), nil, msg, nil, nil)
	mc.A2A = &messaging.A2ATarget{
		TargetWorkflowID:   "tenant-9:Web:xyz",
		TargetWorkflowType: "Web",
	}

	svc.FromMessageContext(mc).ReportAsync()

	require.Len(t, backend.events, 1)
	ev := backend.events[0]
	assert.Equal(t, "tenant-9:Web:xyz", ev.WorkflowID)
	assert.Equal(t, "Web", ev.WorkflowType)
	assert.Equal(t, "tenant-9", ev.TenantID)
}
