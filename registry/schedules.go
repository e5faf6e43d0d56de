package registry

import (
	"context"
	"time"

	"github.com/xiansai/agent-sdk-go/engine"
	"github.com/xiansai/agent-sdk-go/ident"
)

// Schedules is the per-agent recurring-start builder surface, per spec.md
// §4.8 ("agent.schedules.create<T>(id).withIntervalSchedule(d)
// .withInput(args).createIfNotExistsAsync()").
type Schedules struct {
	agent *Agent
}

// Create starts a schedule builder for id against workflowType, typically
// one of this agent's own Workflows definitions. T in the spec's
// "create<T>(id)" names the schedule's input payload shape, carried here as
// the untyped Input field supplied via WithInput.
func (s *Schedules) Create(id, workflowType string) *ScheduleBuilder {
	return &ScheduleBuilder{
		agent:        s.agent,
		id:           id,
		workflowType: workflowType,
	}
}

// ScheduleBuilder accumulates a schedule's interval and input before
// CreateIfNotExistsAsync registers it with the engine.
type ScheduleBuilder struct {
	agent        *Agent
	id           string
	workflowType string
	interval     time.Duration
	input        any
	systemScoped bool
}

// WithIntervalSchedule sets the recurrence interval.
func (b *ScheduleBuilder) WithIntervalSchedule(d time.Duration) *ScheduleBuilder {
	b.interval = d
	return b
}

// WithInput sets the payload passed to each scheduled workflow start.
func (b *ScheduleBuilder) WithInput(input any) *ScheduleBuilder {
	b.input = input
	return b
}

// CreateIfNotExistsAsync registers the schedule, a no-op if a schedule with
// this id already exists, per spec.md §4.8.
func (b *ScheduleBuilder) CreateIfNotExistsAsync(ctx context.Context) error {
	tenantID := b.agent.tenantID
	systemScoped := b.systemScoped || b.agent.cfg.SystemScoped
	req := engine.WorkflowStartRequest{
		Workflow:  b.workflowType,
		TaskQueue: ident.TaskQueueName(b.workflowType, systemScoped, tenantID),
		Input:     b.input,
	}
	return b.agent.agents.eng.CreateScheduleIfNotExists(ctx, b.id, b.interval, req)
}
