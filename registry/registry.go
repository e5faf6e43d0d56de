// Package registry implements the Workflow Lifecycle & Registry surface
// (spec.md §4.8): agent registration, builtin/custom workflow definitions,
// upload idempotence against /api/agent/definitions, worker start, and
// recurring schedules.
package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/xiansai/agent-sdk-go/engine"
	"github.com/xiansai/agent-sdk-go/ident"
	"github.com/xiansai/agent-sdk-go/sdkerr"
	"github.com/xiansai/agent-sdk-go/task"
	"github.com/xiansai/agent-sdk-go/telemetry"
)

// AgentConfig describes an agent at registration time, per spec.md §3's
// Agent entity.
type AgentConfig struct {
	Name         string
	Description  string
	Version      string
	Author       string
	SystemScoped bool
	IsTemplate   bool
}

// Definition binds a workflow type to its handler and activation state, per
// spec.md §3's WorkflowDefinition entity.
type Definition struct {
	AgentName    string
	WorkflowType string
	DisplayName  string
	Kind         string // "builtin" or "custom"
	Activable    bool
	Workers      []string
	SystemScoped bool
	Description  string
	Handler      engine.WorkflowFunc
}

// TaskQueue derives this definition's routing queue, per spec.md §3.
func (d Definition) TaskQueue(tenantID string) string {
	return ident.TaskQueueName(d.WorkflowType, d.SystemScoped, tenantID)
}

// Agents is the platform-wide agent registration surface:
// platform.Agents.Register(cfg), per spec.md §4.8. One Agents instance is
// owned by a single Platform.
type Agents struct {
	eng      engine.Engine
	uploader Uploader
	logger   telemetry.Logger
	extra    []engine.ActivityDefinition
	tenantID string

	mu     sync.Mutex
	byName map[string]*Agent // keyed by registration key (see nameKey)
	all    []*Agent
}

// NewAgents constructs the agent registration surface. extraActivities are
// the SDK-owned activity sets (knowledge.Activities, documents.Activities,
// messaging.Activities, metrics.Activities, secret.Activities) that must be
// reachable from inside every agent's workflows, per spec.md §4.4/§4.8.
func NewAgents(eng engine.Engine, uploader Uploader, logger telemetry.Logger, tenantID string, extraActivities ...[]engine.ActivityDefinition) *Agents {
	var extra []engine.ActivityDefinition
	for _, set := range extraActivities {
		extra = append(extra, set...)
	}
	return &Agents{
		eng:      eng,
		uploader: uploader,
		logger:   logger,
		extra:    extra,
		tenantID: tenantID,
		byName:   make(map[string]*Agent),
	}
}

func nameKey(tenantID, name string, systemScoped bool) string {
	if systemScoped {
		return "system:" + name
	}
	return tenantID + ":" + name
}

// Register adds cfg as a new agent, per spec.md §4.8 ("duplicate name
// within a tenant is rejected"). System-scoped agents are unique across the
// whole platform rather than per tenant.
func (a *Agents) Register(cfg AgentConfig) (*Agent, error) {
	if cfg.Name == "" {
		return nil, sdkerr.Validationf("registry.Register", "agent name is required")
	}
	key := nameKey(a.tenantID, cfg.Name, cfg.SystemScoped)

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.byName[key]; exists {
		return nil, sdkerr.Newf(sdkerr.Conflict, "registry.Register", "agent %q is already registered", cfg.Name)
	}

	ag := &Agent{
		cfg:      cfg,
		tenantID: a.tenantID,
		agents:   a,
	}
	ag.Workflows = &WorkflowRegistry{agent: ag}
	ag.Schedules = &Schedules{agent: ag}

	// Every agent can spawn HITL task child workflows, per spec.md §4.7;
	// the task workflow itself is registered once here rather than per
	// custom/builtin definition.
	if err := a.eng.RegisterWorkflow(context.Background(), engine.WorkflowDefinition{
		Name:      task.WorkflowType(cfg.Name),
		TaskQueue: ident.TaskQueueName(task.WorkflowType(cfg.Name), cfg.SystemScoped, a.tenantID),
		Handler:   task.Workflow,
	}); err != nil {
		return nil, fmt.Errorf("registry: register task workflow for %q: %w", cfg.Name, err)
	}

	a.byName[key] = ag
	a.all = append(a.all, ag)
	return ag, nil
}

// Agent is the per-agent facade: Workflows and Schedules, per spec.md §4.8
// ("agent.workflows.defineBuiltIn(...)", "agent.schedules.create<T>(...)").
type Agent struct {
	cfg      AgentConfig
	tenantID string
	agents   *Agents

	Workflows *WorkflowRegistry
	Schedules *Schedules

	mu          sync.Mutex
	definitions []*Definition
}

// Name returns the agent's registered name.
func (ag *Agent) Name() string { return ag.cfg.Name }
