package registry

import (
	"github.com/xiansai/agent-sdk-go/engine"
	"github.com/xiansai/agent-sdk-go/ident"
)

// WorkflowRegistry is the per-agent workflow-definition builder, per
// spec.md §4.8 ("agent.workflows.defineBuiltIn(name, workers)",
// "defineCustom(T, options)").
type WorkflowRegistry struct {
	agent *Agent
}

// Options configures a custom workflow definition.
type Options struct {
	// Activable controls whether a worker is started for this definition,
	// per spec.md §4.8. Defaults to true.
	Activable *bool
	Workers   []string
	// Description is carried in the upload payload for operator visibility.
	Description string
	// SystemScoped overrides the owning agent's scope for this one
	// definition. Defaults to the agent's own SystemScoped flag.
	SystemScoped *bool
}

func (o Options) activable() bool {
	if o.Activable == nil {
		return true
	}
	return *o.Activable
}

func (o Options) systemScoped(agentDefault bool) bool {
	if o.SystemScoped == nil {
		return agentDefault
	}
	return *o.SystemScoped
}

// DefineBuiltIn registers one of the SDK's own predefined workflow kinds
// (e.g. a chat or batch agent loop) under displayName, per spec.md §4.8.
// Builtin definitions are always activable.
func (wr *WorkflowRegistry) DefineBuiltIn(displayName string, handler engine.WorkflowFunc, workers []string) *Definition {
	def := &Definition{
		AgentName:    wr.agent.cfg.Name,
		WorkflowType: ident.WorkflowType(wr.agent.cfg.Name, displayName),
		DisplayName:  displayName,
		Kind:         "builtin",
		Activable:    true,
		Workers:      workers,
		SystemScoped: wr.agent.cfg.SystemScoped,
		Handler:      handler,
	}
	wr.agent.addDefinition(def)
	return def
}

// DefineCustom registers a user-authored workflow under displayName with
// handler as its entry point, per spec.md §4.8. T in the spec's
// "defineCustom(T, options)" names the workflow's input/output shape;
// handler closes over that typing via engine.WorkflowFunc's any-typed input.
func (wr *WorkflowRegistry) DefineCustom(displayName string, handler engine.WorkflowFunc, opts Options) *Definition {
	def := &Definition{
		AgentName:    wr.agent.cfg.Name,
		WorkflowType: ident.WorkflowType(wr.agent.cfg.Name, displayName),
		DisplayName:  displayName,
		Kind:         "custom",
		Activable:    opts.activable(),
		Workers:      opts.Workers,
		SystemScoped: opts.systemScoped(wr.agent.cfg.SystemScoped),
		Description:  opts.Description,
		Handler:      handler,
	}
	wr.agent.addDefinition(def)
	return def
}

func (ag *Agent) addDefinition(def *Definition) {
	ag.mu.Lock()
	defer ag.mu.Unlock()
	ag.definitions = append(ag.definitions, def)
}

// Definitions returns every workflow definition registered on this agent.
func (ag *Agent) Definitions() []*Definition {
	ag.mu.Lock()
	defer ag.mu.Unlock()
	out := make([]*Definition, len(ag.definitions))
	copy(out, ag.definitions)
	return out
}
