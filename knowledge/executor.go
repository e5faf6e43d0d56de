package knowledge

import (
	"context"

	"github.com/xiansai/agent-sdk-go/engine"
)

// Activity names for the knowledge provider, registered with the engine so
// that ExecutingProvider's calls are replay-safe from inside a workflow, per
// spec.md §4.4 and §4.8 (registry wires these into the worker at startup).
const (
	ActivityGet    = "knowledge.Get"
	ActivityUpdate = "knowledge.Update"
	ActivityDelete = "knowledge.Delete"
	ActivityList   = "knowledge.List"
)

type getRequest struct {
	Name, Agent, Tenant, Activation string
}

type updateRequest struct {
	Name, Content, Type, Agent, Tenant string
	SystemScoped                       bool
	Activation                         string
}

type deleteRequest struct {
	Name, Agent, Tenant, Activation string
}

type listRequest struct {
	Agent, Tenant, Activation string
}

// ExecutingProvider wraps a backend Provider (ServerProvider or
// LocalProvider) so every call is routed through engine.Execute, per
// spec.md §4.4: inside a workflow these become activity calls, outside they
// call the backend directly. It sits beneath CachedProvider in the stack
// assembled by the sdk Platform facade.
type ExecutingProvider struct {
	backend Provider
}

// NewExecutingProvider wraps backend so its operations run through eng's
// Context-Aware Executor.
func NewExecutingProvider(backend Provider) *ExecutingProvider {
	return &ExecutingProvider{backend: backend}
}

func (p *ExecutingProvider) Get(ctx context.Context, name, agent, tenant, activation string) (*Item, error) {
	return engine.Execute(ctx, ActivityGet, getRequest{Name: name, Agent: agent, Tenant: tenant, Activation: activation}, func(ctx context.Context, r getRequest) (*Item, error) {
		return p.backend.Get(ctx, r.Name, r.Agent, r.Tenant, r.Activation)
	})
}

func (p *ExecutingProvider) GetSystem(ctx context.Context, name, agent, activation string) (*Item, error) {
	return p.Get(ctx, name, agent, "", activation)
}

func (p *ExecutingProvider) Update(ctx context.Context, name, content, typ, agent, tenant string, systemScoped bool, activation string) error {
	_, err := engine.Execute(ctx, ActivityUpdate, updateRequest{
		Name: name, Content: content, Type: typ, Agent: agent, Tenant: tenant,
		SystemScoped: systemScoped, Activation: activation,
	}, func(ctx context.Context, r updateRequest) (struct{}, error) {
		return struct{}{}, p.backend.Update(ctx, r.Name, r.Content, r.Type, r.Agent, r.Tenant, r.SystemScoped, r.Activation)
	})
	return err
}

func (p *ExecutingProvider) Delete(ctx context.Context, name, agent, tenant, activation string) error {
	_, err := engine.Execute(ctx, ActivityDelete, deleteRequest{Name: name, Agent: agent, Tenant: tenant, Activation: activation}, func(ctx context.Context, r deleteRequest) (struct{}, error) {
		return struct{}{}, p.backend.Delete(ctx, r.Name, r.Agent, r.Tenant, r.Activation)
	})
	return err
}

func (p *ExecutingProvider) List(ctx context.Context, agent, tenant, activation string) ([]Item, error) {
	return engine.Execute(ctx, ActivityList, listRequest{Agent: agent, Tenant: tenant, Activation: activation}, func(ctx context.Context, r listRequest) ([]Item, error) {
		return p.backend.List(ctx, r.Agent, r.Tenant, r.Activation)
	})
}

// Activities returns the ActivityDefinitions the registry must register for
// backend to be reachable via ExecutingProvider from inside a workflow.
func Activities(backend Provider) []engine.ActivityDefinition {
	return []engine.ActivityDefinition{
		{Name: ActivityGet, Handler: engine.ActivityHandlerFor(func(ctx context.Context, r getRequest) (*Item, error) {
			return backend.Get(ctx, r.Name, r.Agent, r.Tenant, r.Activation)
		})},
		{Name: ActivityUpdate, Handler: engine.ActivityHandlerFor(func(ctx context.Context, r updateRequest) (struct{}, error) {
			return struct{}{}, backend.Update(ctx, r.Name, r.Content, r.Type, r.Agent, r.Tenant, r.SystemScoped, r.Activation)
		})},
		{Name: ActivityDelete, Handler: engine.ActivityHandlerFor(func(ctx context.Context, r deleteRequest) (struct{}, error) {
			return struct{}{}, backend.Delete(ctx, r.Name, r.Agent, r.Tenant, r.Activation)
		})},
		{Name: ActivityList, Handler: engine.ActivityHandlerFor(func(ctx context.Context, r listRequest) ([]Item, error) {
			return backend.List(ctx, r.Agent, r.Tenant, r.Activation)
		})},
	}
}
