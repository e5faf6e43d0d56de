package secret

import (
	"context"

	"github.com/xiansai/agent-sdk-go/engine"
)

// Activity names for the secret vault, registered with the engine so
// ExecutingBackend's calls are replay-safe from inside a workflow, per
// spec.md §4.4.
const (
	ActivityCreate     = "secret.Create"
	ActivityFetchByKey = "secret.FetchByKey"
	ActivityList       = "secret.List"
	ActivityGetByID    = "secret.GetByID"
	ActivityUpdate     = "secret.Update"
	ActivityDelete     = "secret.Delete"
)

// ExecutingBackend wraps a Backend so every call runs through the
// Context-Aware Executor (spec.md §4.4): inside a workflow these become
// activity calls, outside they call backend directly.
type ExecutingBackend struct {
	backend Backend
}

// NewExecutingBackend wraps backend so its operations run through the executor.
func NewExecutingBackend(backend Backend) *ExecutingBackend {
	return &ExecutingBackend{backend: backend}
}

func (e *ExecutingBackend) create(ctx context.Context, req writeRequest) (Record, error) {
	return engine.Execute(ctx, ActivityCreate, req, e.backend.create)
}

func (e *ExecutingBackend) fetchByKey(ctx context.Context, req fetchRequest) (*FetchResult, error) {
	return engine.Execute(ctx, ActivityFetchByKey, req, e.backend.fetchByKey)
}

func (e *ExecutingBackend) list(ctx context.Context, req scopeRequest) ([]Record, error) {
	return engine.Execute(ctx, ActivityList, req, e.backend.list)
}

func (e *ExecutingBackend) getByID(ctx context.Context, req getByIDRequest) (*Record, error) {
	return engine.Execute(ctx, ActivityGetByID, req, e.backend.getByID)
}

func (e *ExecutingBackend) update(ctx context.Context, req updateRequest) (Record, error) {
	return engine.Execute(ctx, ActivityUpdate, req, e.backend.update)
}

func (e *ExecutingBackend) delete(ctx context.Context, req deleteRequest) (bool, error) {
	return engine.Execute(ctx, ActivityDelete, req, e.backend.delete)
}

// Activities returns the ActivityDefinitions the registry must register for
// backend to be reachable via ExecutingBackend from inside a workflow.
func Activities(backend Backend) []engine.ActivityDefinition {
	return []engine.ActivityDefinition{
		{Name: ActivityCreate, Handler: engine.ActivityHandlerFor(backend.create)},
		{Name: ActivityFetchByKey, Handler: engine.ActivityHandlerFor(backend.fetchByKey)},
		{Name: ActivityList, Handler: engine.ActivityHandlerFor(backend.list)},
		{Name: ActivityGetByID, Handler: engine.ActivityHandlerFor(backend.getByID)},
		{Name: ActivityUpdate, Handler: engine.ActivityHandlerFor(backend.update)},
		{Name: ActivityDelete, Handler: engine.ActivityHandlerFor(backend.delete)},
	}
}
