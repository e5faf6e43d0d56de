package documents

import (
	"context"

	"github.com/xiansai/agent-sdk-go/engine"
)

// Activity names for the document store, registered with the engine so
// ExecutingStore's calls are replay-safe from inside a workflow, per
// spec.md §4.4.
const (
	ActivitySave       = "documents.Save"
	ActivityGet        = "documents.Get"
	ActivityGetByKey   = "documents.GetByKey"
	ActivityQuery      = "documents.Query"
	ActivityUpdate     = "documents.Update"
	ActivityDelete     = "documents.Delete"
	ActivityDeleteMany = "documents.DeleteMany"
	ActivityExists     = "documents.Exists"
)

// Backend is the capability set Store satisfies, factored out so
// ExecutingStore and Activities can be built against either a transport-backed
// Store or a test double.
type Backend interface {
	Save(ctx context.Context, tenant string, rec Record) (Record, error)
	Get(ctx context.Context, tenant, id string) (*Record, error)
	GetByKey(ctx context.Context, tenant, collection, key string) (*Record, error)
	Query(ctx context.Context, tenant string, q Query) ([]Record, error)
	Update(ctx context.Context, tenant string, rec Record) (Record, error)
	Delete(ctx context.Context, tenant, id string) error
	DeleteMany(ctx context.Context, tenant string, ids []string) (int, error)
	Exists(ctx context.Context, tenant, collection, key string) (bool, error)
}

type saveRequest struct {
	Tenant string
	Rec    Record
}

type getRequest struct {
	Tenant, ID string
}

type getByKeyRequest struct {
	Tenant, Collection, Key string
}

type queryRequest struct {
	Tenant string
	Query  Query
}

type deleteRequest struct {
	Tenant, ID string
}

type deleteManyRequest struct {
	Tenant string
	IDs    []string
}

type existsRequest struct {
	Tenant, Collection, Key string
}

// ExecutingStore wraps a Backend so every call runs through eng's
// Context-Aware Executor (spec.md §4.4): inside a workflow these become
// activity calls, outside they call backend directly.
type ExecutingStore struct {
	backend Backend
}

// NewExecutingStore wraps backend so its operations run through eng.
func NewExecutingStore(backend Backend) *ExecutingStore {
	return &ExecutingStore{backend: backend}
}

func (s *ExecutingStore) Save(ctx context.Context, tenant string, rec Record) (Record, error) {
	return engine.Execute(ctx, ActivitySave, saveRequest{Tenant: tenant, Rec: rec}, func(ctx context.Context, r saveRequest) (Record, error) {
		return s.backend.Save(ctx, r.Tenant, r.Rec)
	})
}

func (s *ExecutingStore) Get(ctx context.Context, tenant, id string) (*Record, error) {
	return engine.Execute(ctx, ActivityGet, getRequest{Tenant: tenant, ID: id}, func(ctx context.Context, r getRequest) (*Record, error) {
		return s.backend.Get(ctx, r.Tenant, r.ID)
	})
}

func (s *ExecutingStore) GetByKey(ctx context.Context, tenant, collection, key string) (*Record, error) {
	return engine.Execute(ctx, ActivityGetByKey, getByKeyRequest{Tenant: tenant, Collection: collection, Key: key}, func(ctx context.Context, r getByKeyRequest) (*Record, error) {
		return s.backend.GetByKey(ctx, r.Tenant, r.Collection, r.Key)
	})
}

func (s *ExecutingStore) Query(ctx context.Context, tenant string, q Query) ([]Record, error) {
	return engine.Execute(ctx, ActivityQuery, queryRequest{Tenant: tenant, Query: q}, func(ctx context.Context, r queryRequest) ([]Record, error) {
		return s.backend.Query(ctx, r.Tenant, r.Query)
	})
}

func (s *ExecutingStore) Update(ctx context.Context, tenant string, rec Record) (Record, error) {
	return engine.Execute(ctx, ActivityUpdate, saveRequest{Tenant: tenant, Rec: rec}, func(ctx context.Context, r saveRequest) (Record, error) {
		return s.backend.Update(ctx, r.Tenant, r.Rec)
	})
}

func (s *ExecutingStore) Delete(ctx context.Context, tenant, id string) error {
	_, err := engine.Execute(ctx, ActivityDelete, deleteRequest{Tenant: tenant, ID: id}, func(ctx context.Context, r deleteRequest) (struct{}, error) {
		return struct{}{}, s.backend.Delete(ctx, r.Tenant, r.ID)
	})
	return err
}

func (s *ExecutingStore) DeleteMany(ctx context.Context, tenant string, ids []string) (int, error) {
	return engine.Execute(ctx, ActivityDeleteMany, deleteManyRequest{Tenant: tenant, IDs: ids}, func(ctx context.Context, r deleteManyRequest) (int, error) {
		return s.backend.DeleteMany(ctx, r.Tenant, r.IDs)
	})
}

func (s *ExecutingStore) Exists(ctx context.Context, tenant, collection, key string) (bool, error) {
	return engine.Execute(ctx, ActivityExists, existsRequest{Tenant: tenant, Collection: collection, Key: key}, func(ctx context.Context, r existsRequest) (bool, error) {
		return s.backend.Exists(ctx, r.Tenant, r.Collection, r.Key)
	})
}

// Activities returns the ActivityDefinitions the registry must register for
// backend to be reachable via ExecutingStore from inside a workflow.
func Activities(backend Backend) []engine.ActivityDefinition {
	return []engine.ActivityDefinition{
		{Name: ActivitySave, Handler: engine.ActivityHandlerFor(func(ctx context.Context, r saveRequest) (Record, error) {
			return backend.Save(ctx, r.Tenant, r.Rec)
		})},
		{Name: ActivityGet, Handler: engine.ActivityHandlerFor(func(ctx context.Context, r getRequest) (*Record, error) {
			return backend.Get(ctx, r.Tenant, r.ID)
		})},
		{Name: ActivityGetByKey, Handler: engine.ActivityHandlerFor(func(ctx context.Context, r getByKeyRequest) (*Record, error) {
			return backend.GetByKey(ctx, r.Tenant, r.Collection, r.Key)
		})},
		{Name: ActivityQuery, Handler: engine.ActivityHandlerFor(func(ctx context.Context, r queryRequest) ([]Record, error) {
			return backend.Query(ctx, r.Tenant, r.Query)
		})},
		{Name: ActivityUpdate, Handler: engine.ActivityHandlerFor(func(ctx context.Context, r saveRequest) (Record, error) {
			return backend.Update(ctx, r.Tenant, r.Rec)
		})},
		{Name: ActivityDelete, Handler: engine.ActivityHandlerFor(func(ctx context.Context, r deleteRequest) (struct{}, error) {
			return struct{}{}, backend.Delete(ctx, r.Tenant, r.ID)
		})},
		{Name: ActivityDeleteMany, Handler: engine.ActivityHandlerFor(func(ctx context.Context, r deleteManyRequest) (int, error) {
			return backend.DeleteMany(ctx, r.Tenant, r.IDs)
		})},
		{Name: ActivityExists, Handler: engine.ActivityHandlerFor(func(ctx context.Context, r existsRequest) (bool, error) {
			return backend.Exists(ctx, r.Tenant, r.Collection, r.Key)
		})},
	}
}
