package messaging

import (
	"context"

	"github.com/xiansai/agent-sdk-go/engine"
)

// Activity names for the history store, registered with the engine so
// ExecutingHistoryStore's calls are replay-safe from inside a workflow, per
// spec.md §4.4.
const (
	ActivityHistoryAppend = "messaging.history.Append"
	ActivityHistoryList   = "messaging.history.List"
)

type historyListRequest struct {
	Agent, WorkflowType, ThreadID, Scope string
	Page, PageSize                       int
}

// ExecutingHistoryStore wraps a HistoryStore so every call runs through
// eng's Context-Aware Executor (spec.md §4.4): inside a workflow these
// become activity calls, outside they call backend directly.
type ExecutingHistoryStore struct {
	backend HistoryStore
}

// NewExecutingHistoryStore wraps backend so its operations run through eng.
func NewExecutingHistoryStore(backend HistoryStore) *ExecutingHistoryStore {
	return &ExecutingHistoryStore{backend: backend}
}

func (s *ExecutingHistoryStore) Append(ctx context.Context, msg StoredMessage) error {
	_, err := engine.Execute(ctx, ActivityHistoryAppend, msg, func(ctx context.Context, m StoredMessage) (struct{}, error) {
		return struct{}{}, s.backend.Append(ctx, m)
	})
	return err
}

func (s *ExecutingHistoryStore) List(ctx context.Context, agent, workflowType, threadID, scope string, page, pageSize int) ([]StoredMessage, error) {
	req := historyListRequest{Agent: agent, WorkflowType: workflowType, ThreadID: threadID, Scope: scope, Page: page, PageSize: pageSize}
	return engine.Execute(ctx, ActivityHistoryList, req, func(ctx context.Context, r historyListRequest) ([]StoredMessage, error) {
		return s.backend.List(ctx, r.Agent, r.WorkflowType, r.ThreadID, r.Scope, r.Page, r.PageSize)
	})
}

// Activities returns the ActivityDefinitions the registry must register for
// backend to be reachable via ExecutingHistoryStore from inside a workflow.
func Activities(backend HistoryStore) []engine.ActivityDefinition {
	return []engine.ActivityDefinition{
		{Name: ActivityHistoryAppend, Handler: engine.ActivityHandlerFor(func(ctx context.Context, m StoredMessage) (struct{}, error) {
			return struct{}{}, backend.Append(ctx, m)
		})},
		{Name: ActivityHistoryList, Handler: engine.ActivityHandlerFor(func(ctx context.Context, r historyListRequest) ([]StoredMessage, error) {
			return backend.List(ctx, r.Agent, r.WorkflowType, r.ThreadID, r.Scope, r.Page, r.PageSize)
		})},
	}
}
