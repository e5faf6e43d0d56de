package messaging

import (
	"context"
	"sort"
	"sync"
)

// InmemHistoryStore is an in-memory HistoryStore implementation intended for
// tests, local-mode agents, and the embedded-resource knowledge path. Safe
// for concurrent use.
type InmemHistoryStore struct {
	mu       sync.RWMutex
	byThread map[string][]StoredMessage
}

// NewInmemHistoryStore returns an empty InmemHistoryStore.
func NewInmemHistoryStore() *InmemHistoryStore {
	return &InmemHistoryStore{byThread: make(map[string][]StoredMessage)}
}

func threadKey(agent, workflowType, threadID, scope string) string {
	return agent + "|" + workflowType + "|" + threadID + "|" + scope
}

// Append implements HistoryStore.
func (s *InmemHistoryStore) Append(_ context.Context, msg StoredMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := threadKey(msg.Agent, msg.WorkflowType, msg.ThreadID, msg.Scope)
	s.byThread[key] = append(s.byThread[key], msg)
	return nil
}

// List implements HistoryStore, returning up to pageSize messages newest
// first starting at the given 1-indexed page.
func (s *InmemHistoryStore) List(_ context.Context, agent, workflowType, threadID, scope string, page, pageSize int) ([]StoredMessage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	key := threadKey(agent, workflowType, threadID, scope)
	all := s.byThread[key]

	// Newest first: reverse a copy so the live slice never mutates under lock.
	newestFirst := make([]StoredMessage, len(all))
	for i, m := range all {
		newestFirst[len(all)-1-i] = m
	}
	sort.SliceStable(newestFirst, func(i, j int) bool {
		return newestFirst[i].CreatedAt.After(newestFirst[j].CreatedAt)
	})

	start := (page - 1) * pageSize
	if start >= len(newestFirst) {
		return nil, nil
	}
	end := start + pageSize
	if end > len(newestFirst) {
		end = len(newestFirst)
	}
	out := make([]StoredMessage, end-start)
	copy(out, newestFirst[start:end])
	return out, nil
}
