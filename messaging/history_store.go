package messaging

import (
	"context"
	"net/url"
	"strconv"

	"github.com/xiansai/agent-sdk-go/platform/transport"
	"github.com/xiansai/agent-sdk-go/sdkerr"
)

// ServerHistoryStore implements HistoryStore against the server's
// conversation history endpoint, per spec.md §4.6 ("History... fetches
// messages for (agent, workflowType, threadId/participantId, scope) from
// the server; newest first").
type ServerHistoryStore struct {
	transport *transport.Transport
}

// NewServerHistoryStore constructs a ServerHistoryStore using t for requests.
func NewServerHistoryStore(t *transport.Transport) *ServerHistoryStore {
	return &ServerHistoryStore{transport: t}
}

// historyAppendRequest is the body posted to persist one turn's message.
type historyAppendRequest struct {
	Agent        string `json:"agent"`
	WorkflowType string `json:"workflowType"`
	ThreadID     string `json:"threadId"`
	Scope        string `json:"scope,omitempty"`
	Direction    string `json:"direction"`
	Text         string `json:"text"`
	Hint         string `json:"hint,omitempty"`
	RequestID    string `json:"requestId,omitempty"`
}

// Append implements HistoryStore.
func (s *ServerHistoryStore) Append(ctx context.Context, msg StoredMessage) error {
	req := historyAppendRequest{
		Agent: msg.Agent, WorkflowType: msg.WorkflowType, ThreadID: msg.ThreadID,
		Scope: msg.Scope, Direction: string(msg.Direction), Text: msg.Text,
		Hint: msg.Hint, RequestID: msg.RequestID,
	}
	_, err := s.transport.Post(ctx, "/api/agent/conversation/history", "", req, nil)
	if err != nil {
		return sdkerr.New(sdkerr.Connection, "history.Append", err)
	}
	return nil
}

// List implements HistoryStore: fetches up to pageSize messages, newest
// first, for (agent, workflowType, threadID, scope) starting at page
// (1-indexed).
func (s *ServerHistoryStore) List(ctx context.Context, agent, workflowType, threadID, scope string, page, pageSize int) ([]StoredMessage, error) {
	q := url.Values{
		"agent":        {agent},
		"workflowType": {workflowType},
		"threadId":     {threadID},
		"page":         {strconv.Itoa(page)},
		"pageSize":     {strconv.Itoa(pageSize)},
	}
	if scope != "" {
		q.Set("scope", scope)
	}
	var out []StoredMessage
	_, err := s.transport.Get(ctx, "/api/agent/conversation/history?"+q.Encode(), "", &out)
	if err != nil {
		return nil, sdkerr.New(sdkerr.Connection, "history.List", err)
	}
	return out, nil
}
