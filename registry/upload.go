package registry

import (
	"context"
	"net/url"

	"github.com/xiansai/agent-sdk-go/cache"
	"github.com/xiansai/agent-sdk-go/platform/transport"
	"github.com/xiansai/agent-sdk-go/sdkerr"
)

// Uploader publishes a workflow definition to the control plane exactly
// once, per spec.md §4.8 ("Before worker start, for each definition: GET
// /api/agent/definitions/check (by workflowType). If 404, POST
// /api/agent/definitions").
type Uploader interface {
	EnsureUploaded(ctx context.Context, tenantID string, def *Definition) error
}

// ServerUploader implements Uploader against /api/agent/definitions,
// caching a positive check result under cache.AspectDefinitions so a
// process that registers the same agent repeatedly (e.g. re-running
// RunAllAsync) does not re-issue the check request every time.
type ServerUploader struct {
	transport *transport.Transport
	cache     *cache.Cache
}

// NewServerUploader constructs a ServerUploader using t for requests and c
// to skip redundant check calls.
func NewServerUploader(t *transport.Transport, c *cache.Cache) *ServerUploader {
	return &ServerUploader{transport: t, cache: c}
}

type definitionPayload struct {
	Agent        string   `json:"agent"`
	WorkflowType string   `json:"workflowType"`
	Name         string   `json:"name"`
	SystemScoped bool     `json:"systemScoped"`
	Workers      []string `json:"workers,omitempty"`
	Description  string   `json:"description,omitempty"`
}

func cacheKey(tenantID, workflowType string) string { return tenantID + ":" + workflowType }

// EnsureUploaded implements Uploader.
func (u *ServerUploader) EnsureUploaded(ctx context.Context, tenantID string, def *Definition) error {
	key := cacheKey(tenantID, def.WorkflowType)
	if _, ok := u.cache.Get(ctx, cache.AspectDefinitions, key); ok {
		return nil
	}

	q := url.Values{"workflowType": {def.WorkflowType}}
	found, err := u.transport.Get(ctx, "/api/agent/definitions/check?"+q.Encode(), tenantID, nil)
	if err != nil {
		return sdkerr.New(sdkerr.Connection, "registry.Upload", err)
	}
	if found {
		u.cache.Set(ctx, cache.AspectDefinitions, key, true)
		return nil
	}

	payload := definitionPayload{
		Agent:        def.AgentName,
		WorkflowType: def.WorkflowType,
		Name:         def.DisplayName,
		SystemScoped: def.SystemScoped,
		Workers:      def.Workers,
		Description:  def.Description,
	}
	if _, err := u.transport.Post(ctx, "/api/agent/definitions", tenantID, payload, nil); err != nil {
		return sdkerr.New(sdkerr.Connection, "registry.Upload", err)
	}
	u.cache.Set(ctx, cache.AspectDefinitions, key, true)
	return nil
}
