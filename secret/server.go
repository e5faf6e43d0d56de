package secret

import (
	"context"
	"errors"
	"net/url"

	"github.com/xiansai/agent-sdk-go/platform/transport"
	"github.com/xiansai/agent-sdk-go/sdkerr"
)

// Backend is the capability set a secret-vault sink provides. ServerBackend
// is the production implementation backed by /api/agent/secrets*.
type Backend interface {
	create(ctx context.Context, req writeRequest) (Record, error)
	fetchByKey(ctx context.Context, req fetchRequest) (*FetchResult, error)
	list(ctx context.Context, req scopeRequest) ([]Record, error)
	getByID(ctx context.Context, req getByIDRequest) (*Record, error)
	update(ctx context.Context, req updateRequest) (Record, error)
	delete(ctx context.Context, req deleteRequest) (bool, error)
}

// ServerBackend implements Backend against /api/agent/secrets and
// /api/agent/secrets/fetch, per spec.md §4.10/§6.
type ServerBackend struct {
	transport *transport.Transport
}

// NewServerBackend constructs a ServerBackend using t for requests.
func NewServerBackend(t *transport.Transport) *ServerBackend {
	return &ServerBackend{transport: t}
}

func scopeQuery(s scopeRequest) url.Values {
	q := url.Values{}
	if s.AgentName != "" {
		q.Set("agentName", s.AgentName)
	}
	if s.UserID != "" {
		q.Set("userId", s.UserID)
	}
	return q
}

func (b *ServerBackend) create(ctx context.Context, req writeRequest) (Record, error) {
	var out Record
	_, err := b.transport.Post(ctx, "/api/agent/secrets", req.TenantID, req, &out)
	if err != nil {
		var status *transport.HTTPStatusError
		if errors.As(err, &status) && status.StatusCode == 409 {
			return Record{}, sdkerr.New(sdkerr.Conflict, "secret.Create", err)
		}
		return Record{}, sdkerr.New(sdkerr.Connection, "secret.Create", err)
	}
	return out, nil
}

func (b *ServerBackend) fetchByKey(ctx context.Context, req fetchRequest) (*FetchResult, error) {
	q := scopeQuery(req.scopeRequest)
	q.Set("key", req.Key)
	var out FetchResult
	found, err := b.transport.Get(ctx, "/api/agent/secrets/fetch?"+q.Encode(), req.TenantID, &out)
	if err != nil {
		return nil, sdkerr.New(sdkerr.Connection, "secret.FetchByKey", err)
	}
	if !found {
		return nil, nil
	}
	return &out, nil
}

func (b *ServerBackend) list(ctx context.Context, req scopeRequest) ([]Record, error) {
	q := scopeQuery(req)
	var out []Record
	_, err := b.transport.Get(ctx, "/api/agent/secrets?"+q.Encode(), req.TenantID, &out)
	if err != nil {
		return nil, sdkerr.New(sdkerr.Connection, "secret.List", err)
	}
	return out, nil
}

func (b *ServerBackend) getByID(ctx context.Context, req getByIDRequest) (*Record, error) {
	q := scopeQuery(req.scopeRequest)
	q.Set("id", req.ID)
	var out Record
	found, err := b.transport.Get(ctx, "/api/agent/secrets?"+q.Encode(), req.TenantID, &out)
	if err != nil {
		return nil, sdkerr.New(sdkerr.Connection, "secret.GetByID", err)
	}
	if !found {
		return nil, nil
	}
	return &out, nil
}

func (b *ServerBackend) update(ctx context.Context, req updateRequest) (Record, error) {
	var out Record
	body := map[string]any{"id": req.ID, "value": req.Value, "additionalData": req.AdditionalData}
	_, err := b.transport.Put(ctx, "/api/agent/secrets", req.TenantID, body, &out)
	if err != nil {
		return Record{}, sdkerr.New(sdkerr.Connection, "secret.Update", err)
	}
	return out, nil
}

func (b *ServerBackend) delete(ctx context.Context, req deleteRequest) (bool, error) {
	q := scopeQuery(req.scopeRequest)
	q.Set("id", req.ID)
	found, err := b.transport.Delete(ctx, "/api/agent/secrets?"+q.Encode(), req.TenantID)
	if err != nil {
		return false, sdkerr.New(sdkerr.Connection, "secret.Delete", err)
	}
	return found, nil
}
