package knowledge

import (
	"context"
	"net/url"

	"github.com/xiansai/agent-sdk-go/platform/transport"
	"github.com/xiansai/agent-sdk-go/sdkerr"
)

// ServerProvider implements Provider against the
// /api/agent/knowledge* HTTP endpoints (spec.md §6).
type ServerProvider struct {
	transport *transport.Transport
}

// NewServerProvider constructs a ServerProvider using t for all requests.
func NewServerProvider(t *transport.Transport) *ServerProvider {
	return &ServerProvider{transport: t}
}

func (p *ServerProvider) Get(ctx context.Context, name, agent, tenant, activation string) (*Item, error) {
	q := url.Values{"name": {name}, "agent": {agent}}
	if activation != "" {
		q.Set("activation", activation)
	}
	var item Item
	found, err := p.transport.Get(ctx, "/api/agent/knowledge/latest?"+q.Encode(), tenant, &item)
	if err != nil {
		return nil, sdkerr.New(sdkerr.Connection, "knowledge.Get", err)
	}
	if !found {
		return nil, nil
	}
	return &item, nil
}

func (p *ServerProvider) GetSystem(ctx context.Context, name, agent, activation string) (*Item, error) {
	return p.Get(ctx, name, agent, "", activation)
}

func (p *ServerProvider) Update(ctx context.Context, name, content, typ, agent, tenant string, systemScoped bool, activation string) error {
	item := Item{
		Name: name, Content: content, Type: typ, Agent: agent,
		SystemScoped: systemScoped, TenantID: tenant,
	}
	_, err := p.transport.Post(ctx, "/api/agent/knowledge", tenant, item, nil)
	if err != nil {
		return sdkerr.New(sdkerr.Connection, "knowledge.Update", err)
	}
	return nil
}

func (p *ServerProvider) Delete(ctx context.Context, name, agent, tenant, activation string) error {
	q := url.Values{"name": {name}, "agent": {agent}}
	if activation != "" {
		q.Set("activation", activation)
	}
	_, err := p.transport.Delete(ctx, "/api/agent/knowledge?"+q.Encode(), tenant)
	if err != nil {
		return sdkerr.New(sdkerr.Connection, "knowledge.Delete", err)
	}
	return nil
}

func (p *ServerProvider) List(ctx context.Context, agent, tenant, activation string) ([]Item, error) {
	q := url.Values{"agent": {agent}}
	if activation != "" {
		q.Set("activation", activation)
	}
	var items []Item
	_, err := p.transport.Get(ctx, "/api/agent/knowledge/list?"+q.Encode(), tenant, &items)
	if err != nil {
		return nil, sdkerr.New(sdkerr.Connection, "knowledge.List", err)
	}
	return items, nil
}
