// Package knowledge implements the SDK's knowledge provider abstraction
// (spec.md §4.5): a mapping from (tenant, agent, activation, name) to a
// content blob, backed by either the server HTTP API or embedded local
// assets, fronted by the shared TTL cache.
package knowledge

import (
	"context"
	"fmt"

	"github.com/xiansai/agent-sdk-go/cache"
)

// Item is a single knowledge entry, per the KnowledgeItem data model
// (spec.md §3).
type Item struct {
	Name         string `json:"name"`
	Content      string `json:"content"`
	Type         string `json:"type"`
	Agent        string `json:"agent"`
	SystemScoped bool   `json:"systemScoped"`
	TenantID     string `json:"tenantId,omitempty"`
}

// Provider is the capability set both the server-backed and local-embedded
// implementations satisfy, per spec.md §4.5 and DESIGN NOTES §9
// ("polymorphic knowledge provider").
type Provider interface {
	// Get returns the knowledge item named name for agent, scoped to tenant
	// and activation. Returns (nil, nil) when not found — not an error.
	Get(ctx context.Context, name, agent, tenant, activation string) (*Item, error)
	// GetSystem is Get for systemScoped items (no tenant).
	GetSystem(ctx context.Context, name, agent, activation string) (*Item, error)
	// Update upserts a knowledge item.
	Update(ctx context.Context, name, content, typ, agent, tenant string, systemScoped bool, activation string) error
	// Delete removes a knowledge item. Deleting a missing item is a no-op.
	Delete(ctx context.Context, name, agent, tenant, activation string) error
	// List returns all knowledge entries for (agent, tenant, activation).
	List(ctx context.Context, agent, tenant, activation string) ([]Item, error)
}

// cacheKey encodes the full (tenant-or-system, agent, activation, name)
// scope tuple, per spec.md §4.5's "cache keys encode the full scope tuple".
func cacheKey(agent, tenant, activation, name string) string {
	scope := tenant
	if scope == "" {
		scope = "system"
	}
	if activation == "" {
		activation = "default"
	}
	return fmt.Sprintf("%s|%s|%s|%s", agent, scope, activation, name)
}

// CachedProvider fronts an underlying Provider with the shared aspect cache,
// invalidating the specific key on every mutation per spec.md §4.5.
type CachedProvider struct {
	inner Provider
	cache *cache.Cache
}

// NewCachedProvider wraps inner with c's AspectKnowledge cache.
func NewCachedProvider(inner Provider, c *cache.Cache) *CachedProvider {
	return &CachedProvider{inner: inner, cache: c}
}

func (p *CachedProvider) Get(ctx context.Context, name, agent, tenant, activation string) (*Item, error) {
	key := cacheKey(agent, tenant, activation, name)
	if v, ok := p.cache.Get(ctx, cache.AspectKnowledge, key); ok {
		if v == nil {
			return nil, nil
		}
		item := v.(Item)
		return &item, nil
	}
	item, err := p.inner.Get(ctx, name, agent, tenant, activation)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}
	p.cache.Set(ctx, cache.AspectKnowledge, key, *item)
	return item, nil
}

func (p *CachedProvider) GetSystem(ctx context.Context, name, agent, activation string) (*Item, error) {
	return p.Get(ctx, name, agent, "", activation)
}

func (p *CachedProvider) Update(ctx context.Context, name, content, typ, agent, tenant string, systemScoped bool, activation string) error {
	if err := p.inner.Update(ctx, name, content, typ, agent, tenant, systemScoped, activation); err != nil {
		return err
	}
	tenantForKey := tenant
	if systemScoped {
		tenantForKey = ""
	}
	p.cache.Invalidate(ctx, cache.AspectKnowledge, cacheKey(agent, tenantForKey, activation, name))
	return nil
}

func (p *CachedProvider) Delete(ctx context.Context, name, agent, tenant, activation string) error {
	if err := p.inner.Delete(ctx, name, agent, tenant, activation); err != nil {
		return err
	}
	p.cache.Invalidate(ctx, cache.AspectKnowledge, cacheKey(agent, tenant, activation, name))
	return nil
}

func (p *CachedProvider) List(ctx context.Context, agent, tenant, activation string) ([]Item, error) {
	// List is intentionally never cached: it aggregates many keys and the
	// per-key cache already protects the hot path (individual Get calls).
	return p.inner.List(ctx, agent, tenant, activation)
}
