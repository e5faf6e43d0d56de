package knowledge

import (
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"context"

	"gopkg.in/yaml.v3"
)

// localKey identifies one in-memory entry: (tenant-or-system, agent,
// activation-or-default, name), per spec.md §4.5.
type localKey struct {
	scope      string
	agent      string
	activation string
	name       string
}

func newLocalKey(agent, tenant, activation, name string) localKey {
	scope := tenant
	if scope == "" {
		scope = "system"
	}
	if activation == "" {
		activation = "default"
	}
	return localKey{scope: scope, agent: agent, activation: activation, name: name}
}

// localExtensions lists the asset extensions resolved by the naming rule
// "{AgentName}.Knowledge.{KnowledgeName}.{ext}", per spec.md §4.5.
var localExtensions = []string{"md", "txt", "json", "yaml", "yml"}

// LocalProvider implements Provider by resolving names against an
// embed.FS of assets named "{AgentName}.Knowledge.{KnowledgeName}.{ext}".
// Writes/updates/deletes are held in an in-memory store, protected by a
// single mutex per spec.md §5 ("reads are serialized briefly").
type LocalProvider struct {
	assets fs.FS

	mu      sync.Mutex
	entries map[localKey]Item
}

// NewLocalProvider constructs a LocalProvider resolving embedded assets from
// assets (typically an embed.FS supplied by the agent program).
func NewLocalProvider(assets fs.FS) *LocalProvider {
	return &LocalProvider{assets: assets, entries: make(map[localKey]Item)}
}

func (p *LocalProvider) Get(_ context.Context, name, agent, tenant, activation string) (*Item, error) {
	key := newLocalKey(agent, tenant, activation, name)

	p.mu.Lock()
	if item, ok := p.entries[key]; ok {
		p.mu.Unlock()
		return &item, nil
	}
	p.mu.Unlock()

	return p.resolveAsset(name, agent)
}

func (p *LocalProvider) GetSystem(ctx context.Context, name, agent, activation string) (*Item, error) {
	return p.Get(ctx, name, agent, "", activation)
}

func (p *LocalProvider) resolveAsset(name, agent string) (*Item, error) {
	if p.assets == nil {
		return nil, nil
	}
	for _, ext := range localExtensions {
		path := fmt.Sprintf("%s.Knowledge.%s.%s", agent, name, ext)
		raw, err := fs.ReadFile(p.assets, path)
		if err != nil {
			continue
		}
		content := string(raw)
		if ext == "yaml" || ext == "yml" {
			var decoded any
			if err := yaml.Unmarshal(raw, &decoded); err != nil {
				return nil, fmt.Errorf("knowledge: parse embedded asset %q: %w", path, err)
			}
		}
		return &Item{Name: name, Content: content, Type: ext, Agent: agent}, nil
	}
	return nil, nil
}

func (p *LocalProvider) Update(_ context.Context, name, content, typ, agent, tenant string, systemScoped bool, activation string) error {
	t := tenant
	if systemScoped {
		t = ""
	}
	key := newLocalKey(agent, t, activation, name)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries[key] = Item{
		Name: name, Content: content, Type: typ, Agent: agent,
		SystemScoped: systemScoped, TenantID: t,
	}
	return nil
}

func (p *LocalProvider) Delete(_ context.Context, name, agent, tenant, activation string) error {
	key := newLocalKey(agent, tenant, activation, name)
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.entries, key)
	return nil
}

func (p *LocalProvider) List(_ context.Context, agent, tenant, activation string) ([]Item, error) {
	scope := tenant
	if scope == "" {
		scope = "system"
	}
	act := activation
	if act == "" {
		act = "default"
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Item
	for k, item := range p.entries {
		if k.agent != agent {
			continue
		}
		if !strings.EqualFold(k.scope, scope) {
			continue
		}
		if k.activation != act {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}
