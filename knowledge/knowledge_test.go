package knowledge

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiansai/agent-sdk-go/cache"
)

// fakeBackend is a Provider double that counts Get calls per key, so tests
// can assert the cache actually avoids redundant backend round-trips
// (spec.md §8 end-to-end scenario 1/2).
type fakeBackend struct {
	items   map[string]Item
	getHits map[string]int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{items: map[string]Item{}, getHits: map[string]int{}}
}

func (b *fakeBackend) Get(_ context.Context, name, agent, tenant, activation string) (*Item, error) {
	b.getHits[cacheKey(agent, tenant, activation, name)]++
	item, ok := b.items[cacheKey(agent, tenant, activation, name)]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (b *fakeBackend) GetSystem(ctx context.Context, name, agent, activation string) (*Item, error) {
	return b.Get(ctx, name, agent, "", activation)
}

func (b *fakeBackend) Update(_ context.Context, name, content, typ, agent, tenant string, systemScoped bool, activation string) error {
	t := tenant
	if systemScoped {
		t = ""
	}
	b.items[cacheKey(agent, t, activation, name)] = Item{Name: name, Content: content, Type: typ, Agent: agent, TenantID: t, SystemScoped: systemScoped}
	return nil
}

func (b *fakeBackend) Delete(_ context.Context, name, agent, tenant, activation string) error {
	delete(b.items, cacheKey(agent, tenant, activation, name))
	return nil
}

func (b *fakeBackend) List(_ context.Context, agent, tenant, activation string) ([]Item, error) {
	var out []Item
	for _, item := range b.items {
		out = append(out, item)
	}
	return out, nil
}

func TestCachedProviderHitAvoidsSecondBackendCall(t *testing.T) {
	backend := newFakeBackend()
	backend.items[cacheKey("cache-test-agent", "", "", "cached-item")] = Item{
		Name: "cached-item", Content: "Cached content", Agent: "cache-test-agent",
	}
	p := NewCachedProvider(backend, cache.New())
	ctx := context.Background()

	first, err := p.GetSystem(ctx, "cached-item", "cache-test-agent", "")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "Cached content", first.Content)

	second, err := p.GetSystem(ctx, "cached-item", "cache-test-agent", "")
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, "Cached content", second.Content)

	assert.Equal(t, 1, backend.getHits[cacheKey("cache-test-agent", "", "", "cached-item")],
		"expected exactly one backend request across two reads")
}

func TestCachedProviderUpdateInvalidatesKey(t *testing.T) {
	backend := newFakeBackend()
	backend.items[cacheKey("agent-1", "tenant-1", "", "k")] = Item{Name: "k", Content: "v1", Agent: "agent-1", TenantID: "tenant-1"}
	p := NewCachedProvider(backend, cache.New())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		item, err := p.Get(ctx, "k", "agent-1", "tenant-1", "")
		require.NoError(t, err)
		require.NotNil(t, item)
		assert.Equal(t, "v1", item.Content)
	}
	require.NoError(t, p.Update(ctx, "k", "v2", "text", "agent-1", "tenant-1", false, ""))

	item, err := p.Get(ctx, "k", "agent-1", "tenant-1", "")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "v2", item.Content)

	assert.Equal(t, 2, backend.getHits[cacheKey("agent-1", "tenant-1", "", "k")],
		"expected a second backend request only after the invalidating update")
}

func TestCachedProviderDeleteThenGetReturnsNil(t *testing.T) {
	backend := newFakeBackend()
	backend.items[cacheKey("agent-1", "tenant-1", "", "k")] = Item{Name: "k", Content: "v1", Agent: "agent-1", TenantID: "tenant-1"}
	p := NewCachedProvider(backend, cache.New())
	ctx := context.Background()

	_, err := p.Get(ctx, "k", "agent-1", "tenant-1", "")
	require.NoError(t, err)

	require.NoError(t, p.Delete(ctx, "k", "agent-1", "tenant-1", ""))

	item, err := p.Get(ctx, "k", "agent-1", "tenant-1", "")
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestCachedProviderMissReturnsNilNotError(t *testing.T) {
	p := NewCachedProvider(newFakeBackend(), cache.New())
	item, err := p.Get(context.Background(), "missing", "agent-1", "tenant-1", "")
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestLocalProviderResolvesEmbeddedAssetNaming(t *testing.T) {
	fsys := fstest.MapFS{
		"Billing.Knowledge.refund-policy.md": &fstest.MapFile{Data: []byte("# Refund policy")},
	}
	p := NewLocalProvider(fsys)

	item, err := p.Get(context.Background(), "refund-policy", "Billing", "", "")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "# Refund policy", item.Content)
	assert.Equal(t, "md", item.Type)
}

func TestLocalProviderUpdateThenGetThenDelete(t *testing.T) {
	p := NewLocalProvider(nil)
	ctx := context.Background()

	require.NoError(t, p.Update(ctx, "k", "v1", "text", "agent-1", "tenant-1", false, ""))
	item, err := p.Get(ctx, "k", "agent-1", "tenant-1", "")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "v1", item.Content)

	list, err := p.List(ctx, "agent-1", "tenant-1", "")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, p.Delete(ctx, "k", "agent-1", "tenant-1", ""))
	item, err = p.Get(ctx, "k", "agent-1", "tenant-1", "")
	require.NoError(t, err)
	assert.Nil(t, item)
}
