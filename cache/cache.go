// Package cache implements the SDK's three-aspect TTL cache (knowledge,
// settings, workflow-definitions) sitting above the knowledge provider and
// the settings/registry lookups. Each aspect is independently enabled and
// TTL'd; mutations invalidate the specific key they affect.
package cache

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// store abstracts an aspect's backing key-value store so Cache can swap
// between the default in-process LRU and an optional Redis-backed store
// (see WithRedisBackend) without changing Get/Set/Invalidate call sites.
type store interface {
	get(key string) (Entry, bool)
	add(key string, e Entry)
	remove(key string)
}

// lruStore is the default, process-local backing store.
type lruStore struct {
	l *lru.LRU[string, Entry]
}

func newLRUStore(ttl time.Duration) *lruStore {
	return &lruStore{l: lru.NewLRU[string, Entry](4096, nil, ttl)}
}

func (s *lruStore) get(key string) (Entry, bool) { return s.l.Get(key) }
func (s *lruStore) add(key string, e Entry)      { s.l.Add(key, e) }
func (s *lruStore) remove(key string)            { s.l.Remove(key) }

// Aspect names one of the three independently configured cache categories.
type Aspect string

const (
	AspectKnowledge   Aspect = "knowledge"
	AspectSettings    Aspect = "settings"
	AspectDefinitions Aspect = "workflow-definitions"
)

// defaultTTL returns the spec-mandated default TTL for an aspect.
func defaultTTL(a Aspect) time.Duration {
	switch a {
	case AspectKnowledge:
		return 5 * time.Minute
	case AspectSettings:
		return 5 * time.Minute
	case AspectDefinitions:
		return 60 * time.Minute
	default:
		return 5 * time.Minute
	}
}

// Entry is the value stored for a cache key, matching the CacheEntry data
// model: an entry is only served while now is before AbsoluteExpiry.
type Entry struct {
	Key            string
	Value          any
	Aspect         Aspect
	AbsoluteExpiry time.Time
}

func (e Entry) expired(now time.Time) bool { return !now.Before(e.AbsoluteExpiry) }

// RefreshFunc recomputes the value for key when an entry is close to expiry.
type RefreshFunc func(ctx context.Context, key string) (any, error)

// aspectCache is a single aspect's backing store: an LRU with per-entry TTL,
// an enable flag, and optional background refresh triggered at 80% of TTL,
// mirroring the MemoryCache this package replaces.
type aspectCache struct {
	mu      sync.RWMutex
	enabled bool
	ttl     time.Duration
	store   store

	refreshFunc     RefreshFunc
	refreshCooldown time.Duration
	refreshCh       chan string
	refreshCtx      context.Context
	refreshCancel   context.CancelFunc
	refreshWg       sync.WaitGroup
	refreshedAt     map[string]time.Time
}

// Cache is the top-level, process-wide TTL cache fronting the Knowledge
// Provider, Settings, and workflow-definition lookups. A Cache is created
// once per Platform instance; see sdk.Platform.
type Cache struct {
	aspects map[Aspect]*aspectCache
}

// Option configures a Cache at construction time.
type Option func(*Cache)

// WithAspect overrides the enabled flag and TTL for a single aspect. Pass
// enabled=false to disable both reads and writes for that aspect entirely.
func WithAspect(a Aspect, enabled bool, ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl <= 0 {
			ttl = defaultTTL(a)
		}
		c.aspects[a] = newAspectCache(enabled, ttl)
	}
}

// WithRefresh installs a background-refresh function for the given aspect.
// Refresh is triggered when a read observes an entry within 20% of its TTL
// of expiring, and is rate-limited per key by cooldown.
func WithRefresh(a Aspect, fn RefreshFunc, cooldown time.Duration) Option {
	return func(c *Cache) {
		ac, ok := c.aspects[a]
		if !ok {
			ac = newAspectCache(true, defaultTTL(a))
			c.aspects[a] = ac
		}
		ac.refreshFunc = fn
		if cooldown <= 0 {
			cooldown = 10 * time.Second
		}
		ac.refreshCooldown = cooldown
	}
}

func newAspectCache(enabled bool, ttl time.Duration) *aspectCache {
	return &aspectCache{
		enabled:     enabled,
		ttl:         ttl,
		store:       newLRUStore(ttl),
		refreshCh:   make(chan string, 256),
		refreshedAt: make(map[string]time.Time),
	}
}

// WithRedisBackend swaps the given aspect's backing store for a Redis-backed
// one, sharing cache state across SDK processes instead of keeping it
// process-local. The aspect keeps its own enable flag and TTL; only the
// storage medium changes.
func WithRedisBackend(a Aspect, client RedisClient, keyPrefix string) Option {
	return func(c *Cache) {
		ac, ok := c.aspects[a]
		if !ok {
			ac = newAspectCache(true, defaultTTL(a))
			c.aspects[a] = ac
		}
		ac.mu.Lock()
		ac.store = newRedisStore(client, keyPrefix, ac.ttl)
		ac.mu.Unlock()
	}
}

// New constructs a Cache with all three aspects enabled at their default TTL
// unless overridden by opts.
func New(opts ...Option) *Cache {
	c := &Cache{aspects: make(map[Aspect]*aspectCache)}
	for _, a := range []Aspect{AspectKnowledge, AspectSettings, AspectDefinitions} {
		c.aspects[a] = newAspectCache(true, defaultTTL(a))
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) aspect(a Aspect) *aspectCache {
	ac, ok := c.aspects[a]
	if !ok {
		ac = newAspectCache(true, defaultTTL(a))
		c.aspects[a] = ac
	}
	return ac
}

// Get returns the cached value for (aspect, key). ok is false when the
// aspect is disabled, the key is absent, or the entry has expired.
func (c *Cache) Get(_ context.Context, aspect Aspect, key string) (any, bool) {
	ac := c.aspect(aspect)
	if !ac.enabled {
		return nil, false
	}
	ac.mu.RLock()
	entry, ok := ac.store.get(key)
	ac.mu.RUnlock()
	if !ok {
		return nil, false
	}
	now := time.Now()
	if entry.expired(now) {
		ac.mu.Lock()
		ac.store.remove(key)
		ac.mu.Unlock()
		return nil, false
	}
	if ac.refreshFunc != nil {
		threshold := entry.AbsoluteExpiry.Add(-ac.ttl / 5)
		if now.After(threshold) {
			ac.triggerRefresh(key)
		}
	}
	return entry.Value, true
}

// Set stores value for (aspect, key) using the aspect's configured TTL. A
// no-op when the aspect is disabled, per spec: disabling caching must skip
// both reads and writes.
func (c *Cache) Set(_ context.Context, aspect Aspect, key string, value any) {
	ac := c.aspect(aspect)
	if !ac.enabled {
		return
	}
	ac.mu.Lock()
	defer ac.mu.Unlock()
	ac.store.add(key, Entry{
		Key:            key,
		Value:          value,
		Aspect:         aspect,
		AbsoluteExpiry: time.Now().Add(ac.ttl),
	})
}

// Invalidate removes the entry for (aspect, key), e.g. following a write to
// the underlying resource.
func (c *Cache) Invalidate(_ context.Context, aspect Aspect, key string) {
	ac := c.aspect(aspect)
	ac.mu.Lock()
	ac.store.remove(key)
	ac.mu.Unlock()
}

func (ac *aspectCache) triggerRefresh(key string) {
	if ac.refreshCtx == nil {
		return
	}
	select {
	case ac.refreshCh <- key:
	case <-ac.refreshCtx.Done():
	default:
	}
}

// StartRefresh launches the background refresh loop for aspect. No-op if no
// RefreshFunc was installed via WithRefresh.
func (c *Cache) StartRefresh(ctx context.Context, aspect Aspect) {
	ac := c.aspect(aspect)
	if ac.refreshFunc == nil {
		return
	}
	ac.refreshCtx, ac.refreshCancel = context.WithCancel(ctx)
	ac.refreshWg.Add(1)
	go ac.refreshLoop()
}

// StopRefresh stops the background refresh loop for aspect, if running.
func (c *Cache) StopRefresh(aspect Aspect) {
	ac := c.aspect(aspect)
	if ac.refreshCancel != nil {
		ac.refreshCancel()
		ac.refreshWg.Wait()
		ac.refreshCancel = nil
	}
}

func (ac *aspectCache) refreshLoop() {
	defer ac.refreshWg.Done()
	for {
		select {
		case <-ac.refreshCtx.Done():
			return
		case key := <-ac.refreshCh:
			if last, ok := ac.refreshedAt[key]; ok && time.Since(last) < ac.refreshCooldown {
				continue
			}
			ac.mu.RLock()
			entry, exists := ac.store.get(key)
			ac.mu.RUnlock()
			if !exists {
				continue
			}
			value, err := ac.refreshFunc(ac.refreshCtx, key)
			if err != nil {
				continue
			}
			ac.mu.Lock()
			ac.store.add(key, Entry{
				Key:            key,
				Value:          value,
				Aspect:         entry.Aspect,
				AbsoluteExpiry: time.Now().Add(ac.ttl),
			})
			ac.mu.Unlock()
			ac.refreshedAt[key] = time.Now()
		}
	}
}
