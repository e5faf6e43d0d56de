package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient is the subset of *redis.Client the cache package needs,
// letting callers pass a real client, a cluster client, or a test double.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// redisStore backs a single aspect with a shared Redis keyspace instead of
// the default process-local LRU, so multiple SDK worker processes observe
// each other's writes and invalidations. Entry values are JSON-encoded;
// Redis's own key TTL enforces expiry as a second line of defense behind
// the Entry.AbsoluteExpiry check the caller already performs.
type redisStore struct {
	client RedisClient
	prefix string
	ttl    time.Duration
}

func newRedisStore(client RedisClient, prefix string, ttl time.Duration) *redisStore {
	return &redisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *redisStore) fullKey(key string) string { return s.prefix + key }

func (s *redisStore) get(key string) (Entry, bool) {
	raw, err := s.client.Get(context.Background(), s.fullKey(key)).Bytes()
	if err != nil {
		return Entry{}, false
	}
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return Entry{}, false
	}
	return e, true
}

func (s *redisStore) add(key string, e Entry) {
	raw, err := json.Marshal(e)
	if err != nil {
		return
	}
	ttl := time.Until(e.AbsoluteExpiry)
	if ttl <= 0 {
		ttl = s.ttl
	}
	s.client.Set(context.Background(), s.fullKey(key), raw, ttl)
}

func (s *redisStore) remove(key string) {
	s.client.Del(context.Background(), s.fullKey(key))
}
