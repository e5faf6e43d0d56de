package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedisClient is an in-memory double for RedisClient, avoiding a real
// Redis dependency in unit tests while still exercising the redisStore
// marshal/unmarshal path against the real *redis.StringCmd/*redis.StatusCmd
// result types.
type fakeRedisClient struct {
	data map[string][]byte
}

func newFakeRedisClient() *fakeRedisClient {
	return &fakeRedisClient{data: make(map[string][]byte)}
}

func (f *fakeRedisClient) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx, "get", key)
	raw, ok := f.data[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(string(raw))
	return cmd
}

func (f *fakeRedisClient) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx, "set", key)
	raw, ok := value.([]byte)
	if !ok {
		cmd.SetErr(errors.New("fakeRedisClient: value must be []byte"))
		return cmd
	}
	f.data[key] = raw
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeRedisClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "del")
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	cmd.SetVal(n)
	return cmd
}

func TestRedisBackedAspectRoundTrips(t *testing.T) {
	ctx := context.Background()
	client := newFakeRedisClient()
	c := New(WithRedisBackend(AspectKnowledge, client, "sdk:knowledge:"))

	_, ok := c.Get(ctx, AspectKnowledge, "k1")
	assert.False(t, ok)

	c.Set(ctx, AspectKnowledge, "k1", "v1")
	got, ok := c.Get(ctx, AspectKnowledge, "k1")
	require.True(t, ok)
	assert.Equal(t, "v1", got)

	raw, ok := client.data["sdk:knowledge:k1"]
	require.True(t, ok, "expected entry to be stored under the prefixed key")
	var stored Entry
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, "v1", stored.Value)

	c.Invalidate(ctx, AspectKnowledge, "k1")
	_, ok = c.Get(ctx, AspectKnowledge, "k1")
	assert.False(t, ok)
}

func TestRedisBackedAspectIsIndependentOfOtherAspects(t *testing.T) {
	ctx := context.Background()
	client := newFakeRedisClient()
	c := New(WithRedisBackend(AspectSettings, client, "sdk:settings:"))

	c.Set(ctx, AspectKnowledge, "k", "in-process")
	got, ok := c.Get(ctx, AspectKnowledge, "k")
	require.True(t, ok)
	assert.Equal(t, "in-process", got)
	assert.Empty(t, client.data, "knowledge aspect must not touch the redis-backed settings store")
}
