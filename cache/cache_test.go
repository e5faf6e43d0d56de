package cache

import (
	"context"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSetInvalidate(t *testing.T) {
	ctx := context.Background()
	c := New()

	_, ok := c.Get(ctx, AspectKnowledge, "k1")
	assert.False(t, ok)

	c.Set(ctx, AspectKnowledge, "k1", "v1")
	got, ok := c.Get(ctx, AspectKnowledge, "k1")
	require.True(t, ok)
	assert.Equal(t, "v1", got)

	c.Invalidate(ctx, AspectKnowledge, "k1")
	_, ok = c.Get(ctx, AspectKnowledge, "k1")
	assert.False(t, ok)
}

func TestWriteThenReadObservesWrite(t *testing.T) {
	ctx := context.Background()
	c := New()

	c.Set(ctx, AspectKnowledge, "k", "first")
	got, ok := c.Get(ctx, AspectKnowledge, "k")
	require.True(t, ok)
	assert.Equal(t, "first", got)

	c.Set(ctx, AspectKnowledge, "k", "second")
	got, ok = c.Get(ctx, AspectKnowledge, "k")
	require.True(t, ok)
	assert.Equal(t, "second", got)
}

func TestTTLExpiry(t *testing.T) {
	ctx := context.Background()
	c := New(WithAspect(AspectKnowledge, true, 10*time.Millisecond))

	c.Set(ctx, AspectKnowledge, "k", "v")
	_, ok := c.Get(ctx, AspectKnowledge, "k")
	require.True(t, ok)

	time.Sleep(25 * time.Millisecond)
	_, ok = c.Get(ctx, AspectKnowledge, "k")
	assert.False(t, ok, "expected entry to be gone after TTL elapses")
}

func TestDisabledAspectSkipsReadsAndWrites(t *testing.T) {
	ctx := context.Background()
	c := New(WithAspect(AspectSettings, false, time.Minute))

	c.Set(ctx, AspectSettings, "k", "v")
	_, ok := c.Get(ctx, AspectSettings, "k")
	assert.False(t, ok, "disabled aspect must not serve cached reads")
}

// TestCacheInvariantsProperty checks, for arbitrary keys and values, that a
// write is observed by the very next read and that invalidation always
// clears the corresponding key, matching the round-trip laws in spec.md §8.
func TestCacheInvariantsProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("write then read observes the write", prop.ForAll(
		func(key, value string) bool {
			c := New()
			ctx := context.Background()
			c.Set(ctx, AspectKnowledge, key, value)
			got, ok := c.Get(ctx, AspectKnowledge, key)
			return ok && got == value
		},
		gen.AlphaString().SuchThat(func(s string) bool { return s != "" }),
		gen.AlphaString(),
	))

	properties.Property("invalidate then read misses", prop.ForAll(
		func(key, value string) bool {
			c := New()
			ctx := context.Background()
			c.Set(ctx, AspectKnowledge, key, value)
			c.Invalidate(ctx, AspectKnowledge, key)
			_, ok := c.Get(ctx, AspectKnowledge, key)
			return !ok
		},
		gen.AlphaString().SuchThat(func(s string) bool { return s != "" }),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
