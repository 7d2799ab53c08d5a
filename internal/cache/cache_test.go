package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMemorySetGet(t *testing.T) {
	c := NewMemory[string](time.Minute, 0)
	defer c.Stop()

	c.Set("k", "v")
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	_, ok = c.Get("missing")
	assert.False(t, ok)

	c.Delete("k")
	_, ok = c.Get("k")
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
	assert.Equal(t, int64(1), stats.Sets)
	assert.Equal(t, 0, stats.CurrentSize)
}

func TestMemoryExpiry(t *testing.T) {
	c := NewMemory[int](0, 0)
	defer c.Stop()

	c.SetTTL("short", 1, 10*time.Millisecond)
	c.Set("forever", 2)
	time.Sleep(30 * time.Millisecond)

	_, ok := c.Get("short")
	assert.False(t, ok, "expired entries are not returned")
	v, ok := c.Get("forever")
	require.True(t, ok)
	assert.Equal(t, 2, v)

	assert.Equal(t, 1, c.deleteExpired())
	assert.Equal(t, int64(1), c.Stats().Evictions)
	assert.Equal(t, 1, c.Len())
}

func TestMemoryJanitorStops(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	c := NewMemory[int](5*time.Millisecond, time.Millisecond)
	c.Set("a", 1)

	assert.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 5*time.Millisecond)
	c.Stop()
	c.Stop()
}

func TestMemoryBlob(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx := context.Background()
	b := NewMemoryBlob(time.Minute)
	defer b.Stop()

	var blob Blob = b
	blob.Set(ctx, "report", []byte(`{"ok":true}`), time.Minute)
	got, ok := blob.Get(ctx, "report")
	require.True(t, ok)
	assert.JSONEq(t, `{"ok":true}`, string(got))

	blob.Delete(ctx, "report")
	_, ok = blob.Get(ctx, "report")
	assert.False(t, ok)
}
