package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryClient_SetGetDelete(t *testing.T) {
	c := NewMemoryClient()
	ctx := context.Background()

	_, err := c.Get(ctx, "product:1")
	assert.Equal(t, ErrCacheMiss, err)

	require.NoError(t, c.Set(ctx, "product:1", []byte(`{"id":"1"}`), time.Minute))
	val, err := c.Get(ctx, "product:1")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"1"}`, val)

	require.NoError(t, c.Delete(ctx, "product:1"))
	_, err = c.Get(ctx, "product:1")
	assert.Equal(t, ErrCacheMiss, err)
}

func TestMemoryClient_Expiration(t *testing.T) {
	c := NewMemoryClient()
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "session:revoked:abc", 1, 30*time.Second))
	val, err := c.Get(ctx, "session:revoked:abc")
	require.NoError(t, err)
	assert.Equal(t, "1", val)

	now = now.Add(31 * time.Second)
	_, err = c.Get(ctx, "session:revoked:abc")
	assert.Equal(t, ErrCacheMiss, err)
}

func TestNewClient_WithoutAddrUsesMemory(t *testing.T) {
	c, err := NewClient("")
	require.NoError(t, err)
	assert.IsType(t, &MemoryClient{}, c)
}
