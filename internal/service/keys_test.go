package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/chef-fhe/backend/internal/testhelpers"
)

func TestMemoryKeyRegistryExpires(t *testing.T) {
	reg := NewMemoryKeyRegistry()
	now := time.Unix(1700000000, 0)
	reg.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, reg.Remember(ctx, "0xabc", time.Hour))
	known, err := reg.Known(ctx, "0xabc")
	require.NoError(t, err)
	assert.True(t, known)

	known, _ = reg.Known(ctx, "0xdef")
	assert.False(t, known)

	now = now.Add(time.Hour)
	known, _ = reg.Known(ctx, "0xabc")
	assert.False(t, known)

	require.NoError(t, reg.Remember(ctx, "0xdef", time.Hour))
	assert.Len(t, reg.expires, 1, "expired keys are swept")
}

func TestRedisKeyRegistry(t *testing.T) {
	client := testhelpers.SetupTestRedis(t)
	reg := NewRedisKeyRegistry(client, "chef-test")
	ctx := context.Background()

	require.NoError(t, reg.Remember(ctx, "0xabc", time.Minute))
	known, err := reg.Known(ctx, "0xabc")
	require.NoError(t, err)
	assert.True(t, known)

	known, err = reg.Known(ctx, "0xdef")
	require.NoError(t, err)
	assert.False(t, known)

	ttl, err := client.TTL(ctx, reg.key("0xabc")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
