package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	cache, err := New(mr.Addr(), "", 0, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })

	return cache, mr
}

func TestNewUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := New(addr, "", 0, zap.NewNop())
	assert.Error(t, err)
}

func TestSeenJobs(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)

	unseen, err := cache.Unseen(ctx, 7, []string{"1", "2", "3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, unseen)

	require.NoError(t, cache.MarkSeen(ctx, 7, "2", "3"))
	require.NoError(t, cache.MarkSeen(ctx, 7))

	unseen, err = cache.Unseen(ctx, 7, []string{"3", "4", "2", "1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"4", "1"}, unseen)

	// other chats are independent
	unseen, err = cache.Unseen(ctx, 8, []string{"2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, unseen)

	assert.Equal(t, SeenJobsTTL, mr.TTL(SeenJobsKey(7)))

	require.NoError(t, cache.ForgetSeen(ctx, 7))
	assert.False(t, mr.Exists(SeenJobsKey(7)))

	empty, err := cache.Unseen(ctx, 7, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestUserRateLimit(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)

	count, err := cache.GetUserRateLimit(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, count)

	for i := 1; i <= 3; i++ {
		count, err = cache.IncrementUserRateLimit(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(i), count)
	}

	count, err = cache.GetUserRateLimit(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	mr.FastForward(RateLimitWindowTTL + time.Second)

	count, err = cache.GetUserRateLimit(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNewWithClient(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cache := NewWithClient(client, zap.NewNop())
	defer cache.Close()

	assert.NoError(t, cache.Ping(context.Background()))
}
