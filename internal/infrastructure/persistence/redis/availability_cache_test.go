package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/internal/application/library"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/pkg/circuitbreaker"
)

func TestAvailabilityKey(t *testing.T) {
	assert.Equal(t, "book:availability:1111111111", availabilityKey("1111111111"))
}

func TestAvailabilityCache_BreakerOpensWhenRedisDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	cache := NewAvailabilityCache(client, time.Minute)
	ctx := context.Background()

	// 连续失败5次后熔断，之后不再访问Redis
	for i := 0; i < 5; i++ {
		err := cache.PutAvailability(ctx, "1111111111", book.Availability{Total: 1, Available: 1})
		require.Error(t, err)
		assert.NotErrorIs(t, err, circuitbreaker.ErrOpenState)
	}
	err := cache.PutStats(ctx, library.Stats{})
	assert.ErrorIs(t, err, circuitbreaker.ErrOpenState)
}

// 需要本地Redis：LIBRARY_TEST_REDIS_ADDR=127.0.0.1:6379
func TestAvailabilityCache_RoundTrip(t *testing.T) {
	addr := os.Getenv("LIBRARY_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("LIBRARY_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	defer client.Close()
	ctx := context.Background()
	require.NoError(t, client.FlushDB(ctx).Err())

	cache := NewAvailabilityCache(client, time.Minute)

	_, ok, err := cache.GetAvailability(ctx, "1111111111")
	require.NoError(t, err)
	assert.False(t, ok)

	want := book.Availability{Total: 2, Available: 1, Borrowed: 1}
	require.NoError(t, cache.PutAvailability(ctx, "1111111111", want))
	got, ok, err := cache.GetAvailability(ctx, "1111111111")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)

	ttl, err := client.TTL(ctx, availabilityKey("1111111111")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	stats := library.Stats{TotalMembers: 3, ActiveMembers: 2, TotalBooksInventory: 5, BorrowedBooks: 1, AvailableBooks: 4, UniqueTitles: 2}
	require.NoError(t, cache.PutStats(ctx, stats))
	gotStats, ok, err := cache.GetStats(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, stats, gotStats)
}
