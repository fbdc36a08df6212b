package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestMemorySessionStoreExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewMemorySessionStore(clock.Now)

	require.NoError(t, s.Set(ctx, "auth_t1", "user-1", 24*time.Hour))

	val, ok, err := s.Get(ctx, "auth_t1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "user-1", val)

	clock.Advance(24*time.Hour - time.Second)
	_, ok, err = s.Get(ctx, "auth_t1")
	require.NoError(t, err)
	require.True(t, ok, "key should still be live just before expiry")

	clock.Advance(time.Second)
	_, ok, err = s.Get(ctx, "auth_t1")
	require.NoError(t, err)
	require.False(t, ok, "expired key must read as absent")
}

func TestMemorySessionStoreDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySessionStore(nil)

	require.NoError(t, s.Set(ctx, "k", "v", time.Minute))
	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.Delete(ctx, "k"))

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisSessionStoreSetGetDelete(t *testing.T) {
	ctx := context.Background()
	redis := miniredis.RunT(t)
	s := NewRedisSessionStore(redis.Addr(), "")
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Set(ctx, "auth_t1", "user-1", time.Minute))
	require.Equal(t, time.Minute, redis.TTL("auth_t1"))

	val, ok, err := s.Get(ctx, "auth_t1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "user-1", val)

	require.NoError(t, s.Delete(ctx, "auth_t1"))
	require.NoError(t, s.Delete(ctx, "auth_t1"))
	_, ok, err = s.Get(ctx, "auth_t1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisSessionStoreExpiry(t *testing.T) {
	ctx := context.Background()
	redis := miniredis.RunT(t)
	s := NewRedisSessionStore(redis.Addr(), "")
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Set(ctx, "auth_t2", "user-2", 86400*time.Second))
	redis.FastForward(86400 * time.Second)

	_, ok, err := s.Get(ctx, "auth_t2")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisSessionStorePingFailsWhenDown(t *testing.T) {
	redis := miniredis.RunT(t)
	s := NewRedisSessionStore(redis.Addr(), "")
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Ping(context.Background()))
	redis.Close()
	require.Error(t, s.Ping(context.Background()))
}
