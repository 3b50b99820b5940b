package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLocker(client, time.Second), mr
}

func TestAcquireIsExclusive(t *testing.T) {
	locker, _ := newTestLocker(t)
	ctx := context.Background()

	ok, err := locker.Acquire(ctx, "vendor-1", "owner-a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = locker.Acquire(ctx, "vendor-1", "owner-b")
	require.NoError(t, err)
	assert.False(t, ok, "second caller must not get the same vendor lock")

	// a different vendor is an independent lock
	ok, err = locker.Acquire(ctx, "vendor-2", "owner-b")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReleaseAllowsReacquire(t *testing.T) {
	locker, _ := newTestLocker(t)
	ctx := context.Background()

	ok, err := locker.Acquire(ctx, "vendor-1", "owner-a")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, locker.Release(ctx, "vendor-1", "owner-a"))

	ok, err = locker.Acquire(ctx, "vendor-1", "owner-b")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReleaseIgnoresForeignOwner(t *testing.T) {
	locker, _ := newTestLocker(t)
	ctx := context.Background()

	ok, err := locker.Acquire(ctx, "vendor-1", "owner-a")
	require.NoError(t, err)
	require.True(t, ok)

	// a stale caller must not free someone else's lock
	require.NoError(t, locker.Release(ctx, "vendor-1", "owner-b"))

	ok, err = locker.Acquire(ctx, "vendor-1", "owner-c")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLockExpires(t *testing.T) {
	locker, mr := newTestLocker(t)
	ctx := context.Background()

	ok, err := locker.Acquire(ctx, "vendor-1", "owner-a")
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	ok, err = locker.Acquire(ctx, "vendor-1", "owner-b")
	require.NoError(t, err)
	assert.True(t, ok, "expired lock must be claimable")
}
