package cache

import (
	"context"
	"delivery-dispatch-service/internal/domain"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisPlanCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisPlanCache(client, time.Hour, zerolog.Nop()), mr
}

func testSnapshot() domain.PlanSnapshot {
	return domain.PlanSnapshot{
		Fingerprint: "abc123",
		Trucks: []domain.TruckState{
			{TruckID: 1, DepartAt: domain.Clock(8, 0), PackageIDs: []int{1, 2}, Route: []int{0, 2, 1, 0}, BestDistance: 14.5},
		},
		Packages: []domain.PackageState{
			{PackageID: 1, TruckID: 1, DispatchedAt: domain.Clock(8, 0), DeliveredAt: domain.Clock(8, 40)},
			{PackageID: 2, TruckID: 1, DispatchedAt: domain.Clock(8, 0), DeliveredAt: domain.NotYet},
		},
	}
}

func TestRedisPlanCacheMiss(t *testing.T) {
	c, _ := newTestCache(t)

	_, ok, err := c.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisPlanCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	want := testSnapshot()
	require.NoError(t, c.Put(ctx, want))

	got, ok, err := c.Get(ctx, want.Fingerprint)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	assert.True(t, mr.Exists("wgups:plan:abc123"))
	assert.Equal(t, time.Hour, mr.TTL("wgups:plan:abc123"))
}

func TestRedisPlanCacheExpires(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)
	require.NoError(t, c.Put(ctx, testSnapshot()))

	mr.FastForward(2 * time.Hour)

	_, ok, err := c.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisPlanCacheRejectsEmptyFingerprint(t *testing.T) {
	c, _ := newTestCache(t)

	require.Error(t, c.Put(context.Background(), domain.PlanSnapshot{}))
	_, _, err := c.Get(context.Background(), " ")
	require.Error(t, err)
}

func TestRedisPlanCacheCorruptEntry(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("wgups:plan:bad", "{not json"))

	_, _, err := c.Get(context.Background(), "bad")
	require.Error(t, err)
}
