package services

import (
	"context"
	"testing"
	"time"

	"ridedeck/internal/models"
	"ridedeck/pkg/cache"
	"ridedeck/pkg/logger"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeRedis struct {
	positions map[string]*redis.GeoPos
	counters  map[string]int64
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		positions: make(map[string]*redis.GeoPos),
		counters:  make(map[string]int64),
	}
}

func (f *fakeRedis) GeoAdd(_ context.Context, key string, loc *redis.GeoLocation) error {
	f.positions[key+"/"+loc.Name] = &redis.GeoPos{Longitude: loc.Longitude, Latitude: loc.Latitude}
	return nil
}

func (f *fakeRedis) GeoRemove(_ context.Context, key string, members ...string) error {
	for _, m := range members {
		delete(f.positions, key+"/"+m)
	}
	return nil
}

func (f *fakeRedis) GeoPosition(_ context.Context, key, member string) (*redis.GeoPos, error) {
	pos, ok := f.positions[key+"/"+member]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return pos, nil
}

func (f *fakeRedis) IncrementWindow(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	f.counters[key]++
	return f.counters[key], window, nil
}

func TestCacheService_DriverLocation(t *testing.T) {
	fake := newFakeRedis()
	svc := NewCacheService(fake, logger.Discard(), "ridedeck")
	ctx := context.Background()
	driverID := primitive.NewObjectID()

	require.NoError(t, svc.SetDriverLocation(ctx, driverID, &models.Coordinates{Lat: 28.9931, Lng: 77.0151}))
	assert.Contains(t, fake.positions, "ridedeck:drivers_geo/"+driverID.Hex())

	loc, err := svc.GetDriverLocation(ctx, driverID)
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.Equal(t, 28.9931, loc.Lat)

	require.NoError(t, svc.RemoveDriverLocation(ctx, driverID))
	loc, err = svc.GetDriverLocation(ctx, driverID)
	require.NoError(t, err)
	assert.Nil(t, loc)
}

func TestCacheService_CheckRateLimit(t *testing.T) {
	svc := NewCacheService(newFakeRedis(), logger.Discard(), "")
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		result, err := svc.CheckRateLimit(ctx, "book:127.0.0.1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Equal(t, int64(3-i), result.Remaining)
	}

	result, err := svc.CheckRateLimit(ctx, "book:127.0.0.1", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, time.Minute, result.RetryAfter)

	other, err := svc.CheckRateLimit(ctx, "book:10.0.0.1", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestNoopCacheService(t *testing.T) {
	svc := NewNoopCacheService()
	ctx := context.Background()

	assert.NoError(t, svc.SetDriverLocation(ctx, primitive.NewObjectID(), &models.Coordinates{}))
	result, err := svc.CheckRateLimit(ctx, "any", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestCacheService_AgainstRedis(t *testing.T) {
	redisCache := cache.NewTestRedisCache(t)
	svc := NewCacheService(redisCache, logger.Discard(), "test")
	ctx := context.Background()
	driverID := primitive.NewObjectID()

	require.NoError(t, svc.SetDriverLocation(ctx, driverID, &models.Coordinates{Lat: 28.9931, Lng: 77.0151}))
	loc, err := svc.GetDriverLocation(ctx, driverID)
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.InDelta(t, 28.9931, loc.Lat, 0.0001)
	assert.InDelta(t, 77.0151, loc.Lng, 0.0001)

	first, err := svc.CheckRateLimit(ctx, "k", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, first.Allowed)
	second, err := svc.CheckRateLimit(ctx, "k", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, second.Allowed)
	assert.Greater(t, second.RetryAfter, time.Duration(0))
}
