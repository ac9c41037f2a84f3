package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedRide struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func TestSetGetDelete(t *testing.T) {
	c := NewTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "ride:1", cachedRide{ID: "1", Status: "searching"}, time.Minute))

	var got cachedRide
	require.NoError(t, c.Get(ctx, "ride:1", &got))
	assert.Equal(t, "searching", got.Status)

	require.NoError(t, c.Delete(ctx, "ride:1"))
	assert.ErrorIs(t, c.Get(ctx, "ride:1", &got), ErrCacheMiss)
}

func TestIncrementWindow(t *testing.T) {
	c := NewTestRedisCache(t)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		count, ttl, err := c.IncrementWindow(ctx, "rl:test", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, count)
		assert.True(t, ttl > 0 && ttl <= time.Minute)
	}
}

func TestGeoPresence(t *testing.T) {
	c := NewTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.GeoAdd(ctx, "drivers:online", &redis.GeoLocation{Name: "d1", Latitude: 28.9931, Longitude: 77.0151}))

	pos, err := c.GeoPosition(ctx, "drivers:online", "d1")
	require.NoError(t, err)
	assert.InDelta(t, 28.9931, pos.Latitude, 0.001)

	require.NoError(t, c.GeoRemove(ctx, "drivers:online", "d1"))
	_, err = c.GeoPosition(ctx, "drivers:online", "d1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestPublishSubscribe(t *testing.T) {
	c := NewTestRedisCache(t)
	ctx := context.Background()

	sub := c.Subscribe(ctx, "ride_events_test")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, c.Publish(ctx, "ride_events_test", cachedRide{ID: "9"}))

	select {
	case msg := <-sub.Channel():
		assert.JSONEq(t, `{"id":"9","status":""}`, msg.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}
