package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ridedeck/internal/models"
	"ridedeck/pkg/cache"
	"ridedeck/pkg/logger"
)

func newRide() *models.Ride {
	return &models.Ride{
		ID:          primitive.NewObjectID(),
		RiderID:     primitive.NewObjectID(),
		Pickup:      models.Place{Address: "Sector 14"},
		Dropoff:     models.Place{Address: "Railway Station"},
		VehicleType: models.VehicleTypeAuto,
		Fare:        70,
		Status:      models.RideStatusSearching,
		OTP:         "4821",
		CreatedAt:   time.Now(),
	}
}

type recorder struct {
	mutex  sync.Mutex
	events []*models.RideEvent
}

func (r *recorder) handle(_ context.Context, event *models.RideEvent) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) len() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.events)
}

func TestLocalBroker_DeliversToAllSubscribers(t *testing.T) {
	broker := NewLocalBroker()
	first, second := &recorder{}, &recorder{}
	broker.Subscribe(first.handle)
	broker.Subscribe(second.handle)

	event := models.NewRideEvent(models.RideEventRequested, newRide())
	require.NoError(t, broker.Publish(context.Background(), event))

	assert.Equal(t, 1, first.len())
	assert.Equal(t, 1, second.len())
	assert.Same(t, event, first.events[0])
}

type fakeWriter struct {
	messages []kafkago.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	w.messages = append(w.messages, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaMirror_WritesKeyedMessage(t *testing.T) {
	inner := NewLocalBroker()
	rec := &recorder{}
	inner.Subscribe(rec.handle)

	writer := &fakeWriter{}
	mirror := newKafkaMirror(inner, writer, logger.Discard())

	ride := newRide()
	require.NoError(t, mirror.Publish(context.Background(), models.NewRideEvent(models.RideEventRequested, ride)))

	assert.Equal(t, 1, rec.len())
	require.Len(t, writer.messages, 1)
	assert.Equal(t, ride.ID.Hex(), string(writer.messages[0].Key))
	assert.Contains(t, string(writer.messages[0].Value), `"ride_requested"`)

	require.NoError(t, mirror.Close())
	assert.True(t, writer.closed)
}

func TestKafkaMirror_IgnoresWriterFailure(t *testing.T) {
	inner := NewLocalBroker()
	rec := &recorder{}
	inner.Subscribe(rec.handle)

	mirror := newKafkaMirror(inner, &fakeWriter{err: errors.New("broker down")}, logger.Discard())

	err := mirror.Publish(context.Background(), models.NewRideEvent(models.RideEventStarted, newRide()))
	assert.NoError(t, err)
	assert.Equal(t, 1, rec.len())
}

func TestRedisBroker_RoundTrip(t *testing.T) {
	redisCache := cache.NewTestRedisCache(t)
	broker := NewRedisBroker(redisCache, "ride_events_test", logger.Discard())

	rec := &recorder{}
	broker.Subscribe(rec.handle)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- broker.Run(ctx) }()

	ride := newRide()
	event := models.NewRideEvent(models.RideEventRequested, ride)

	// The subscription may not be live yet; publish until it is.
	require.Eventually(t, func() bool {
		_ = broker.Publish(context.Background(), event)
		return rec.len() > 0
	}, 3*time.Second, 50*time.Millisecond)

	rec.mutex.Lock()
	got := rec.events[0]
	rec.mutex.Unlock()
	assert.Equal(t, models.RideEventRequested, got.Type)
	assert.Equal(t, ride.ID, got.Ride.ID)
	assert.Equal(t, ride.OTP, got.Ride.OTP)

	cancel()
	assert.NoError(t, <-done)
}
