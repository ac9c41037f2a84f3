package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newBufferedLogger(t *testing.T) (*Logger, *bytes.Buffer) {
	t.Helper()
	log, err := NewLogger(&Config{Level: DebugLevel, Format: "json", AppName: "ride-deck"})
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	return log, buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	return line
}

func TestWithFieldDoesNotMutateParent(t *testing.T) {
	log, buf := newBufferedLogger(t)

	child := log.WithField("component", "rides")
	log.Info("parent")
	parent := decodeLine(t, buf)
	assert.NotContains(t, parent, "component")

	buf.Reset()
	child.Info("child")
	line := decodeLine(t, buf)
	assert.Equal(t, "rides", line["component"])
	assert.Equal(t, "ride-deck", line["app"])
}

func TestLogRideEvent(t *testing.T) {
	log, buf := newBufferedLogger(t)
	rideID := primitive.NewObjectID()

	log.LogRideEvent(rideID, "ride_accepted", map[string]interface{}{"driver_id": primitive.NewObjectID()})

	line := decodeLine(t, buf)
	assert.Equal(t, rideID.Hex(), line["ride_id"])
	assert.Equal(t, "ride_event", line["type"])
	assert.IsType(t, "", line["driver_id"])
}

func TestWithContextPicksUpRequestID(t *testing.T) {
	log, buf := newBufferedLogger(t)
	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")

	log.WithContext(ctx).Warn("slow")

	line := decodeLine(t, buf)
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "warning", line["level"])
}
