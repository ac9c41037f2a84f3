package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_Independent(t *testing.T) {
	first := NewMetrics("ridedeck")
	second := NewMetrics("ridedeck")

	first.RecordRideTransition("accepted")
	first.RecordRideTransition("accepted")
	second.RecordRideTransition("accepted")

	assert.Equal(t, 2.0, testutil.ToFloat64(first.RideTransitionsTotal.WithLabelValues("accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(second.RideTransitionsTotal.WithLabelValues("accepted")))
}

func TestRecorders(t *testing.T) {
	m := NewMetrics("ridedeck")

	m.RecordBookingRejected("active_ride")
	m.RecordCascadeCancelled(3)
	m.RecordPayment("mock", "ride", "succeeded")
	m.RecordSMS("log", "sent")
	m.RecordRateLimited("/api/rides/book")
	m.RecordHTTPRequest("GET", "/api/rides/available", "200", 20*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingsRejectedTotal.WithLabelValues("active_ride")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.RidesCascadeCancelled))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PaymentsTotal.WithLabelValues("mock", "ride", "succeeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SMSTotal.WithLabelValues("log", "sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimited.WithLabelValues("/api/rides/book")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/rides/available", "200")))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	m := NewMetrics("ridedeck")
	m.RecordRideTransition("completed")
	m.ObserveWebSocketClients("ridedeck", func() int { return 4 })

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `ridedeck_ride_transitions_total{status="completed"} 1`)
	assert.Contains(t, string(body), "ridedeck_websocket_connections_active 4")
}
