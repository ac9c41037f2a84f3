package maps

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"
)

func newTestProvider(t *testing.T, body string) *GoogleMapsProvider {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Murthal", r.URL.Query().Get("address"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	client, err := maps.NewClient(maps.WithAPIKey("test-key"), maps.WithBaseURL(server.URL))
	require.NoError(t, err)
	return &GoogleMapsProvider{client: client, region: "in"}
}

func TestGeocodeReturnsFirstResult(t *testing.T) {
	p := newTestProvider(t, `{
		"status": "OK",
		"results": [
			{"place_id": "abc", "formatted_address": "Murthal, Haryana", "geometry": {"location": {"lat": 29.03, "lng": 77.07}}},
			{"place_id": "def", "formatted_address": "Elsewhere", "geometry": {"location": {"lat": 1, "lng": 2}}}
		]
	}`)

	result, err := p.Geocode(context.Background(), "Murthal")
	require.NoError(t, err)
	assert.Equal(t, "abc", result.PlaceID)
	assert.Equal(t, 29.03, result.Coordinates.Latitude)
	assert.Equal(t, 77.07, result.Coordinates.Longitude)
}

func TestGeocodeNoResults(t *testing.T) {
	p := newTestProvider(t, `{"status": "ZERO_RESULTS", "results": []}`)

	_, err := p.Geocode(context.Background(), "Murthal")
	assert.ErrorIs(t, err, ErrNoResults)
}
