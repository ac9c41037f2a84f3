package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"
)

type GoogleMapsProvider struct {
	client *maps.Client
	region string
}

func NewGoogleMapsProvider(apiKey, region string) (*GoogleMapsProvider, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return &GoogleMapsProvider{
		client: client,
		region: region,
	}, nil
}

// Geocode returns the best match for the address.
func (g *GoogleMapsProvider) Geocode(ctx context.Context, address string) (*GeocodeResult, error) {
	req := &maps.GeocodingRequest{
		Address: address,
		Region:  g.region,
	}

	resp, err := g.client.Geocode(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("geocoding failed: %w", err)
	}
	if len(resp) == 0 {
		return nil, ErrNoResults
	}

	best := resp[0]
	return &GeocodeResult{
		PlaceID: best.PlaceID,
		Address: best.FormattedAddress,
		Coordinates: Location{
			Latitude:  best.Geometry.Location.Lat,
			Longitude: best.Geometry.Location.Lng,
		},
	}, nil
}
