package models

// Coordinates is a plain lat/lng pair.
type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// Place is a pickup or dropoff point. Coordinates are only known when the
// address could be geocoded.
type Place struct {
	Address string   `json:"address" bson:"address"`
	Lat     *float64 `json:"lat,omitempty" bson:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty" bson:"lng,omitempty"`
}

func (p Place) HasCoordinates() bool {
	return p.Lat != nil && p.Lng != nil
}

func (p *Place) SetCoordinates(lat, lng float64) {
	p.Lat = &lat
	p.Lng = &lng
}
