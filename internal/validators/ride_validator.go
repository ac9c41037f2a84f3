package validators

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// PlaceInput accepts either a bare address string or an
// {"address", "lat", "lng"} object.
type PlaceInput struct {
	Address string   `json:"address" validate:"required,max=255"`
	Lat     *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lng     *float64 `json:"lng" validate:"omitempty,gte=-180,lte=180"`
}

func (p *PlaceInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var address string
		if err := json.Unmarshal(data, &address); err != nil {
			return err
		}
		p.Address = strings.TrimSpace(address)
		return nil
	}

	type place PlaceInput
	var decoded place
	if err := json.Unmarshal(data, &decoded); err != nil {
		return errors.New("place must be an address string or an object with an address")
	}
	*p = PlaceInput(decoded)
	p.Address = strings.TrimSpace(p.Address)
	return nil
}

type BookRideRequest struct {
	RiderID     string     `json:"riderId" validate:"required,object_id"`
	Pickup      PlaceInput `json:"pickup" validate:"required"`
	Dropoff     PlaceInput `json:"dropoff" validate:"required"`
	VehicleType string     `json:"vehicleType" validate:"required,vehicle_type"`
	Fare        *float64   `json:"fare" validate:"omitempty,gte=0"`
}

type AcceptRideRequest struct {
	RideID   string `json:"rideId" validate:"required,object_id"`
	DriverID string `json:"driverId" validate:"required,object_id"`
}

type UpdateRideStatusRequest struct {
	RideID string `json:"rideId" validate:"required,object_id"`
	Status string `json:"status" validate:"required,ride_status"`
	OTP    string `json:"otp" validate:"omitempty,max=10"`
}
