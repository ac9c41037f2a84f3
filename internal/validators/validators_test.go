package validators

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRegisterRequestValidation(t *testing.T) {
	req := &RegisterRequest{Name: "Asha", Phone: "9876543210", VehicleType: "bike"}
	req.Normalize()
	assert.Empty(t, ValidateStruct(req))
	assert.Equal(t, "rider", req.Role)

	bad := &RegisterRequest{Name: "A", Phone: "abc", Role: "pilot", VehicleType: "truck"}
	errs := ValidateStruct(bad)
	details := errs.Details()
	assert.Contains(t, details, "name")
	assert.Contains(t, details, "phone")
	assert.Contains(t, details, "role")
	assert.Contains(t, details, "vehicleType")
}

func TestPlaceInputAcceptsStringOrObject(t *testing.T) {
	var req BookRideRequest
	body := `{"riderId":"` + primitive.NewObjectID().Hex() + `","pickup":" Sector 14 ","dropoff":{"address":"Murthal","lat":29.02,"lng":77.07},"vehicleType":"auto"}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	assert.Equal(t, "Sector 14", req.Pickup.Address)
	assert.Nil(t, req.Pickup.Lat)
	assert.Equal(t, "Murthal", req.Dropoff.Address)
	require.NotNil(t, req.Dropoff.Lat)
	assert.Equal(t, 29.02, *req.Dropoff.Lat)
	assert.Empty(t, ValidateStruct(&req))
}

func TestBookRideRequestRequiresAddresses(t *testing.T) {
	req := &BookRideRequest{RiderID: "nope", VehicleType: "cab"}
	details := ValidateStruct(req).Details()
	assert.Contains(t, details, "riderId")
	assert.Contains(t, details, "address")
}

func TestUpdateRideStatusRejectsUnknownStatus(t *testing.T) {
	id := primitive.NewObjectID().Hex()
	assert.Empty(t, ValidateStruct(&UpdateRideStatusRequest{RideID: id, Status: "started", OTP: "1234"}))
	assert.NotEmpty(t, ValidateStruct(&UpdateRideStatusRequest{RideID: id, Status: "accepted"}))
	assert.NotEmpty(t, ValidateStruct(&UpdateRideStatusRequest{RideID: id, Status: "searching"}))
}

func TestDriverStatusRequiresFlag(t *testing.T) {
	id := primitive.NewObjectID().Hex()
	assert.NotEmpty(t, ValidateStruct(&DriverStatusRequest{UserID: id}))

	offline := false
	assert.Empty(t, ValidateStruct(&DriverStatusRequest{UserID: id, IsOnline: &offline}))
}

func TestUpdateProfileEmail(t *testing.T) {
	empty, bad, good := "", "not-an-email", "asha@example.com"
	assert.True(t, (&UpdateProfileRequest{Email: &empty}).ValidateEmail())
	assert.False(t, (&UpdateProfileRequest{Email: &bad}).ValidateEmail())
	assert.True(t, (&UpdateProfileRequest{Email: &good}).ValidateEmail())
}
