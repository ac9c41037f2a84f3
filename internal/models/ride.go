package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RideStatus string
type VehicleType string
type PaymentStatus string

const (
	RideStatusSearching RideStatus = "searching"
	RideStatusAccepted  RideStatus = "accepted"
	RideStatusStarted   RideStatus = "started"
	RideStatusCompleted RideStatus = "completed"
	RideStatusCancelled RideStatus = "cancelled"

	VehicleTypeBike VehicleType = "bike"
	VehicleTypeAuto VehicleType = "auto"
	VehicleTypeCab  VehicleType = "cab"

	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// ActiveRideStatuses are the non-terminal statuses.
var ActiveRideStatuses = []RideStatus{RideStatusSearching, RideStatusAccepted, RideStatusStarted}

// HistoryRideStatuses are the terminal statuses shown in ride history.
var HistoryRideStatuses = []RideStatus{RideStatusCompleted, RideStatusCancelled}

var rideTransitions = map[RideStatus][]RideStatus{
	RideStatusSearching: {RideStatusAccepted, RideStatusCancelled},
	RideStatusAccepted:  {RideStatusStarted, RideStatusCancelled},
	RideStatusStarted:   {RideStatusCompleted, RideStatusCancelled},
}

func (s RideStatus) IsValid() bool {
	switch s {
	case RideStatusSearching, RideStatusAccepted, RideStatusStarted, RideStatusCompleted, RideStatusCancelled:
		return true
	}
	return false
}

func (s RideStatus) IsTerminal() bool {
	return s == RideStatusCompleted || s == RideStatusCancelled
}

func (s RideStatus) IsActive() bool {
	return s.IsValid() && !s.IsTerminal()
}

func (s RideStatus) CanTransitionTo(next RideStatus) bool {
	for _, allowed := range rideTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PriorStatuses lists the statuses a ride may be in to move to target.
func PriorStatuses(target RideStatus) []RideStatus {
	var prior []RideStatus
	for from, targets := range rideTransitions {
		for _, t := range targets {
			if t == target {
				prior = append(prior, from)
			}
		}
	}
	return prior
}

func (v VehicleType) IsValid() bool {
	switch v {
	case VehicleTypeBike, VehicleTypeAuto, VehicleTypeCab:
		return true
	}
	return false
}

type Ride struct {
	ID               primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	RiderID          primitive.ObjectID  `json:"riderId" bson:"rider_id" validate:"required"`
	DriverID         *primitive.ObjectID `json:"driverId" bson:"driver_id"`
	Pickup           Place               `json:"pickup" bson:"pickup"`
	Dropoff          Place               `json:"dropoff" bson:"dropoff"`
	VehicleType      VehicleType         `json:"vehicleType" bson:"vehicle_type" validate:"required"`
	Fare             float64             `json:"fare" bson:"fare"`
	Status           RideStatus          `json:"status" bson:"status"`
	Active           bool                `json:"-" bson:"active"`
	OTP              string              `json:"otp,omitempty" bson:"otp"`
	PaymentStatus    PaymentStatus       `json:"paymentStatus,omitempty" bson:"payment_status,omitempty"`
	PaymentReference string              `json:"paymentReference,omitempty" bson:"payment_reference,omitempty"`
	AcceptedAt       *time.Time          `json:"acceptedAt,omitempty" bson:"accepted_at,omitempty"`
	StartedAt        *time.Time          `json:"startedAt,omitempty" bson:"started_at,omitempty"`
	CompletedAt      *time.Time          `json:"completedAt,omitempty" bson:"completed_at,omitempty"`
	CancelledAt      *time.Time          `json:"cancelledAt,omitempty" bson:"cancelled_at,omitempty"`
	CreatedAt        time.Time           `json:"createdAt" bson:"created_at"`
	UpdatedAt        time.Time           `json:"updatedAt" bson:"updated_at"`
}

func (r *Ride) InvolvesUser(userID primitive.ObjectID) bool {
	return r.RiderID == userID || (r.DriverID != nil && *r.DriverID == userID)
}

// WithoutOTP returns a copy that is safe to show to drivers.
func (r *Ride) WithoutOTP() *Ride {
	c := *r
	c.OTP = ""
	return &c
}

// RideDetails is a ride with its participants resolved.
type RideDetails struct {
	*Ride
	Rider  *UserSummary `json:"rider,omitempty"`
	Driver *UserSummary `json:"driver,omitempty"`
}

// RideTransition describes a conditional status change. The update only
// applies while the ride is in one of From (and, when set, its OTP equals
// RequireOTP).
type RideTransition struct {
	From        []RideStatus
	To          RideStatus
	DriverID    *primitive.ObjectID
	ClearDriver bool
	RequireOTP  string
	At          time.Time
}
