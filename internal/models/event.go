package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RideEventType string

const (
	RideEventRequested RideEventType = "ride_requested"
	RideEventAccepted  RideEventType = "ride_accepted"
	RideEventStarted   RideEventType = "ride_started"
	RideEventCompleted RideEventType = "ride_completed"
	RideEventCancelled RideEventType = "ride_cancelled"
)

type RideEvent struct {
	Type RideEventType `json:"type"`
	Ride *Ride         `json:"ride"`
	// PreviousDriverID is set when the event removed the assigned driver.
	PreviousDriverID *primitive.ObjectID `json:"previousDriverId,omitempty"`
	Timestamp        time.Time           `json:"timestamp"`
}

func NewRideEvent(eventType RideEventType, ride *Ride) *RideEvent {
	return &RideEvent{
		Type:      eventType,
		Ride:      ride,
		Timestamp: time.Now(),
	}
}

// RideEventForStatus maps a status reached by a transition to its event.
func RideEventForStatus(status RideStatus) RideEventType {
	switch status {
	case RideStatusAccepted:
		return RideEventAccepted
	case RideStatusStarted:
		return RideEventStarted
	case RideStatusCompleted:
		return RideEventCompleted
	case RideStatusCancelled:
		return RideEventCancelled
	}
	return RideEventRequested
}
