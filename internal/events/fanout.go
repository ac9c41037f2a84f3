package events

import (
	"context"

	"ridedeck/internal/models"
	"ridedeck/pkg/websocket"
)

// HubDispatcher returns a handler that pushes ride events to websocket rooms.
// The rider receives the full ride. Drivers and the ride room get a copy
// without the OTP.
func HubDispatcher(hub *websocket.Hub) Handler {
	return func(_ context.Context, event *models.RideEvent) {
		if event == nil || event.Ride == nil {
			return
		}
		ride := event.Ride
		timestamp := event.Timestamp.Unix()

		hub.SendToUser(ride.RiderID, websocket.Message{
			Type:      string(event.Type),
			Timestamp: timestamp,
			Data:      ride,
		})

		public := websocket.Message{
			Type:      string(event.Type),
			Timestamp: timestamp,
			Data:      ride.WithoutOTP(),
		}

		var rooms []string
		if notifiesDriverFeed(event) {
			rooms = append(rooms, websocket.RoomDrivers)
		}
		if ride.DriverID != nil {
			rooms = append(rooms, websocket.UserRoom(*ride.DriverID))
		}
		if event.PreviousDriverID != nil {
			rooms = append(rooms, websocket.UserRoom(*event.PreviousDriverID))
		}
		hub.SendToRooms(public, rooms...)

		public.RoomID = websocket.RideRoom(ride.ID)
		hub.SendToRooms(public, public.RoomID)
	}
}

// notifiesDriverFeed reports whether the set of searching rides changed.
func notifiesDriverFeed(event *models.RideEvent) bool {
	switch event.Type {
	case models.RideEventRequested, models.RideEventAccepted:
		return true
	case models.RideEventCancelled:
		return event.Ride.AcceptedAt == nil
	}
	return false
}
