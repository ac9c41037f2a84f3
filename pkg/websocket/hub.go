package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"ridedeck/pkg/logger"
)

const (
	RoomDrivers = "drivers"

	MessageWelcome = "welcome"
	MessagePong    = "pong"
	MessageError   = "error"
)

// UserRoom is the personal room every connected user joins.
func UserRoom(userID primitive.ObjectID) string {
	return "user_" + userID.Hex()
}

// RideRoom is joined on request by participants of a ride.
func RideRoom(rideID primitive.ObjectID) string {
	return "ride_" + rideID.Hex()
}

type Message struct {
	Type      string      `json:"type"`
	RoomID    string      `json:"roomId,omitempty"`
	UserID    string      `json:"userId,omitempty"`
	Timestamp int64       `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

type roomMessage struct {
	rooms []string
	data  []byte
}

type Hub struct {
	clients    map[*Client]bool
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan roomMessage
	done       chan struct{}
	mutex      sync.RWMutex
	logger     *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan roomMessage, 256),
		done:       make(chan struct{}),
		logger:     log,
	}
}

// Run processes registrations and deliveries until ctx is cancelled, then
// closes every remaining connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

// Register hands a client to the hub. It reports false once the hub has
// stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	h.clients[client] = true
	h.joinRoom(client, UserRoom(client.UserID))
	if client.IsDriver() {
		h.joinRoom(client, RoomDrivers)
	}
	rooms := client.roomList()
	h.mutex.Unlock()

	h.logger.WithUserID(client.UserID).WithField("role", client.Role).Debug("WebSocket client registered")

	h.sendToClient(client, Message{
		Type:      MessageWelcome,
		UserID:    client.UserID.Hex(),
		Timestamp: currentTimestamp(),
		Data: map[string]interface{}{
			"message": "Connected successfully",
			"rooms":   rooms,
		},
	})
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.removeClient(client) {
		h.logger.WithUserID(client.UserID).Debug("WebSocket client unregistered")
	}
}

// removeClient must be called with the write lock held.
func (h *Hub) removeClient(client *Client) bool {
	if _, ok := h.clients[client]; !ok {
		return false
	}

	delete(h.clients, client)
	close(client.send)

	for roomID := range client.rooms {
		if room, exists := h.rooms[roomID]; exists {
			delete(room, client)
			if len(room) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
	return true
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client := range h.clients {
		h.removeClient(client)
	}
}

func (h *Hub) deliver(msg roomMessage) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	seen := make(map[*Client]bool)
	for _, roomID := range msg.rooms {
		for client := range h.rooms[roomID] {
			if seen[client] {
				continue
			}
			seen[client] = true

			select {
			case client.send <- msg.data:
			default:
				// Slow consumer; drop it rather than block the hub.
				h.logger.WithUserID(client.UserID).Warn("WebSocket send buffer full, dropping client")
				h.removeClient(client)
			}
		}
	}
}

func (h *Hub) sendToClient(client *Client, message Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal websocket message")
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	select {
	case client.send <- data:
	default:
		h.removeClient(client)
	}
}

// SendToRooms queues a message for every client in any of the given rooms.
// A client in several of them receives it once.
func (h *Hub) SendToRooms(message Message, rooms ...string) {
	if len(rooms) == 0 {
		return
	}
	if message.Timestamp == 0 {
		message.Timestamp = currentTimestamp()
	}

	data, err := json.Marshal(message)
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal websocket message")
		return
	}

	select {
	case h.broadcast <- roomMessage{rooms: rooms, data: data}:
	default:
		h.logger.WithField("type", message.Type).Warn("WebSocket broadcast queue full, message dropped")
	}
}

func (h *Hub) SendToUser(userID primitive.ObjectID, message Message) {
	h.SendToRooms(message, UserRoom(userID))
}

func (h *Hub) SendToDrivers(message Message) {
	h.SendToRooms(message, RoomDrivers)
}

func (h *Hub) SendRideUpdate(rideID primitive.ObjectID, message Message) {
	message.RoomID = RideRoom(rideID)
	h.SendToRooms(message, message.RoomID)
}

func (h *Hub) JoinRoom(client *Client, roomID string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	h.joinRoom(client, roomID)
}

// joinRoom must be called with the write lock held.
func (h *Hub) joinRoom(client *Client, roomID string) {
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
	client.rooms[roomID] = true
}

func (h *Hub) LeaveRoom(client *Client, roomID string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if room, exists := h.rooms[roomID]; exists {
		delete(room, client)
		delete(client.rooms, roomID)

		if len(room) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// RoomSize reports the number of clients in a room.
func (h *Hub) RoomSize(roomID string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.rooms[roomID])
}

func currentTimestamp() int64 {
	return time.Now().Unix()
}
