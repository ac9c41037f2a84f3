package websocket

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 256

	RoleDriver = "driver"
)

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	config *Config
	guard  RoomGuard
	UserID primitive.ObjectID
	Role   string
	rooms  map[string]bool
}

// inboundMessage is what clients may send over the socket.
type inboundMessage struct {
	Type   string `json:"type"`
	RideID string `json:"rideId"`
}

func NewClient(hub *Hub, conn *websocket.Conn, config *Config, userID primitive.ObjectID, role string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		config: config,
		UserID: userID,
		Role:   role,
		rooms:  make(map[string]bool),
	}
}

func (c *Client) IsDriver() bool {
	return c.Role == RoleDriver
}

// roomList must be called with the hub lock held.
func (c *Client) roomList() []string {
	rooms := make([]string, 0, len(c.rooms))
	for room := range c.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.config.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.config.PongTimeout))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.WithUserID(c.UserID).WithError(err).Warn("WebSocket read error")
			}
			break
		}

		c.handleMessage(message)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(message []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.reply(MessageError, map[string]interface{}{"message": "Invalid message"})
		return
	}

	switch msg.Type {
	case "ping":
		c.reply(MessagePong, nil)

	case "join_ride":
		rideID, err := primitive.ObjectIDFromHex(msg.RideID)
		if err != nil {
			c.reply(MessageError, map[string]interface{}{"message": "Invalid ride ID"})
			return
		}
		if c.guard == nil || !c.guard(c.UserID, rideID) {
			c.reply(MessageError, map[string]interface{}{"message": "Not a participant of this ride"})
			return
		}
		c.hub.JoinRoom(c, RideRoom(rideID))
		c.reply("joined_ride", map[string]interface{}{"rideId": rideID.Hex()})

	case "leave_ride":
		rideID, err := primitive.ObjectIDFromHex(msg.RideID)
		if err != nil {
			c.reply(MessageError, map[string]interface{}{"message": "Invalid ride ID"})
			return
		}
		c.hub.LeaveRoom(c, RideRoom(rideID))

	default:
		c.reply(MessageError, map[string]interface{}{"message": "Unknown message type"})
	}
}

func (c *Client) reply(messageType string, data interface{}) {
	c.hub.sendToClient(c, Message{
		Type:      messageType,
		UserID:    c.UserID.Hex(),
		Timestamp: currentTimestamp(),
		Data:      data,
	})
}
