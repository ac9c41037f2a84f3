package websocket

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ridedeck/pkg/logger"
)

// Gin context keys set by the authentication middleware.
const (
	ContextUserID   = "user_id"
	ContextUserRole = "user_role"
)

type Config struct {
	ReadBufferSize    int
	WriteBufferSize   int
	HandshakeTimeout  time.Duration
	PingInterval      time.Duration
	PongTimeout       time.Duration
	MaxMessageSize    int64
	EnableCompression bool
	AllowedOrigins    []string
}

func DefaultConfig() *Config {
	return &Config{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		HandshakeTimeout: 10 * time.Second,
		PingInterval:     54 * time.Second,
		PongTimeout:      60 * time.Second,
		MaxMessageSize:   4096,
		AllowedOrigins:   []string{"*"},
	}
}

// RoomGuard decides whether a user may join the room of a ride.
type RoomGuard func(userID, rideID primitive.ObjectID) bool

type Handler struct {
	hub      *Hub
	config   *Config
	upgrader websocket.Upgrader
	guard    RoomGuard
	logger   *logger.Logger
}

func NewHandler(hub *Hub, config *Config, guard RoomGuard, log *logger.Logger) *Handler {
	if config == nil {
		config = DefaultConfig()
	}

	return &Handler{
		hub:    hub,
		config: config,
		guard:  guard,
		logger: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:    config.ReadBufferSize,
			WriteBufferSize:   config.WriteBufferSize,
			HandshakeTimeout:  config.HandshakeTimeout,
			EnableCompression: config.EnableCompression,
			CheckOrigin:       originChecker(config.AllowedOrigins),
		},
	}
}

// HandleWebSocket upgrades an authenticated request. Without an auth
// middleware in front, the user is taken from the userId and role query
// parameters.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	userID, role, ok := h.identify(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Unauthorized"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	client := NewClient(h.hub, conn, h.config, userID, role)
	client.guard = h.guard
	if !h.hub.Register(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (h *Handler) identify(c *gin.Context) (primitive.ObjectID, string, bool) {
	role := c.GetString(ContextUserRole)

	if value, exists := c.Get(ContextUserID); exists {
		switch id := value.(type) {
		case primitive.ObjectID:
			return id, role, true
		case string:
			oid, err := primitive.ObjectIDFromHex(id)
			return oid, role, err == nil
		}
		return primitive.NilObjectID, "", false
	}

	oid, err := primitive.ObjectIDFromHex(c.Query("userId"))
	if err != nil {
		return primitive.NilObjectID, "", false
	}
	return oid, c.Query("role"), true
}

func (h *Handler) Hub() *Hub {
	return h.hub
}

func originChecker(allowed []string) func(r *http.Request) bool {
	origins := make(map[string]bool, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		origins[origin] = true
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || origins[origin]
	}
}
