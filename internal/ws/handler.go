package ws

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/leafbridge/leafbridge/internal/bridge"
	"github.com/leafbridge/leafbridge/internal/logging"
	"github.com/leafbridge/leafbridge/internal/monitoring"
	"github.com/leafbridge/leafbridge/internal/types"
	"github.com/leafbridge/leafbridge/internal/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // origin policy is enforced by the CORS layer
	},
}

// Command is a host frame mapped onto a bridge setter. The slice fields of
// the embedded MapMessage carry the payload for the matching type.
type Command struct {
	Type string `json:"type"`
	types.MapMessage
}

// Handler relays host commands into the bridge and decoded engine events
// back to every connected host client.
type Handler struct {
	bridge  *bridge.Bridge
	log     *logging.Logger
	metrics *monitoring.Metrics

	mu      sync.Mutex
	clients map[string]*client
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex // serializes writes
}

func (c *client) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// NewHandler creates a websocket relay for the given bridge.
func NewHandler(b *bridge.Bridge, log *logging.Logger, metrics *monitoring.Metrics) *Handler {
	return &Handler{
		bridge:  b,
		log:     log,
		metrics: metrics,
		clients: make(map[string]*client),
	}
}

// Broadcast forwards a decoded engine event to every connected client.
// Wire this as the bridge's message handler.
func (h *Handler) Broadcast(msg types.WebviewLeafletMessage) {
	frame := gin.H{"type": "mapEvent", "message": msg}

	h.mu.Lock()
	targets := make([]*client, 0, len(h.clients))
	for _, cl := range h.clients {
		targets = append(targets, cl)
	}
	h.mu.Unlock()

	for _, cl := range targets {
		if err := cl.writeJSON(frame); err != nil {
			h.log.Debug("websocket write failed", zap.Error(err))
			continue
		}
		h.metrics.WSMessages.WithLabelValues("out").Inc()
	}
}

// HandleConnection upgrades the request and runs the command loop.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	clientID := uuid.NewString()
	cl := &client{conn: conn}
	h.mu.Lock()
	h.clients[clientID] = cl
	h.mu.Unlock()
	h.metrics.WSConnections.Inc()

	defer func() {
		h.mu.Lock()
		delete(h.clients, clientID)
		h.mu.Unlock()
		h.metrics.WSConnections.Dec()
		conn.Close()
	}()

	cl.writeJSON(gin.H{
		"type":    "system",
		"message": "connected to leafbridge",
		"client":  clientID,
	})

	conn.SetReadLimit(utils.MaxPayloadBytes)
	for {
		var cmd Command
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug("websocket read error", zap.String("client", clientID), zap.Error(err))
			}
			return
		}
		h.metrics.WSMessages.WithLabelValues("in").Inc()
		h.handleCommand(cl, cmd)
	}
}

func (h *Handler) handleCommand(cl *client, cmd Command) {
	switch cmd.Type {
	case "setMapState":
		if cmd.MapMessage.IsEmpty() {
			h.sendError(cl, "state update carries no slices")
			return
		}
		h.applyState(cmd.MapMessage)
	case "setMapLayers":
		h.bridge.SetMapLayers(cmd.MapLayers)
	case "setMapMarkers":
		h.bridge.SetMapMarkers(cmd.MapMarkers)
	case "setMapShapes":
		h.bridge.SetMapShapes(cmd.MapShapes)
	case "setMapCenterPosition":
		if cmd.MapCenterPosition == nil {
			h.sendError(cl, "mapCenterPosition required")
			return
		}
		h.bridge.SetMapCenterPosition(*cmd.MapCenterPosition)
	case "setZoom":
		if cmd.Zoom == nil {
			h.sendError(cl, "zoom required")
			return
		}
		h.bridge.SetZoom(*cmd.Zoom)
	case "setOwnPositionMarker":
		h.bridge.SetOwnPositionMarker(cmd.OwnPositionMarker)
	case "ping":
		cl.writeJSON(gin.H{"type": "pong"})
	default:
		h.sendError(cl, "unknown command type")
	}
}

// applyState routes each populated slice of a bulk update to its setter.
// The bridge still diffs and dispatches per slice.
func (h *Handler) applyState(msg types.MapMessage) {
	if msg.MapLayers != nil {
		h.bridge.SetMapLayers(msg.MapLayers)
	}
	if msg.MapMarkers != nil {
		h.bridge.SetMapMarkers(msg.MapMarkers)
	}
	if msg.MapShapes != nil {
		h.bridge.SetMapShapes(msg.MapShapes)
	}
	if msg.MapCenterPosition != nil {
		h.bridge.SetMapCenterPosition(*msg.MapCenterPosition)
	}
	if msg.Zoom != nil {
		h.bridge.SetZoom(*msg.Zoom)
	}
	if msg.OwnPositionMarker != nil {
		h.bridge.SetOwnPositionMarker(msg.OwnPositionMarker)
	}
}

func (h *Handler) sendError(cl *client, msg string) {
	cl.writeJSON(gin.H{"type": "error", "message": msg})
}
