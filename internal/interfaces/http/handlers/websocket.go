// internal/interfaces/http/handlers/websocket.go
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-bff/internal/domain/cart"
	"github.com/your-org/storefront-bff/internal/socket"
)

// Maximum time to wait for a message from the client
const pongWait = 60 * time.Second

// Event types pushed to storefront tabs
const (
	EventCart   = "cart"
	EventLogout = "logout"
)

// Event is one websocket message
type Event struct {
	Type string         `json:"type"`
	Data *cart.Snapshot `json:"data,omitempty"`
}

// WebSocketHandler pushes cart snapshots to every open tab of a session
type WebSocketHandler struct {
	registry *cart.Registry
	hub      *socket.Hub
	upgrader websocket.Upgrader
	logger   logrus.FieldLogger
}

// NewWebSocketHandler creates a handler accepting connections from origins
func NewWebSocketHandler(registry *cart.Registry, hub *socket.Hub, checkOrigin func(r *http.Request) bool, logger logrus.FieldLogger) *WebSocketHandler {
	return &WebSocketHandler{
		registry: registry,
		hub:      hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		logger: logger,
	}
}

// ServeWs handles GET /cart/ws
func (h *WebSocketHandler) ServeWs(c *gin.Context) {
	session, ok := sessionKey(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to upgrade connection")
		return
	}

	client := socket.NewClient(conn)
	h.hub.Register(session, client)

	store := h.registry.Get(session)
	unsubscribe := store.Subscribe(func(snap cart.Snapshot) {
		if err := client.WriteJSON(Event{Type: EventCart, Data: &snap}); err != nil {
			client.Close()
		}
	})

	defer func() {
		unsubscribe()
		h.hub.Unregister(session, client)
		client.Close()
	}()

	// Initial state
	if err := store.EnsureLoaded(c.Request.Context()); err == nil {
		snap := store.Snapshot()
		_ = client.WriteJSON(Event{Type: EventCart, Data: &snap})
	}

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPingHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		// keep the session's store from idling out while a tab is open
		h.registry.Get(session)
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(time.Second))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.WithError(err).Debug("Unexpected websocket close")
			}
			break
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}
