// internal/socket/hub.go
package socket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const writeWait = 10 * time.Second

// Client is one open websocket. A shopper may have several tabs open, so a
// session maps to many clients.
type Client struct {
	conn *websocket.Conn
	// gorilla connections allow one concurrent writer
	writeMu sync.Mutex
}

// NewClient wraps an upgraded connection
func NewClient(conn *websocket.Conn) *Client {
	return &Client{conn: conn}
}

// WriteJSON sends v as one text frame
func (c *Client) WriteJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(v)
}

// Close closes the connection
func (c *Client) Close() error {
	return c.conn.Close()
}

// Hub tracks the open websockets of every cart session
type Hub struct {
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
	logger  logrus.FieldLogger
}

// NewHub creates an empty hub
func NewHub(logger logrus.FieldLogger) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client to a session
func (h *Hub) Register(session string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[session] == nil {
		h.clients[session] = make(map[*Client]struct{})
	}
	h.clients[session][client] = struct{}{}
	h.logger.WithField("session", session).Debug("WebSocket client registered")
}

// Unregister removes a client from a session
func (h *Hub) Unregister(session string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[session]
	if !ok {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.clients, session)
	}
	h.logger.WithField("session", session).Debug("WebSocket client unregistered")
}

// Count returns the number of open clients of a session
func (h *Hub) Count(session string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[session])
}

// Broadcast sends v to every client of a session. Clients that fail to
// receive are dropped; their read loops notice the closed connection.
func (h *Hub) Broadcast(session string, v interface{}) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients[session]))
	for client := range h.clients[session] {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		if err := client.WriteJSON(v); err != nil {
			h.logger.WithError(err).WithField("session", session).Debug("Dropping WebSocket client")
			h.Unregister(session, client)
			client.Close()
		}
	}
}

// CloseSession closes every client of a session, e.g. on logout
func (h *Hub) CloseSession(session string) {
	h.mu.Lock()
	clients := h.clients[session]
	delete(h.clients, session)
	h.mu.Unlock()

	for client := range clients {
		client.Close()
	}
}
