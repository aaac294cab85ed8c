// Package ws fans status envelopes out to WebSocket connections subscribed
// to a project.
package ws

import (
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/beaconhq/beacon/pkg/domain/events"
)

const sendBuffer = 64

type client struct {
	id        string
	projectID string
	conn      *websocket.Conn
	send      chan events.Envelope
}

// Hub tracks subscribed connections and delivers published envelopes to the
// ones watching the envelope's project.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
}

// NewHub creates a hub subscribed to the publisher.
func NewHub(publisher events.Publisher) *Hub {
	h := &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}

	publisher.Subscribe(func(env events.Envelope) error {
		h.broadcast(env)
		return nil
	})

	return h
}

func (h *Hub) broadcast(env events.Envelope) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.projectID != "" && c.projectID != env.ProjectID {
			continue
		}
		select {
		case c.send <- env:
		default:
			// Drop if client is slow
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the connection and streams envelopes for the project
// given in the projectId query param. An empty projectId subscribes to every
// project.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}

	c := &client{
		id:        uuid.NewString(),
		projectID: r.URL.Query().Get("projectId"),
		conn:      conn,
		send:      make(chan events.Envelope, sendBuffer),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) writePump(c *client) {
	for env := range c.send {
		if err := c.conn.WriteJSON(env); err != nil {
			return
		}
	}
}

// readPump drains the connection until the peer goes away, then detaches the
// client. Inbound messages carry no meaning on this endpoint.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
		close(c.send)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
