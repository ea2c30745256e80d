// Package inspector streams floor summaries to browser debugging tools over
// WebSocket.
package inspector

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/floorpop/internal/logger"
	"github.com/lawnchairsociety/floorpop/internal/populate"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 16
)

// OriginFunc decides whether a browser origin may connect for a request host.
type OriginFunc func(origin, host string) bool

// Hub tracks connected inspector clients and fans summaries out to them.
// It implements populate.Observer.
type Hub struct {
	upgrader websocket.Upgrader
	log      *slog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	last    []byte
}

// NewHub creates a hub. A nil allow func accepts every origin.
func NewHub(allow OriginFunc) *Hub {
	h := &Hub{
		log:     logger.With("inspector"),
		clients: make(map[*client]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if allow == nil {
				return true
			}
			origin := r.Header.Get("Origin")
			if !allow(origin, r.Host) {
				h.log.Warn("Inspector connection rejected - origin not allowed",
					"origin", origin,
					"host", r.Host,
					"remote_addr", r.RemoteAddr)
				return false
			}
			return true
		},
	}
	return h
}

// ServeHTTP upgrades the request and registers the client. A client that
// joins late immediately receives the most recent summary.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("Inspector upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	if h.last != nil {
		c.send <- h.last
	}
	h.mu.Unlock()
	h.log.Info("Inspector connected", "remote_addr", conn.RemoteAddr().String())

	go h.writePump(c)
	go h.readPump(c)
}

// FloorPopulated broadcasts the summary as JSON.
func (h *Hub) FloorPopulated(s *populate.Summary) {
	data, err := s.JSON()
	if err != nil {
		h.log.Warn("Failed to encode summary for inspector", "depth", s.Depth, "error", err)
		return
	}
	h.Broadcast(data)
}

// Broadcast queues data for every client. Clients whose queue is full are
// dropped.
func (h *Hub) Broadcast(data []byte) {
	h.mu.Lock()
	h.last = data
	var slow []*client
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.Unlock()

	for _, c := range slow {
		h.log.Warn("Dropping slow inspector client", "remote_addr", c.conn.RemoteAddr().String())
		h.remove(c)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.remove(c)
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	c.conn.Close()
}

func (h *Hub) writePump(c *client) {
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.remove(c)
			return
		}
	}
}

// readPump discards incoming messages and notices when the peer goes away.
func (h *Hub) readPump(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.remove(c)
			return
		}
	}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}
