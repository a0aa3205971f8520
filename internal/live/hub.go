// Package live pushes tournament snapshots to connected clients over
// websockets so wall displays and scorer devices stay current without
// polling.
package live

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Event is the wire envelope for broadcasts. Clients only listen.
type Event struct {
	Type         string `json:"type"`
	TournamentID string `json:"tournament_id"`
	Payload      any    `json:"payload,omitempty"`
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	room string
}

// Hub fans events out to clients grouped per tournament room.
type Hub struct {
	register   chan *client
	unregister chan *client

	mu    sync.RWMutex
	rooms map[string]map[*client]bool
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan *client),
		unregister: make(chan *client),
		rooms:      make(map[string]map[*client]bool),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if h.rooms[c.room] == nil {
				h.rooms[c.room] = make(map[*client]bool)
			}
			h.rooms[c.room][c] = true
			h.mu.Unlock()
			slog.Debug("live client joined", "room", c.room)

		case c := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[c.room]; ok && clients[c] {
				delete(clients, c)
				close(c.send)
				if len(clients) == 0 {
					delete(h.rooms, c.room)
				}
			}
			h.mu.Unlock()
			slog.Debug("live client left", "room", c.room)
		}
	}
}

// Broadcast sends an event to every client watching the tournament. Slow
// clients are skipped rather than allowed to block the mutation path.
func (h *Hub) Broadcast(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal live event", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[event.TournamentID] {
		select {
		case c.send <- data:
		default:
			slog.Warn("live client lagging, dropping event", "room", event.TournamentID)
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// ServeWS upgrades the request and parks the client in its room until the
// connection drops.
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request, room string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{hub: hub, conn: conn, send: make(chan []byte, 16), room: room}
	hub.register <- c

	go c.writePump()
	go c.readPump()
}

func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// Inbound messages are ignored; the read loop only detects
		// disconnects and answers pings.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("websocket read error", "room", c.room, "error", err)
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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
