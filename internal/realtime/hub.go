// README: Websocket hub grouping connections into user and department rooms.
package realtime

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"motorpool/internal/config"
)

type client struct {
	conn  *websocket.Conn
	send  chan []byte
	rooms map[string]struct{}
}

// Hub tracks connected clients and fans events out to rooms. A slow or dead
// client is dropped rather than blocking the broadcast path.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	cfg     config.WebSocketConfig
	log     *logrus.Logger

	upgrader websocket.Upgrader
}

func NewHub(cfg config.WebSocketConfig, log *logrus.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		cfg:     cfg,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Serve upgrades the request and keeps the connection joined to rooms until
// the peer goes away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, rooms []string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &client{
		conn:  conn,
		send:  make(chan []byte, 64),
		rooms: make(map[string]struct{}, len(rooms)),
	}
	for _, room := range rooms {
		c.rooms[room] = struct{}{}
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(c)
	go h.readPump(c)
	return nil
}

// Broadcast sends raw payload bytes to every client joined to room.
func (h *Hub) Broadcast(room string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if _, ok := c.rooms[room]; !ok {
			continue
		}
		select {
		case c.send <- payload:
		default:
			// Send buffer full: the client is not keeping up. Drop it.
			go h.drop(c)
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) readPump(c *client) {
	defer h.drop(c)
	_ = c.conn.SetReadDeadline(time.Now().Add(h.cfg.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(h.cfg.PongTimeout))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.log.WithError(err).Debug("websocket closed")
			return
		}
	}
}
