// Package live pushes leaderboard change notifications to websocket clients.
package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/verte-zerg/typeforge/internal/model"
)

// EventLeaderboardChanged is the type of the event sent after a result is saved.
const EventLeaderboardChanged = "leaderboard.changed"

const (
	sendBuffer   = 16
	writeTimeout = 10 * time.Second
	readLimit    = 512
)

// Event is the JSON message sent to clients.
type Event struct {
	Type            string           `json:"type"`
	Mode            string           `json:"mode"`
	DurationSeconds int              `json:"durationSeconds"`
	TextSource      model.TextSource `json:"textSource"`
	WPM             float64          `json:"wpm"`
}

// Client is one connected subscriber.
type Client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks clients and fans out events.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	upgrader   websocket.Upgrader
	logger     *slog.Logger
}

// NewHub returns a Hub. Call Run before serving clients. Browser upgrades are
// limited to origins; an empty list accepts any origin.
func NewHub(logger *slog.Logger, origins []string) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(origins),
		},
		logger: logger,
	}
}

// originChecker allows requests without an Origin header (non-browser clients)
// and otherwise requires an exact match against origins.
func originChecker(origins []string) func(*http.Request) bool {
	if len(origins) == 0 {
		return func(*http.Request) bool { return true }
	}
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[strings.ToLower(strings.TrimRight(o, "/"))] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[strings.ToLower(origin)]
		return ok
	}
}

// Run processes registrations until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Register adds client. It returns false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes client and closes its send channel.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast queues msg for every client. Clients with a full buffer miss it.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
		}
	}
}

// ResultSaved broadcasts a leaderboard change for r.
func (h *Hub) ResultSaved(r model.Result) {
	msg, err := json.Marshal(Event{
		Type:            EventLeaderboardChanged,
		Mode:            r.Mode,
		DurationSeconds: r.DurationSeconds,
		TextSource:      r.TextSource,
		WPM:             r.WPM,
	})
	if err != nil {
		h.logger.Error("marshal leaderboard event", "error", err)
		return
	}
	h.Broadcast(msg)
}

// ServeWS upgrades the request and streams events until the client leaves.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		h.logger.Info("websocket upgrade failed", "error", err)
		return
	}
	client := &Client{conn: conn, send: make(chan []byte, sendBuffer)}
	if !h.Register(client) {
		if cerr := conn.Close(); cerr != nil {
			// Best-effort close.
			_ = cerr
		}
		return
	}
	go h.writePump(client)
	h.readPump(client)
}

// readPump discards client messages and unregisters on disconnect.
func (h *Hub) readPump(c *Client) {
	defer h.Unregister(c)
	c.conn.SetReadLimit(readLimit)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *Client) {
	defer func() {
		if cerr := c.conn.Close(); cerr != nil {
			// Best-effort close.
			_ = cerr
		}
	}()
	for msg := range c.send {
		if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
			return
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
