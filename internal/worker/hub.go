package worker

import (
	"net/http"
	"sync"

	"github.com/dmitrijs2005/storyshare/internal/logging"
	"github.com/gorilla/websocket"
)

// ClientCommand is a message sent to connected pages: focus the window,
// navigate in-app, or open a URL.
type ClientCommand struct {
	Type string `json:"type"` // "focus", "navigate" or "open"
	URL  string `json:"url,omitempty"`
}

// pageConn pairs a websocket connection with a write guard. gorilla/websocket
// allows at most one concurrent writer per connection, and broadcasts run on
// the caller's goroutine.
type pageConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (p *pageConn) writeJSON(v any) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return p.conn.WriteJSON(v)
}

// Hub tracks the app pages currently connected over websocket, so
// notification clicks can be routed back into an open page.
type Hub struct {
	log      logging.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*pageConn]struct{}
}

func NewHub(log logging.Logger) *Hub {
	return &Hub{
		log:     log.With("component", "hub"),
		clients: make(map[*pageConn]struct{}),
	}
}

// ServeHTTP upgrades the connection and keeps it registered until the page
// goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn(r.Context(), "websocket upgrade failed", "err", err)
		return
	}

	pc := &pageConn{conn: conn}
	h.mu.Lock()
	h.clients[pc] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.log.Info(r.Context(), "page connected", "clients", n)

	go h.readLoop(pc)
}

func (h *Hub) readLoop(pc *pageConn) {
	defer h.drop(pc)
	for {
		// Pages only listen; reads exist to detect disconnects.
		if _, _, err := pc.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) drop(pc *pageConn) {
	h.mu.Lock()
	delete(h.clients, pc)
	h.mu.Unlock()
	_ = pc.conn.Close()
}

// HasClients reports whether at least one page is connected.
func (h *Hub) HasClients() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients) > 0
}

// Broadcast sends the command to every connected page, dropping connections
// that fail to accept it.
func (h *Hub) Broadcast(cmd ClientCommand) {
	h.mu.Lock()
	conns := make([]*pageConn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		if err := c.writeJSON(cmd); err != nil {
			h.drop(c)
		}
	}
}

// Close disconnects every page.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*pageConn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.clients = make(map[*pageConn]struct{})
	h.mu.Unlock()

	for _, c := range conns {
		_ = c.conn.Close()
	}
}
