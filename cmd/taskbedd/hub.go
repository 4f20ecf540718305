package main

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/andrewblevins/taskbed/internal/debug"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Clients are on the local network; the server has no auth surface.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// changeMessage is the single message type on the feed. Clients re-fetch the
// full document on receipt; no payload is carried.
var changeMessage = []byte(`{"event":"state-changed"}`)

// hub fans a change notification out to every connected websocket client.
type hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	notify  chan struct{}
}

func newHub() *hub {
	return &hub{
		clients: make(map[*websocket.Conn]bool),
		notify:  make(chan struct{}, 1),
	}
}

// broadcast queues one notification. Bursts coalesce: clients re-read the
// whole document anyway, so one pending tick is enough.
func (h *hub) broadcast() {
	select {
	case h.notify <- struct{}{}:
	default:
	}
}

func (h *hub) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-h.notify:
			h.sendAll()
		}
	}
}

func (h *hub) sendAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, changeMessage); err != nil {
			debug.Logf("dropping websocket client: %v", err)
			_ = conn.Close()
			delete(h.clients, conn)
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		_ = conn.Close()
		delete(h.clients, conn)
	}
}

func (h *hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
}

func (h *hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

// handleWS upgrades the connection and parks it in the hub. The read loop
// exists only to detect disconnects; clients never send anything meaningful.
func (s *server) handleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		debug.Logf("websocket upgrade failed: %v", err)
		return
	}
	s.hub.add(conn)

	go func() {
		defer func() {
			s.hub.remove(conn)
			_ = conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
