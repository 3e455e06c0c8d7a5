// Package livereload pushes reload notifications to connected browsers when
// files under the served directory change.
package livereload

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"nhooyr.io/websocket"
)

// reloadMessage is the only message the hub ever sends.
const reloadMessage = "reload"

// writeTimeout bounds a single send to one client.
const writeTimeout = 5 * time.Second

// Hub tracks connected WebSocket clients and broadcasts reload events to
// them. One hub is shared by all connections.
type Hub struct {
	originPatterns []string
	clients        map[*client]struct{}
	mu             sync.Mutex
}

type client struct {
	send chan string
}

// NewHub creates a hub that accepts WebSocket connections from the given
// origin patterns.
func NewHub(originPatterns []string) *Hub {
	return &Hub{
		originPatterns: originPatterns,
		clients:        make(map[*client]struct{}),
	}
}

// ServeHTTP upgrades the connection and streams reload events until the
// client disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	c := &client{send: make(chan string, 8)}
	h.add(c)
	defer h.remove(c)

	// Reads are discarded; the returned context ends when the client goes away.
	ctx := conn.CloseRead(r.Context())

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Write(wctx, websocket.MessageText, []byte(msg))
			cancel()
			if err != nil {
				return
			}
		}
	}
}

// Broadcast queues a reload event for every connected client. Clients that
// cannot keep up are skipped rather than blocking the caller.
func (h *Hub) Broadcast() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- reloadMessage:
		default:
			log.Printf("dropping reload event for slow client")
		}
	}
}

// CloseAll disconnects every client.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	log.Printf("livereload client connected (%d total)", count)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	count := len(h.clients)
	h.mu.Unlock()

	log.Printf("livereload client disconnected (%d remaining)", count)
}
