package trace

import (
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/ahump20/Sandlot-Sluggers-sub004/internal/core/observability/log"
)

type wsClient struct {
	conn   *websocket.Conn
	send   chan []byte
	closed bool // guarded by the hub mutex
}

// Hub fans frames out to websocket spectators. A spectator that stops
// reading loses frames rather than stalling the broadcast.
type Hub struct {
	mu      sync.RWMutex
	clients map[*wsClient]struct{}

	upgrader websocket.Upgrader
	drops    atomic.Uint64
	log      log.Log
}

// NewHub builds an empty hub. It serves websocket upgrades directly as an
// http.Handler.
func NewHub(logger log.Log) *Hub {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Hub{
		clients:  make(map[*wsClient]struct{}),
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		log:      logger.With(log.String("component", "trace_hub")),
	}
}

func (h *Hub) add(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// drop removes a client and closes its send channel exactly once. Closing
// under the write lock keeps Broadcast, which sends under the read lock,
// from racing a send against the close.
func (h *Hub) drop(c *wsClient) {
	h.mu.Lock()
	delete(h.clients, c)
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast serializes the frame once and queues it to every spectator.
func (h *Hub) Broadcast(f *Frame) error {
	data, err := f.Serialize()
	if err != nil {
		return err
	}
	h.broadcast(data)
	return nil
}

func (h *Hub) broadcast(b []byte) {
	h.mu.RLock()
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
			h.drops.Add(1)
		}
	}
	h.mu.RUnlock()
}

// ClientCount is the number of connected spectators.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Drops is the number of frames lost to slow spectators.
func (h *Hub) Drops() uint64 {
	return h.drops.Load()
}

// ServeHTTP upgrades the request and pumps frames until the peer goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", log.Error(err))
		return
	}
	cl := &wsClient{conn: conn, send: make(chan []byte, 64)}
	h.add(cl)
	h.log.Debug("spectator connected", log.String("remote", conn.RemoteAddr().String()))
	defer func() {
		h.drop(cl)
		_ = conn.Close()
		h.log.Debug("spectator disconnected", log.String("remote", conn.RemoteAddr().String()))
	}()

	// Inbound messages are ignored; reading only detects the close.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.drop(cl)
				return
			}
		}
	}()

	for b := range cl.send {
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			return
		}
	}
}

// Close disconnects every spectator.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()
	for _, c := range clients {
		h.drop(c)
	}
}
