// Package websocket tracks preview pages connected over WebSocket and
// pushes reload notices to them when the timeline changes.
package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"

	"github.com/conneroisu/tweetify/internal/logging"
)

const (
	writeTimeout = 10 * time.Second
	pingInterval = 54 * time.Second
	sendBuffer   = 16
)

// Hub owns every connected client. Registration, removal and broadcast
// all go through the hub goroutine, which is the only writer of clients.
type Hub struct {
	clients map[*Client]struct{}
	mu      sync.RWMutex

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	originPatterns []string
	logger         logging.Logger

	ctx          context.Context
	cancel       context.CancelFunc
	done         chan struct{}
	shutdownOnce sync.Once
	isShutdown   atomic.Bool
}

// NewHub starts a hub. originPatterns are host patterns accepted in the
// Origin header in addition to the server's own host.
func NewHub(originPatterns []string, logger logging.Logger) *Hub {
	if logger == nil {
		logger = logging.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())

	h := &Hub{
		clients:        make(map[*Client]struct{}),
		broadcast:      make(chan []byte, 64),
		register:       make(chan *Client, 16),
		unregister:     make(chan *Client, 16),
		originPatterns: originPatterns,
		logger:         logger.WithComponent("websocket"),
		ctx:            ctx,
		cancel:         cancel,
		done:           make(chan struct{}),
	}
	go h.run()
	return h
}

// ServeHTTP upgrades the request and serves the client until it leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.isShutdown.Load() {
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  h.originPatterns,
		CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		// Accept has already written the response
		h.logger.Warn(r.Context(), err, "WebSocket upgrade failed", "remote", r.RemoteAddr)
		return
	}

	client := &Client{
		conn:         conn,
		send:         make(chan []byte, sendBuffer),
		remoteAddr:   r.RemoteAddr,
		lastActivity: time.Now(),
	}

	select {
	case h.register <- client:
	case <-h.ctx.Done():
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}

	go h.writePump(client)
	h.readPump(client)
}

func (h *Hub) run() {
	defer close(h.done)
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug(h.ctx, "WebSocket client connected", "remote", c.remoteAddr, "clients", n)

		case c := <-h.unregister:
			h.remove(c, websocket.StatusNormalClosure, "")

		case msg := <-h.broadcast:
			h.mu.RLock()
			var slow []*Client
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					slow = append(slow, c)
				}
			}
			h.mu.RUnlock()
			for _, c := range slow {
				h.remove(c, websocket.StatusPolicyViolation, "client too slow")
			}

		case <-h.ctx.Done():
			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients))
			for c := range h.clients {
				clients = append(clients, c)
			}
			h.mu.RUnlock()
			for _, c := range clients {
				h.remove(c, websocket.StatusGoingAway, "server shutting down")
			}
			return
		}
	}
}

// remove runs on the hub goroutine only.
func (h *Hub) remove(c *Client, code websocket.StatusCode, reason string) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()
	if !ok {
		return
	}
	close(c.send)
	// The close handshake waits on the peer; keep it off the hub goroutine.
	go func() { _ = c.conn.Close(code, reason) }()
	h.logger.Debug(context.Background(), "WebSocket client disconnected", "remote", c.remoteAddr, "clients", n)
}

func (h *Hub) readPump(c *Client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.ctx.Done():
		}
	}()

	for {
		// Pages never send anything meaningful; reading drives pongs and
		// notices the close.
		_, _, err := c.conn.Read(h.ctx)
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure &&
				websocket.CloseStatus(err) != websocket.StatusGoingAway && h.ctx.Err() == nil {
				h.logger.Debug(context.Background(), "WebSocket read ended", "remote", c.remoteAddr, "error", err.Error())
			}
			return
		}
		c.lastActivity = time.Now()
	}
}

func (h *Hub) writePump(c *Client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(h.ctx, writeTimeout)
			err := c.conn.Write(ctx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				return
			}
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(h.ctx, writeTimeout)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				return
			}
		case <-h.ctx.Done():
			return
		}
	}
}

// Broadcast queues msg for every connected client. A zero Timestamp is
// set to the current time.
func (h *Hub) Broadcast(msg UpdateMessage) error {
	if h.isShutdown.Load() {
		return context.Canceled
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	select {
	case h.broadcast <- data:
		return nil
	case <-h.ctx.Done():
		return h.ctx.Err()
	default:
		h.logger.Warn(h.ctx, nil, "Broadcast channel full, dropping message", "type", msg.Type)
		return nil
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown disconnects every client and stops the hub.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.shutdownOnce.Do(func() {
		h.isShutdown.Store(true)
		h.cancel()
	})

	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsShutdown reports whether Shutdown has been called
func (h *Hub) IsShutdown() bool {
	return h.isShutdown.Load()
}
