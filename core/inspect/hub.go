package inspect

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/waypoint/core/event"
	"github.com/dmitrymomot/waypoint/core/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Snapshot is the first message of every event stream.
type Snapshot struct {
	Current any `json:"current"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	quit chan struct{}
	once sync.Once
}

func (c *client) stop() {
	c.once.Do(func() { close(c.quit) })
}

// hub fans events out to websocket clients without blocking the publisher.
type hub struct {
	buffer int
	logger *slog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

func newHub(buffer int, logger *slog.Logger) *hub {
	return &hub{buffer: buffer, logger: logger, clients: make(map[*client]struct{})}
}

func (h *hub) broadcast(ctx context.Context, ev event.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.WarnContext(ctx, "inspector client is too slow, event dropped", logger.Event(ev.Name))
		}
	}
	return nil
}

// register adds a client whose queue starts with first. It reports false
// once the hub is closed.
func (h *hub) register(conn *websocket.Conn, first []byte) (*client, bool) {
	c := &client{conn: conn, send: make(chan []byte, h.buffer), quit: make(chan struct{})}
	c.send <- first

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}
	h.clients[c] = struct{}{}
	return c, true
}

func (h *hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.stop()
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// disconnect stops every connected client.
func (h *hub) disconnect() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.stop()
	}
}

// close disconnects every client and refuses new ones.
func (h *hub) close() {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	h.disconnect()
}

// serve pumps queued messages to the client until it goes away, ctx is
// cancelled or the hub stops it.
func (h *hub) serve(ctx context.Context, c *client) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()

	// The reader only handles control frames and notices disconnects.
	go func() {
		defer c.stop()
		c.conn.SetReadLimit(512)
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		c.conn.SetPongHandler(func(string) error {
			return c.conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := c.conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.logger.DebugContext(ctx, "inspector client read failed", logger.Error(err))
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.logger.DebugContext(ctx, "inspector client write failed", logger.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.quit:
			h.goodbye(c)
			return
		case <-ctx.Done():
			h.goodbye(c)
			return
		}
	}
}

func (h *hub) goodbye(c *client) {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "inspector stopped")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
