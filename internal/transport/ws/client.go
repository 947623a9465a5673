package ws

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/xogame/arena/internal/proto"
	"github.com/xogame/arena/internal/services/presence"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 1024

	// Buffer size for outgoing messages
	sendBufferSize = 64
)

// client wraps one WebSocket connection and implements
// presence.Sender for outbound notifications.
type client struct {
	ws     *websocket.Conn
	send   chan proto.ServerMessage
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

var _ presence.Sender = (*client)(nil)

func newClient(ws *websocket.Conn, logger *slog.Logger) *client {
	return &client{
		ws:     ws,
		send:   make(chan proto.ServerMessage, sendBufferSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Send queues a notification without blocking; a full buffer drops the
// message rather than stalling the session manager.
func (c *client) Send(msg proto.ServerMessage) {
	select {
	case c.send <- msg:
	case <-c.done:
	default:
		c.logger.Warn("outbound message dropped - client buffer full")
	}
}

// Close tears the connection down. Safe to call repeatedly; the read
// pump observes the closed socket and runs the disconnect path.
func (c *client) Close() {
	c.once.Do(func() {
		close(c.done)
	})
}

// writePump drains the send queue onto the socket and keeps the
// connection alive with pings. One writer per connection; gorilla
// connections do not allow concurrent writes.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "superseded"))
			return
		}
	}
}
