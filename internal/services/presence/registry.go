package presence

import (
	"log/slog"
	"sync"

	"github.com/xogame/arena/internal/model"
	"github.com/xogame/arena/internal/proto"
)

// Sender delivers outbound notifications on one live transport
// connection. Implementations must not block the caller.
type Sender interface {
	Send(msg proto.ServerMessage)
	// Close tears the transport connection down. It must be safe to
	// call more than once.
	Close()
}

// Connection is the live handle for one authenticated player. It
// carries the player's durable identity and, while the player is in a
// game, the session it belongs to.
type Connection struct {
	player model.PlayerID
	sender Sender

	mu      sync.Mutex
	session model.GameID
}

// NewConnection creates a Connection binding an identity to a sender
func NewConnection(player model.PlayerID, sender Sender) *Connection {
	return &Connection{player: player, sender: sender}
}

// Player returns the durable identity behind this connection
func (c *Connection) Player() model.PlayerID {
	return c.player
}

// Session returns the session this connection is in, or empty
func (c *Connection) Session() model.GameID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// SetSession records session membership
func (c *Connection) SetSession(id model.GameID) {
	c.mu.Lock()
	c.session = id
	c.mu.Unlock()
}

// ClearSession removes session membership
func (c *Connection) ClearSession() {
	c.SetSession("")
}

// Send delivers a notification to this connection
func (c *Connection) Send(msg proto.ServerMessage) {
	c.sender.Send(msg)
}

// Registry maps online player identities to their live connections.
// It is the source of truth for "is this player online". Entirely
// volatile; rebuilt from zero on process restart.
type Registry struct {
	mu     sync.RWMutex
	online map[model.PlayerID]*Connection
	logger *slog.Logger
}

// NewRegistry creates an empty presence registry
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		online: make(map[model.PlayerID]*Connection),
		logger: logger.With(slog.String("component", "presence")),
	}
}

// Register binds an identity to a connection. Last connect wins: any
// prior connection for the same identity is force-closed and returned
// so the caller can run its disconnect path against it.
func (r *Registry) Register(conn *Connection) *Connection {
	r.mu.Lock()
	prev := r.online[conn.player]
	r.online[conn.player] = conn
	r.mu.Unlock()

	if prev != nil {
		r.logger.Info("connection superseded", slog.String("player", string(conn.player)))
		prev.sender.Close()
	}

	r.logger.Info("player online", slog.String("player", string(conn.player)))
	return prev
}

// Lookup returns the live connection for an identity, if any
func (r *Registry) Lookup(id model.PlayerID) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.online[id]
	return conn, ok
}

// Unregister removes the binding for the given connection. A stale
// connection that was superseded by a later Register does not evict
// the newer binding.
func (r *Registry) Unregister(conn *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.online[conn.player]; ok && current == conn {
		delete(r.online, conn.player)
		r.logger.Info("player offline", slog.String("player", string(conn.player)))
	}
}

// OnlineCount returns the number of online players
func (r *Registry) OnlineCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.online)
}
