package ws

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/xogame/arena/internal/model"
	"github.com/xogame/arena/internal/proto"
	"github.com/xogame/arena/internal/services/auth"
	"github.com/xogame/arena/internal/services/match"
	"github.com/xogame/arena/internal/services/presence"
)

// Server upgrades HTTP requests to WebSocket connections, performs the
// connect-time authentication handshake, and dispatches client intents
// to the session manager.
type Server struct {
	auth       *auth.Service
	controller *match.Controller
	registry   *presence.Registry
	logger     *slog.Logger
	upgrader   websocket.Upgrader
}

// NewServer creates a WebSocket transport server
func NewServer(
	authService *auth.Service,
	controller *match.Controller,
	registry *presence.Registry,
	logger *slog.Logger,
) *Server {
	return &Server{
		auth:       authService,
		controller: controller,
		registry:   registry,
		logger:     logger.With(slog.String("component", "ws")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP handles a WebSocket connect request
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	cl := newClient(ws, s.logger)
	go cl.writePump()

	player, err := s.authenticate(r)
	if err != nil {
		// Identity failure: one notification, then the connection dies
		cl.Send(proto.ServerMessage{Type: proto.NotifyLogin, Message: err.Error()})
		time.Sleep(100 * time.Millisecond)
		cl.Close()
		ws.Close()
		return
	}

	cl.Send(proto.ServerMessage{Type: proto.NotifyLogin, Message: "Connection Success"})

	conn := presence.NewConnection(player, cl)
	s.registry.Register(conn)

	s.logger.Info("player connected", slog.String("player", string(player)))

	s.readPump(ws, cl, conn)
}

// authenticate extracts and validates the connect-time token
func (s *Server) authenticate(r *http.Request) (model.PlayerID, error) {
	token := r.Header.Get("Authorization")
	token = strings.TrimPrefix(token, "Bearer ")
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		return "", errors.New("please provide a token")
	}
	return s.auth.ValidateToken(token)
}

// readPump consumes client intents until the connection drops, then
// runs the disconnect path (forfeit, presence removal).
func (s *Server) readPump(ws *websocket.Conn, cl *client, conn *presence.Connection) {
	defer func() {
		s.controller.Disconnect(context.Background(), conn)
		cl.Close()
		ws.Close()
		s.logger.Info("player disconnected", slog.String("player", string(conn.Player())))
	}()

	ws.SetReadLimit(maxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg proto.ClientMessage
		if err := ws.ReadJSON(&msg); err != nil {
			return
		}
		s.dispatch(conn, msg)
	}
}

// dispatch routes one intent to the session manager and maps errors to
// notifications addressed to the originating connection only.
func (s *Server) dispatch(conn *presence.Connection, msg proto.ClientMessage) {
	ctx := context.Background()

	switch msg.Type {
	case proto.IntentListPlayers:
		text, err := s.controller.ListPlayers(ctx)
		if err != nil {
			s.sendError(conn, proto.NotifyError, err)
			return
		}
		conn.Send(proto.ServerMessage{Type: proto.NotifyPlayerList, Message: text})

	case proto.IntentInvite:
		if err := s.controller.Invite(ctx, conn.Player(), model.PlayerID(msg.Username)); err != nil {
			s.sendError(conn, proto.NotifyInviteError, err)
		}

	case proto.IntentListInvites:
		text, err := s.controller.ListInvitations(ctx, conn.Player())
		if err != nil {
			s.sendError(conn, proto.NotifyError, err)
			return
		}
		conn.Send(proto.ServerMessage{Type: proto.NotifyInviteList, Message: text})

	case proto.IntentAccept:
		if err := s.controller.AcceptInvite(ctx, conn, model.PlayerID(msg.Username)); err != nil {
			s.sendError(conn, proto.NotifyInviteError, err)
		}

	case proto.IntentPlay:
		if err := s.controller.Play(ctx, conn, msg.Cell); err != nil {
			s.sendError(conn, proto.NotifyPlayError, err)
		}

	case proto.IntentPlayBot:
		if err := s.controller.PlayWithBot(ctx, conn); err != nil {
			s.sendError(conn, proto.NotifyPlayError, err)
		}

	case proto.IntentHistory:
		text, err := s.controller.History(ctx, conn.Player())
		if err != nil {
			s.sendError(conn, proto.NotifyError, err)
			return
		}
		conn.Send(proto.ServerMessage{Type: proto.NotifyHistory, Message: text})

	default:
		conn.Send(proto.ServerMessage{Type: proto.NotifyError, Message: "unknown message type"})
	}
}

// sendError reports a rejection to the originating connection. The
// known rejections are user-facing and non-fatal; anything else is
// masked as an internal error.
func (s *Server) sendError(conn *presence.Connection, notifyType string, err error) {
	msg := "Internal server error"
	if isUserFacing(err) {
		msg = err.Error()
	} else {
		s.logger.Error("intent failed",
			slog.String("player", string(conn.Player())),
			slog.String("error", err.Error()),
		)
	}
	conn.Send(proto.ServerMessage{Type: notifyType, Message: msg})
}

// isUserFacing reports whether err is an invalid-intent rejection that
// may be echoed to the client verbatim.
func isUserFacing(err error) bool {
	for _, known := range []error{
		model.ErrPlayerNotFound,
		model.ErrDuplicateInvitation,
		model.ErrNoSuchInvitation,
		model.ErrAlreadyInSession,
		model.ErrOpponentOffline,
		model.ErrOpponentBusy,
		model.ErrNotInSession,
		model.ErrNotYourTurn,
		model.ErrOutOfRange,
		model.ErrCellOccupied,
	} {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}
