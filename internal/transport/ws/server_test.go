package ws_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"github.com/xogame/arena/internal/dependencies/clock"
	"github.com/xogame/arena/internal/proto"
	"github.com/xogame/arena/internal/services/auth"
	"github.com/xogame/arena/internal/services/bot"
	"github.com/xogame/arena/internal/services/match"
	"github.com/xogame/arena/internal/services/presence"
	"github.com/xogame/arena/internal/storage/memory"
	"github.com/xogame/arena/internal/testutil"
	"github.com/xogame/arena/internal/transport/ws"
)

const readTimeout = 2 * time.Second

type ServerSuite struct {
	suite.Suite
	httpServer *httptest.Server
	auth       *auth.Service
	conns      []*websocket.Conn
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func (s *ServerSuite) SetupTest() {
	store := memory.New()
	logger := testutil.NopLogger()
	clk := clock.New()
	registry := presence.NewRegistry(logger)
	s.auth = auth.New(store, clk, auth.Config{Secret: "test-secret"}, logger)
	controller := match.NewController(store, registry, bot.NewMinimaxStrategy(), clk, logger)

	s.httpServer = httptest.NewServer(ws.NewServer(s.auth, controller, registry, logger))
	s.conns = nil
}

func (s *ServerSuite) TearDownTest() {
	for _, c := range s.conns {
		_ = c.Close()
	}
	s.httpServer.Close()
}

// dial opens a WebSocket connection with the given raw token
func (s *ServerSuite) dial(token string) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(s.httpServer.URL, "http")
	if token != "" {
		url += "?token=" + token
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	s.conns = append(s.conns, conn)
	return conn
}

// connect registers an account, logs in, and opens an authenticated
// connection, consuming the login handshake message.
func (s *ServerSuite) connect(username string) *websocket.Conn {
	ctx := context.Background()
	if err := s.auth.Register(ctx, username, "password123"); err != nil {
		s.Require().NoError(err)
	}
	token, err := s.auth.Login(ctx, username, "password123")
	s.Require().NoError(err)

	conn := s.dial(token)
	msg := s.read(conn)
	s.Require().Equal(proto.NotifyLogin, msg.Type)
	s.Require().Equal("Connection Success", msg.Message)
	return conn
}

func (s *ServerSuite) read(conn *websocket.Conn) proto.ServerMessage {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(readTimeout)))
	var msg proto.ServerMessage
	s.Require().NoError(conn.ReadJSON(&msg))
	return msg
}

// readUntil drains messages until one of the given type arrives
func (s *ServerSuite) readUntil(conn *websocket.Conn, msgType string) proto.ServerMessage {
	deadline := time.Now().Add(readTimeout)
	for time.Now().Before(deadline) {
		msg := s.read(conn)
		if msg.Type == msgType {
			return msg
		}
	}
	s.Require().Failf("timed out", "no %s message received", msgType)
	return proto.ServerMessage{}
}

func (s *ServerSuite) send(conn *websocket.Conn, msg proto.ClientMessage) {
	s.Require().NoError(conn.WriteJSON(msg))
}

func (s *ServerSuite) TestConnectWithInvalidToken() {
	conn := s.dial("garbage")

	msg := s.read(conn)
	s.Equal(proto.NotifyLogin, msg.Type)
	s.Equal("invalid or expired token", msg.Message)

	// The connection is torn down after the failure notification
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(readTimeout)))
	var next proto.ServerMessage
	s.Error(conn.ReadJSON(&next))
}

func (s *ServerSuite) TestConnectWithoutToken() {
	conn := s.dial("")

	msg := s.read(conn)
	s.Equal(proto.NotifyLogin, msg.Type)
	s.Equal("please provide a token", msg.Message)
}

func (s *ServerSuite) TestListPlayers() {
	conn := s.connect("alice")

	s.send(conn, proto.ClientMessage{Type: proto.IntentListPlayers})

	msg := s.readUntil(conn, proto.NotifyPlayerList)
	s.Equal("alice - online", msg.Message)
}

func (s *ServerSuite) TestUnknownIntent() {
	conn := s.connect("alice")

	s.send(conn, proto.ClientMessage{Type: "dance"})

	msg := s.readUntil(conn, proto.NotifyError)
	s.Equal("unknown message type", msg.Message)
}

func (s *ServerSuite) TestInviteErrorsAreEchoed() {
	conn := s.connect("alice")

	s.send(conn, proto.ClientMessage{Type: proto.IntentInvite, Username: "ghost"})

	msg := s.readUntil(conn, proto.NotifyInviteError)
	s.Equal("player not found", msg.Message)
}

func (s *ServerSuite) TestInviteAcceptPlayFlow() {
	alice := s.connect("alice")
	bob := s.connect("bob")

	// alice invites bob
	s.send(alice, proto.ClientMessage{Type: proto.IntentInvite, Username: "bob"})
	invitation := s.readUntil(bob, proto.NotifyInvitation)
	s.Equal("alice", invitation.From)

	// bob accepts; sides are fixed at acceptance
	s.send(bob, proto.ClientMessage{Type: proto.IntentAccept, Username: "alice"})
	accepted := s.readUntil(bob, proto.NotifyInviteAccepted)
	s.NotEmpty(accepted.GameID)

	started := s.readUntil(alice, proto.NotifyMatchStarted)
	s.Equal(accepted.GameID, started.GameID)
	s.Equal("1 | 2 | 3\n4 | 5 | 6\n7 | 8 | 9", started.Board)

	// alice (X) moves; bob is told it is his turn
	s.send(alice, proto.ClientMessage{Type: proto.IntentPlay, Cell: 5})
	turn := s.readUntil(bob, proto.NotifyYourTurn)
	s.Equal("1 | 2 | 3\n4 | X | 6\n7 | 8 | 9", turn.Board)

	// alice cannot move twice in a row
	s.send(alice, proto.ClientMessage{Type: proto.IntentPlay, Cell: 1})
	rejected := s.readUntil(alice, proto.NotifyPlayError)
	s.Equal("not this player's turn", rejected.Message)
}

func (s *ServerSuite) TestDisconnectForfeitsGame() {
	alice := s.connect("alice")
	bob := s.connect("bob")

	s.send(alice, proto.ClientMessage{Type: proto.IntentInvite, Username: "bob"})
	s.readUntil(bob, proto.NotifyInvitation)
	s.send(bob, proto.ClientMessage{Type: proto.IntentAccept, Username: "alice"})
	s.readUntil(alice, proto.NotifyMatchStarted)

	s.Require().NoError(bob.Close())

	msg := s.readUntil(alice, proto.NotifyGameOver)
	s.Equal("bob disconnected. You win!", msg.Message)
}

func (s *ServerSuite) TestNewConnectionSupersedesOld() {
	ctx := context.Background()
	s.Require().NoError(s.auth.Register(ctx, "alice", "password123"))
	token, err := s.auth.Login(ctx, "alice", "password123")
	s.Require().NoError(err)

	first := s.dial(token)
	s.Require().Equal(proto.NotifyLogin, s.read(first).Type)

	second := s.dial(token)
	s.Require().Equal(proto.NotifyLogin, s.read(second).Type)

	// The new connection carries the identity
	s.send(second, proto.ClientMessage{Type: proto.IntentListPlayers})
	msg := s.readUntil(second, proto.NotifyPlayerList)
	s.Equal("alice - online", msg.Message)

	// The old connection is closed by the server
	s.Require().NoError(first.SetReadDeadline(time.Now().Add(readTimeout)))
	for {
		var discard proto.ServerMessage
		if err := first.ReadJSON(&discard); err != nil {
			break
		}
	}
}
