package presence_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/xogame/arena/internal/dependencies/mocks"
	"github.com/xogame/arena/internal/proto"
	"github.com/xogame/arena/internal/services/presence"
	"github.com/xogame/arena/internal/testutil"
)

type RegistrySuite struct {
	suite.Suite
	registry *presence.Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.registry = presence.NewRegistry(testutil.NopLogger())
}

func (s *RegistrySuite) TestRegisterAndLookup() {
	conn := presence.NewConnection("alice", mocks.NewMockSender())
	prev := s.registry.Register(conn)
	s.Nil(prev)

	found, ok := s.registry.Lookup("alice")
	s.True(ok)
	s.Same(conn, found)
	s.Equal(1, s.registry.OnlineCount())
}

func (s *RegistrySuite) TestLookupUnknownPlayer() {
	_, ok := s.registry.Lookup("nobody")
	s.False(ok)
}

func (s *RegistrySuite) TestLastConnectWins() {
	firstSender := mocks.NewMockSender()
	first := presence.NewConnection("alice", firstSender)
	s.registry.Register(first)

	second := presence.NewConnection("alice", mocks.NewMockSender())
	prev := s.registry.Register(second)

	s.Same(first, prev)
	s.True(firstSender.Closed())

	found, ok := s.registry.Lookup("alice")
	s.True(ok)
	s.Same(second, found)
	s.Equal(1, s.registry.OnlineCount())
}

func (s *RegistrySuite) TestUnregister() {
	conn := presence.NewConnection("alice", mocks.NewMockSender())
	s.registry.Register(conn)
	s.registry.Unregister(conn)

	_, ok := s.registry.Lookup("alice")
	s.False(ok)
	s.Equal(0, s.registry.OnlineCount())
}

func (s *RegistrySuite) TestStaleUnregisterDoesNotEvictNewerConnection() {
	first := presence.NewConnection("alice", mocks.NewMockSender())
	s.registry.Register(first)

	second := presence.NewConnection("alice", mocks.NewMockSender())
	s.registry.Register(second)

	// The superseded connection's teardown arrives after the new
	// connection registered. It must not take the new binding down.
	s.registry.Unregister(first)

	found, ok := s.registry.Lookup("alice")
	s.True(ok)
	s.Same(second, found)
}

func (s *RegistrySuite) TestConnectionSessionTracking() {
	conn := presence.NewConnection("alice", mocks.NewMockSender())
	s.Empty(conn.Session())

	conn.SetSession("game-1")
	s.Equal("game-1", string(conn.Session()))

	conn.ClearSession()
	s.Empty(conn.Session())
}

func (s *RegistrySuite) TestConnectionSendForwardsToSender() {
	sender := mocks.NewMockSender()
	conn := presence.NewConnection("alice", sender)

	conn.Send(proto.ServerMessage{Type: proto.NotifyPlayerList, Message: "alice - online"})

	msgs := sender.Messages()
	s.Require().Len(msgs, 1)
	s.Equal(proto.NotifyPlayerList, msgs[0].Type)
	s.Equal("alice - online", msgs[0].Message)
}
