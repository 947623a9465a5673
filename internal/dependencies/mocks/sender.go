package mocks

import (
	"sync"

	"github.com/xogame/arena/internal/proto"
)

// MockSender records every notification pushed to a connection so
// tests can assert on what a player would have seen.
type MockSender struct {
	mu       sync.Mutex
	messages []proto.ServerMessage
	closed   bool
}

// NewMockSender creates a MockSender
func NewMockSender() *MockSender {
	return &MockSender{}
}

// Send records the message
func (m *MockSender) Send(msg proto.ServerMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
}

// Close marks the sender as closed
func (m *MockSender) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

// Closed reports whether Close has been called
func (m *MockSender) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Messages returns a copy of everything sent so far
func (m *MockSender) Messages() []proto.ServerMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]proto.ServerMessage, len(m.messages))
	copy(out, m.messages)
	return out
}

// Last returns the most recent message, or a zero message if none
func (m *MockSender) Last() proto.ServerMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.messages) == 0 {
		return proto.ServerMessage{}
	}
	return m.messages[len(m.messages)-1]
}

// LastOfType returns the most recent message of the given type and
// whether one was found
func (m *MockSender) LastOfType(msgType string) (proto.ServerMessage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].Type == msgType {
			return m.messages[i], true
		}
	}
	return proto.ServerMessage{}, false
}

// Reset discards recorded messages
func (m *MockSender) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
}
