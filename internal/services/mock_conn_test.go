package services

import (
	"context"
	"net"
	"sync"

	"github.com/coder/websocket"
)

// mockConn is an in-memory Conn for exercising the hub without a network.
// Reads block until a frame is queued with push or the connection closes.
type mockConn struct {
	mu      sync.Mutex
	inbound chan []byte
	written [][]byte
	closed  bool
}

func newMockConn() *mockConn {
	return &mockConn{
		inbound: make(chan []byte, 16),
	}
}

func (m *mockConn) push(data []byte) {
	m.inbound <- data
}

func (m *mockConn) Read(ctx context.Context) (websocket.MessageType, []byte, error) {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return 0, nil, net.ErrClosed
	}

	select {
	case <-ctx.Done():
		return 0, nil, ctx.Err()
	case data, ok := <-m.inbound:
		if !ok {
			return 0, nil, net.ErrClosed
		}
		return websocket.MessageText, data, nil
	}
}

func (m *mockConn) Write(ctx context.Context, typ websocket.MessageType, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return net.ErrClosed
	}

	cp := make([]byte, len(data))
	copy(cp, data)
	m.written = append(m.written, cp)
	return nil
}

func (m *mockConn) Close(code websocket.StatusCode, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockConn) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
