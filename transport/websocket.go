package transport

import (
	"context"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// WebSocketTransport carries frames over WebSocket connections, dialing
// each endpoint lazily and reusing the connection for subsequent frames.
// Frames are JSON encoded. It deliberately implements no handshake or
// retry semantics; it is a thin carrier.
type WebSocketTransport struct {
	dialer *websocket.Dialer

	mu    sync.Mutex
	conns map[string]*websocket.Conn
}

// NewWebSocketTransport returns a transport using the default dialer.
func NewWebSocketTransport() *WebSocketTransport {
	return &WebSocketTransport{
		dialer: websocket.DefaultDialer,
		conns:  make(map[string]*websocket.Conn),
	}
}

// Send writes the frame as JSON to the connection for endpoint, dialing
// it first if needed. A write failure drops the cached connection so the
// next Send redials.
func (t *WebSocketTransport) Send(ctx context.Context, frame any, endpoint string) error {
	conn, err := t.conn(ctx, endpoint)
	if err != nil {
		return err
	}
	if err := conn.WriteJSON(frame); err != nil {
		t.drop(endpoint)
		return fmt.Errorf("writing frame to %s: %w", endpoint, err)
	}
	return nil
}

func (t *WebSocketTransport) conn(ctx context.Context, endpoint string) (*websocket.Conn, error) {
	t.mu.Lock()
	if conn, ok := t.conns[endpoint]; ok {
		t.mu.Unlock()
		return conn, nil
	}
	t.mu.Unlock()

	// Dial without holding the lock so a slow endpoint cannot stall sends
	// to every other endpoint.
	conn, _, err := t.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", endpoint, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.conns[endpoint]; ok {
		// A concurrent dial won the race; keep its connection.
		conn.Close()
		return existing, nil
	}
	t.conns[endpoint] = conn
	return conn, nil
}

func (t *WebSocketTransport) drop(endpoint string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if conn, ok := t.conns[endpoint]; ok {
		conn.Close()
		delete(t.conns, endpoint)
	}
}

// Close closes every open connection.
func (t *WebSocketTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var firstErr error
	for endpoint, conn := range t.conns {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(t.conns, endpoint)
	}
	return firstErr
}
