package transport

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Aganium/agenium-go/protocol"
)

// wsSink upgrades connections and forwards every received message.
func wsSink(t *testing.T, received chan<- []byte) http.HandlerFunc {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			received <- msg
		}
	}
}

func TestWebSocketTransportSend(t *testing.T) {
	received := make(chan []byte, 4)
	srv := httptest.NewServer(wsSink(t, received))
	defer srv.Close()
	endpoint := "ws" + strings.TrimPrefix(srv.URL, "http")

	tr := NewWebSocketTransport()
	defer tr.Close()

	frame := protocol.NewEvent("status", map[string]any{"ok": true}, "sess-1")
	if err := tr.Send(context.Background(), frame, endpoint); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case raw := <-received:
		var wire map[string]any
		if err := json.Unmarshal(raw, &wire); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if wire["type"] != "event" || wire["event"] != "status" {
			t.Fatalf("unexpected wire frame: %s", raw)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("frame never arrived")
	}

	// Second send reuses the connection.
	if err := tr.Send(context.Background(), protocol.NewEvent("again", nil, ""), endpoint); err != nil {
		t.Fatalf("second Send: %v", err)
	}
	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("second frame never arrived")
	}
}

func TestSendNotBlockedBySlowDial(t *testing.T) {
	received := make(chan []byte, 4)
	srv := httptest.NewServer(wsSink(t, received))
	defer srv.Close()
	endpoint := "ws" + strings.TrimPrefix(srv.URL, "http")

	// A listener that accepts but never answers the handshake keeps a
	// dial to it pending.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	tr := NewWebSocketTransport()
	defer tr.Close()

	stallCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go tr.Send(stallCtx, protocol.NewEvent("stuck", nil, ""), "ws://"+ln.Addr().String())
	time.Sleep(50 * time.Millisecond)

	done := make(chan error, 1)
	go func() {
		done <- tr.Send(context.Background(), protocol.NewEvent("quick", nil, ""), endpoint)
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Send: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("send to healthy endpoint blocked behind an unrelated dial")
	}
}

func TestWebSocketTransportDialFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	tr := NewWebSocketTransport()
	defer tr.Close()

	if err := tr.Send(context.Background(), protocol.NewEvent("x", nil, ""), endpoint); err == nil {
		t.Fatal("expected dial error")
	}
}

func TestNullTransport(t *testing.T) {
	tr := &NullTransport{Quiet: true}
	if err := tr.Send(context.Background(), protocol.NewEvent("x", nil, ""), "anywhere"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
