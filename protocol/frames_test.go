package protocol

import (
	"encoding/json"
	"testing"
)

func TestErrorCodes(t *testing.T) {
	// Wire-visible constants; other implementations depend on these values.
	checks := map[int]int{
		CodeInvalidRequest:   -32600,
		CodeMethodNotFound:   -32601,
		CodeInvalidParams:    -32602,
		CodeInternalError:    -32603,
		CodeTimeout:          -32000,
		CodeSessionNotFound:  -32001,
		CodeDuplicateMessage: -32002,
	}
	for got, want := range checks {
		if got != want {
			t.Fatalf("error code drifted: got %d, want %d", got, want)
		}
	}
}

func TestNewRequest(t *testing.T) {
	f := NewRequest("tool.invoke", map[string]any{"tool": "echo"}, "sess-1")
	if f.Type != MessageRequest {
		t.Fatalf("type = %q", f.Type)
	}
	if f.ID == "" || f.Timestamp == 0 {
		t.Fatal("request frame missing id or timestamp")
	}
	if f.Method != "tool.invoke" || f.SessionID != "sess-1" {
		t.Fatalf("unexpected frame: %+v", f)
	}

	other := NewRequest("tool.invoke", nil, "")
	if other.ID == f.ID {
		t.Fatal("frame ids must be unique")
	}
	if other.Params == nil {
		t.Fatal("nil params should default to an empty map")
	}
}

func TestValidateFrame(t *testing.T) {
	req := NewRequest("ping", nil, "")
	resp := NewResponse(req.ID, "pong", "")
	evt := NewEvent("joined", map[string]any{"who": "alice"}, "")
	errf := NewError(req.ID, CodeInternalError, "boom", nil, "")

	for _, frame := range []any{req, resp, evt, errf, &req, &resp} {
		if !ValidateFrame(frame) {
			t.Fatalf("expected frame to validate: %+v", frame)
		}
	}

	// Missing business fields.
	if ValidateFrame(RequestFrame{Type: MessageRequest, ID: "x"}) {
		t.Fatal("request without method should not validate")
	}
	if ValidateFrame(ResponseFrame{Type: MessageResponse, ID: "x"}) {
		t.Fatal("response without request_id should not validate")
	}
	if ValidateFrame(EventFrame{Type: MessageEvent, ID: "x"}) {
		t.Fatal("event without name should not validate")
	}
	if ValidateFrame(ErrorFrame{Type: MessageError, ID: "x"}) {
		t.Fatal("error without request_id should not validate")
	}
	if ValidateFrame(RequestFrame{Type: MessageRequest, Method: "m"}) {
		t.Fatal("frame without id should not validate")
	}

	// Non-frame values.
	if ValidateFrame(nil) || ValidateFrame("frame") || ValidateFrame(42) {
		t.Fatal("non-frame values should not validate")
	}
}

func TestFrameWireShape(t *testing.T) {
	f := NewRequest("tool.invoke", map[string]any{"tool": "add"}, "sess-9")
	raw, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var wire map[string]any
	if err := json.Unmarshal(raw, &wire); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if wire["type"] != "request" {
		t.Fatalf(`wire type = %v, want "request"`, wire["type"])
	}
	for _, key := range []string{"id", "timestamp", "method", "params", "session_id"} {
		if _, ok := wire[key]; !ok {
			t.Fatalf("wire frame missing %q: %s", key, raw)
		}
	}
}

func TestDecodeFrame(t *testing.T) {
	orig := NewEvent("status", map[string]any{"ok": true}, "sess-2")
	raw, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	decoded, err := DecodeFrame(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	evt, ok := decoded.(EventFrame)
	if !ok {
		t.Fatalf("decoded %T, want EventFrame", decoded)
	}
	if evt.ID != orig.ID || evt.Event != "status" || evt.SessionID != "sess-2" {
		t.Fatalf("decoded frame mismatch: %+v", evt)
	}

	if _, err := DecodeFrame([]byte(`{"type":"banana"}`)); err == nil {
		t.Fatal("unknown frame type should fail")
	}
	if _, err := DecodeFrame([]byte(`not json`)); err == nil {
		t.Fatal("malformed payload should fail")
	}
}
