// Package protocol defines the frame types exchanged between agents and
// the wire-visible error codes. Frames are immutable value objects:
// construction never fails, and required business fields are checked
// separately by ValidateFrame so producers can build partial frames.
package protocol

import (
	"time"

	"github.com/Aganium/agenium-go/core"
)

// MessageType tags a frame on the wire.
type MessageType string

const (
	MessageRequest  MessageType = "request"
	MessageResponse MessageType = "response"
	MessageEvent    MessageType = "event"
	MessageError    MessageType = "error"
)

// Wire-visible error codes. These follow the JSON-RPC 2.0 convention and
// must match other agent implementations exactly.
const (
	CodeInvalidRequest   = -32600
	CodeMethodNotFound   = -32601
	CodeInvalidParams    = -32602
	CodeInternalError    = -32603
	CodeTimeout          = -32000
	CodeSessionNotFound  = -32001
	CodeDuplicateMessage = -32002
)

// now returns the current time as Unix seconds. The original wire format
// carries fractional-second float timestamps.
func now() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}

// RequestFrame is a request expecting a response.
type RequestFrame struct {
	Type      MessageType    `json:"type"`
	ID        string         `json:"id"`
	Method    string         `json:"method"`
	Params    map[string]any `json:"params"`
	SessionID string         `json:"session_id,omitempty"`
	Timestamp float64        `json:"timestamp"`
}

// ResponseFrame answers a request.
type ResponseFrame struct {
	Type      MessageType `json:"type"`
	ID        string      `json:"id"`
	RequestID string      `json:"request_id"`
	Result    any         `json:"result"`
	SessionID string      `json:"session_id,omitempty"`
	Timestamp float64     `json:"timestamp"`
}

// EventFrame is a one-way notification; no response is expected.
type EventFrame struct {
	Type      MessageType `json:"type"`
	ID        string      `json:"id"`
	Event     string      `json:"event"`
	Data      any         `json:"data,omitempty"`
	SessionID string      `json:"session_id,omitempty"`
	Timestamp float64     `json:"timestamp"`
}

// ErrorFrame reports a failed request.
type ErrorFrame struct {
	Type      MessageType `json:"type"`
	ID        string      `json:"id"`
	RequestID string      `json:"request_id"`
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Data      any         `json:"data,omitempty"`
	SessionID string      `json:"session_id,omitempty"`
	Timestamp float64     `json:"timestamp"`
}

// NewRequest builds a request frame with a fresh id and timestamp.
func NewRequest(method string, params map[string]any, sessionID string) RequestFrame {
	if params == nil {
		params = map[string]any{}
	}
	return RequestFrame{
		Type:      MessageRequest,
		ID:        core.GenerateID(),
		Method:    method,
		Params:    params,
		SessionID: sessionID,
		Timestamp: now(),
	}
}

// NewResponse builds a response frame for the given request id.
func NewResponse(requestID string, result any, sessionID string) ResponseFrame {
	return ResponseFrame{
		Type:      MessageResponse,
		ID:        core.GenerateID(),
		RequestID: requestID,
		Result:    result,
		SessionID: sessionID,
		Timestamp: now(),
	}
}

// NewEvent builds an event frame.
func NewEvent(event string, data any, sessionID string) EventFrame {
	return EventFrame{
		Type:      MessageEvent,
		ID:        core.GenerateID(),
		Event:     event,
		Data:      data,
		SessionID: sessionID,
		Timestamp: now(),
	}
}

// NewError builds an error frame answering the given request id.
func NewError(requestID string, code int, message string, data any, sessionID string) ErrorFrame {
	return ErrorFrame{
		Type:      MessageError,
		ID:        core.GenerateID(),
		RequestID: requestID,
		Code:      code,
		Message:   message,
		Data:      data,
		SessionID: sessionID,
		Timestamp: now(),
	}
}

// ValidateFrame reports whether frame is one of the four frame types and
// carries its required fields. Values of any other type are rejected.
// Both value and pointer forms are accepted.
func ValidateFrame(frame any) bool {
	switch f := frame.(type) {
	case RequestFrame:
		return f.ID != "" && f.Method != ""
	case *RequestFrame:
		return f != nil && f.ID != "" && f.Method != ""
	case ResponseFrame:
		return f.ID != "" && f.RequestID != ""
	case *ResponseFrame:
		return f != nil && f.ID != "" && f.RequestID != ""
	case EventFrame:
		return f.ID != "" && f.Event != ""
	case *EventFrame:
		return f != nil && f.ID != "" && f.Event != ""
	case ErrorFrame:
		return f.ID != "" && f.RequestID != ""
	case *ErrorFrame:
		return f != nil && f.ID != "" && f.RequestID != ""
	}
	return false
}
