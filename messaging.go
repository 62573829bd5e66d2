package agenium

import (
	"context"
	"fmt"

	"github.com/Aganium/agenium-go/protocol"
)

// Send delivers a one-way event to the session's remote agent through the
// configured transport.
func (a *Agent) Send(ctx context.Context, sessionID, event string, data any) error {
	sess, ok := a.sessions.Get(sessionID)
	if !ok {
		return fmt.Errorf("session not found: %s", sessionID)
	}

	frame := protocol.NewEvent(event, data, sessionID)
	return a.transport.Send(ctx, frame, a.sessionEndpoint(sess))
}

// CallTool sends a tool.invoke request to the session's remote agent. The
// constructed request frame is returned so the caller can correlate the
// eventual response by id.
func (a *Agent) CallTool(ctx context.Context, sessionID, toolName string, params map[string]any) (protocol.RequestFrame, error) {
	sess, ok := a.sessions.Get(sessionID)
	if !ok {
		return protocol.RequestFrame{}, fmt.Errorf("session not found: %s", sessionID)
	}
	if params == nil {
		params = map[string]any{}
	}

	frame := protocol.NewRequest(MethodToolInvoke, map[string]any{
		"tool":  toolName,
		"input": params,
	}, sessionID)

	if err := a.transport.Send(ctx, frame, a.sessionEndpoint(sess)); err != nil {
		return protocol.RequestFrame{}, fmt.Errorf("sending tool call: %w", err)
	}
	return frame, nil
}

// OnRequest registers a handler for incoming requests with the given
// method. Last registration wins.
func (a *Agent) OnRequest(method string, handler RequestHandler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.requestHandlers[method] = handler
}

// OnEvent registers a handler for incoming events with the given name.
func (a *Agent) OnEvent(event string, handler EventHandler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.eventHandlers[event] = handler
}
