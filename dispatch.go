package agenium

import (
	"context"
	"fmt"

	"github.com/Aganium/agenium-go/protocol"
	"github.com/Aganium/agenium-go/tools"
)

// MethodToolInvoke is the request method for remote tool invocation.
const MethodToolInvoke = "tool.invoke"

// HandleRaw decodes a serialized frame and dispatches it. See HandleFrame.
func (a *Agent) HandleRaw(ctx context.Context, raw []byte) (any, error) {
	frame, err := protocol.DecodeFrame(raw)
	if err != nil {
		return nil, err
	}
	return a.HandleFrame(ctx, frame)
}

// HandleFrame routes an incoming frame. Requests produce a response or
// error frame; events invoke any registered event handler and produce
// nothing; response and error frames are the caller's to correlate and
// also produce nothing. Values that are not frames are rejected.
func (a *Agent) HandleFrame(ctx context.Context, frame any) (any, error) {
	switch f := frame.(type) {
	case protocol.RequestFrame:
		return a.handleRequest(ctx, f), nil
	case *protocol.RequestFrame:
		return a.handleRequest(ctx, *f), nil
	case protocol.EventFrame:
		a.handleEvent(ctx, f)
		return nil, nil
	case *protocol.EventFrame:
		a.handleEvent(ctx, *f)
		return nil, nil
	case protocol.ResponseFrame, *protocol.ResponseFrame, protocol.ErrorFrame, *protocol.ErrorFrame:
		return nil, nil
	}
	return nil, fmt.Errorf("not a protocol frame: %T", frame)
}

func (a *Agent) handleRequest(ctx context.Context, req protocol.RequestFrame) any {
	if !protocol.ValidateFrame(req) {
		return protocol.NewError(req.ID, protocol.CodeInvalidRequest, "malformed request frame", nil, req.SessionID)
	}
	if req.SessionID != "" {
		if _, ok := a.sessions.Get(req.SessionID); !ok {
			return protocol.NewError(req.ID, protocol.CodeSessionNotFound,
				fmt.Sprintf("session not found: %s", req.SessionID), nil, req.SessionID)
		}
	}

	if req.Method == MethodToolInvoke {
		return a.handleToolInvoke(ctx, req)
	}

	a.mu.Lock()
	handler, ok := a.requestHandlers[req.Method]
	a.mu.Unlock()
	if !ok {
		return protocol.NewError(req.ID, protocol.CodeMethodNotFound,
			fmt.Sprintf("method not found: %s", req.Method), nil, req.SessionID)
	}

	result, err := handler(ctx, req)
	if err != nil {
		return protocol.NewError(req.ID, protocol.CodeInternalError, err.Error(), nil, req.SessionID)
	}
	return protocol.NewResponse(req.ID, result, req.SessionID)
}

// handleToolInvoke runs a local tool for a remote caller, mapping the
// registry's error kinds onto wire error codes.
func (a *Agent) handleToolInvoke(ctx context.Context, req protocol.RequestFrame) any {
	toolName, _ := req.Params["tool"].(string)
	if toolName == "" {
		return protocol.NewError(req.ID, protocol.CodeInvalidParams, "missing tool name", nil, req.SessionID)
	}
	input, _ := req.Params["input"].(map[string]any)

	res := a.tools.Invoke(ctx, toolName, tools.Params(input), tools.Context{
		SessionID: req.SessionID,
		AgentName: a.name,
	})
	if res.Success {
		return protocol.NewResponse(req.ID, res.Result, req.SessionID)
	}

	code := protocol.CodeInternalError
	switch res.Kind {
	case tools.ErrKindNotFound:
		code = protocol.CodeMethodNotFound
	case tools.ErrKindInvalidParams:
		code = protocol.CodeInvalidParams
	}
	return protocol.NewError(req.ID, code, res.Error, nil, req.SessionID)
}

func (a *Agent) handleEvent(ctx context.Context, evt protocol.EventFrame) {
	a.mu.Lock()
	handler, ok := a.eventHandlers[evt.Event]
	a.mu.Unlock()
	if ok {
		handler(ctx, evt)
	}
}
