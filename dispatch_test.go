package agenium

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Aganium/agenium-go/protocol"
	"github.com/Aganium/agenium-go/tools"
)

func dispatchAgent(t *testing.T) *Agent {
	t.Helper()
	a := newTestAgent(t, "alice")
	a.RegisterTool("add", func(_ context.Context, p tools.Params) (any, error) {
		x, err := p.Float("a")
		if err != nil {
			return nil, err
		}
		y, err := p.Float("b")
		if err != nil {
			return nil, err
		}
		return x + y, nil
	}, "Add numbers", map[string]any{
		"type":     "object",
		"required": []any{"a", "b"},
	}, nil)
	return a
}

func TestHandleToolInvokeSuccess(t *testing.T) {
	a := dispatchAgent(t)

	req := protocol.NewRequest(MethodToolInvoke, map[string]any{
		"tool":  "add",
		"input": map[string]any{"a": float64(3), "b": float64(4)},
	}, "")

	out, err := a.HandleFrame(context.Background(), req)
	require.NoError(t, err)
	resp, ok := out.(protocol.ResponseFrame)
	require.True(t, ok, "got %T", out)
	require.Equal(t, req.ID, resp.RequestID)
	require.Equal(t, float64(7), resp.Result)
}

func TestHandleToolInvokeErrorCodes(t *testing.T) {
	a := dispatchAgent(t)

	cases := []struct {
		name   string
		params map[string]any
		code   int
	}{
		{
			name:   "unknown tool",
			params: map[string]any{"tool": "missing", "input": map[string]any{}},
			code:   protocol.CodeMethodNotFound,
		},
		{
			name:   "binding failure",
			params: map[string]any{"tool": "add", "input": map[string]any{"a": float64(1)}},
			code:   protocol.CodeInvalidParams,
		},
		{
			name:   "missing tool name",
			params: map[string]any{"input": map[string]any{}},
			code:   protocol.CodeInvalidParams,
		},
	}
	for _, tc := range cases {
		req := protocol.NewRequest(MethodToolInvoke, tc.params, "")
		out, err := a.HandleFrame(context.Background(), req)
		require.NoError(t, err, tc.name)
		errFrame, ok := out.(protocol.ErrorFrame)
		require.True(t, ok, "%s: got %T", tc.name, out)
		require.Equal(t, tc.code, errFrame.Code, tc.name)
		require.Equal(t, req.ID, errFrame.RequestID, tc.name)
	}
}

func TestHandleToolInvokeHandlerFailure(t *testing.T) {
	a := dispatchAgent(t)
	a.RegisterTool("boom", func(context.Context, tools.Params) (any, error) {
		return nil, errors.New("boom")
	}, "", nil, nil)

	req := protocol.NewRequest(MethodToolInvoke, map[string]any{
		"tool":  "boom",
		"input": map[string]any{},
	}, "")
	out, err := a.HandleFrame(context.Background(), req)
	require.NoError(t, err)
	errFrame, ok := out.(protocol.ErrorFrame)
	require.True(t, ok)
	require.Equal(t, protocol.CodeInternalError, errFrame.Code)
	require.Contains(t, errFrame.Message, "boom")
}

func TestHandleUnknownMethod(t *testing.T) {
	a := dispatchAgent(t)

	req := protocol.NewRequest("no.such.method", nil, "")
	out, err := a.HandleFrame(context.Background(), req)
	require.NoError(t, err)
	errFrame, ok := out.(protocol.ErrorFrame)
	require.True(t, ok)
	require.Equal(t, protocol.CodeMethodNotFound, errFrame.Code)
}

func TestHandleRegisteredRequestHandler(t *testing.T) {
	a := dispatchAgent(t)
	a.OnRequest("status", func(_ context.Context, req protocol.RequestFrame) (any, error) {
		return map[string]any{"agent": a.Name()}, nil
	})

	req := protocol.NewRequest("status", nil, "")
	out, err := a.HandleFrame(context.Background(), req)
	require.NoError(t, err)
	resp, ok := out.(protocol.ResponseFrame)
	require.True(t, ok)
	require.Equal(t, map[string]any{"agent": "alice"}, resp.Result)
}

func TestHandleRequestHandlerError(t *testing.T) {
	a := dispatchAgent(t)
	a.OnRequest("fail", func(context.Context, protocol.RequestFrame) (any, error) {
		return nil, errors.New("handler blew up")
	})

	out, err := a.HandleFrame(context.Background(), protocol.NewRequest("fail", nil, ""))
	require.NoError(t, err)
	errFrame, ok := out.(protocol.ErrorFrame)
	require.True(t, ok)
	require.Equal(t, protocol.CodeInternalError, errFrame.Code)
}

func TestHandleUnknownSession(t *testing.T) {
	a := dispatchAgent(t)

	req := protocol.NewRequest(MethodToolInvoke, map[string]any{"tool": "add"}, "missing-session")
	out, err := a.HandleFrame(context.Background(), req)
	require.NoError(t, err)
	errFrame, ok := out.(protocol.ErrorFrame)
	require.True(t, ok)
	require.Equal(t, protocol.CodeSessionNotFound, errFrame.Code)
}

func TestHandleEventDispatch(t *testing.T) {
	a := dispatchAgent(t)

	var seen protocol.EventFrame
	a.OnEvent("ping", func(_ context.Context, evt protocol.EventFrame) {
		seen = evt
	})

	evt := protocol.NewEvent("ping", map[string]any{"n": float64(1)}, "")
	out, err := a.HandleFrame(context.Background(), evt)
	require.NoError(t, err)
	require.Nil(t, out, "events produce no reply")
	require.Equal(t, evt.ID, seen.ID)
}

func TestHandleRawRoundTrip(t *testing.T) {
	a := dispatchAgent(t)

	req := protocol.NewRequest(MethodToolInvoke, map[string]any{
		"tool":  "add",
		"input": map[string]any{"a": float64(2), "b": float64(5)},
	}, "")
	raw, err := json.Marshal(req)
	require.NoError(t, err)

	out, err := a.HandleRaw(context.Background(), raw)
	require.NoError(t, err)
	resp, ok := out.(protocol.ResponseFrame)
	require.True(t, ok)
	require.Equal(t, float64(7), resp.Result)

	_, err = a.HandleRaw(context.Background(), []byte("not a frame"))
	require.Error(t, err)
}

func TestHandleFrameRejectsNonFrames(t *testing.T) {
	a := dispatchAgent(t)
	_, err := a.HandleFrame(context.Background(), "just a string")
	require.Error(t, err)
}
