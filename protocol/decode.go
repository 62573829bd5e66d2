package protocol

import (
	"encoding/json"
	"fmt"
)

// DecodeFrame parses a serialized frame, dispatching on its type tag.
// The result is one of RequestFrame, ResponseFrame, EventFrame or
// ErrorFrame.
func DecodeFrame(data []byte) (any, error) {
	var tag struct {
		Type MessageType `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, fmt.Errorf("malformed frame: %w", err)
	}

	switch tag.Type {
	case MessageRequest:
		var f RequestFrame
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("malformed request frame: %w", err)
		}
		return f, nil
	case MessageResponse:
		var f ResponseFrame
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("malformed response frame: %w", err)
		}
		return f, nil
	case MessageEvent:
		var f EventFrame
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("malformed event frame: %w", err)
		}
		return f, nil
	case MessageError:
		var f ErrorFrame
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("malformed error frame: %w", err)
		}
		return f, nil
	}
	return nil, fmt.Errorf("unknown frame type %q", tag.Type)
}
