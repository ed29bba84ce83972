package websocket

import (
	"encoding/json"
	"fmt"
)

// EventConnected is the first frame sent on every connection, once the
// client is registered and will receive notifications.
const EventConnected = "connected"

// Frame is the JSON envelope written to realtime clients.
type Frame struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// EncodeFrame renders a frame once so it can be shared by every recipient.
func EncodeFrame(eventType string, payload any) ([]byte, error) {
	if eventType == "" {
		return nil, fmt.Errorf("encode frame: %w", errEmptyFrameType)
	}
	raw, err := json.Marshal(Frame{Type: eventType, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("encode %s frame: %w", eventType, err)
	}
	return raw, nil
}
