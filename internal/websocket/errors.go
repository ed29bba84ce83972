package websocket

import (
	"errors"
	"fmt"
)

var (
	// ErrClientClosed is returned when enqueueing to a client that is not open.
	ErrClientClosed = errors.New("client connection closed")
	// ErrSendBufferFull is returned when a slow client's send buffer is full.
	ErrSendBufferFull = errors.New("client send buffer full")
	// ErrGatewayClosed is returned once Shutdown has started.
	ErrGatewayClosed = errors.New("gateway closed")

	errEmptyFrameType = errors.New("frame type is required")
)

// DeliveryError describes a failed delivery to a single client. It is logged
// by the gateway and never returned to publishers.
type DeliveryError struct {
	ClientID string
	Event    string
	Err      error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver %s to client %s: %v", e.Event, e.ClientID, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
