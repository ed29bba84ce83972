package websocket

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
)

// State is the lifecycle position of a realtime connection.
type State int32

const (
	StateConnecting State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Client represents a single connected realtime client.
type Client struct {
	// ID is an opaque per-connection identifier.
	ID string
	// RemoteAddr is the peer address reported at handshake.
	RemoteAddr string

	conn  *websocket.Conn
	state atomic.Int32

	mu     sync.RWMutex
	send   chan []byte
	closed bool
}

// NewClient creates a client in the CONNECTING state. conn may be nil for
// clients that are only exercised through the registry.
func NewClient(id string, conn *websocket.Conn, sendBuffer int) *Client {
	if sendBuffer <= 0 {
		sendBuffer = 1
	}
	c := &Client{
		ID:   id,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
	c.state.Store(int32(StateConnecting))
	return c
}

// State returns the current lifecycle state.
func (c *Client) State() State {
	return State(c.state.Load())
}

// open moves CONNECTING to OPEN. It reports false if the client already left CONNECTING.
func (c *Client) open() bool {
	return c.state.CompareAndSwap(int32(StateConnecting), int32(StateOpen))
}

// Enqueue queues a frame without blocking.
func (c *Client) Enqueue(frame []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed || c.State() != StateOpen {
		return ErrClientClosed
	}

	select {
	case c.send <- frame:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close moves the client to CLOSED and stops its write pump. Safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Store(int32(StateClosed))
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// writePump pumps frames from the send channel to the connection. It closes
// the connection when the channel is closed or a write fails.
func (c *Client) writePump(writeTimeout time.Duration, logger *slog.Logger) {
	for frame := range c.send {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := c.conn.Write(ctx, websocket.MessageText, frame)
		cancel()
		if err != nil {
			logger.Warn("Notification delivery failed",
				"error", &DeliveryError{ClientID: c.ID, Event: "write", Err: err})
			c.conn.Close(websocket.StatusInternalError, "write failed")
			return
		}
	}
	c.conn.Close(websocket.StatusGoingAway, "connection closed by server")
}

// readPump reads and discards inbound frames until the connection fails or
// closes. It blocks for the lifetime of the connection and returns the reason.
func (c *Client) readPump(ctx context.Context) string {
	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			switch status := websocket.CloseStatus(err); {
			case status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway:
				return "client_closed"
			case errors.Is(err, io.EOF):
				return "eof"
			case ctx.Err() != nil:
				return "server_shutdown"
			default:
				return "read_error"
			}
		}
	}
}
