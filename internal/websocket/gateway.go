package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/eventdesk/internal/notify"
	"github.com/nfrund/eventdesk/internal/pubsub"
)

// EventSource delivers notification events to a subscriber.
type EventSource interface {
	Subscribe(ctx context.Context, fn func(context.Context, notify.Event)) error
}

// Config tunes the gateway.
type Config struct {
	// SendBuffer is the number of frames queued per client before deliveries are dropped.
	SendBuffer int
	// WriteTimeout bounds a single frame write.
	WriteTimeout time.Duration
	// OriginPatterns are the allowed browser origins; "*" disables the origin check.
	OriginPatterns []string
}

// Stats is a point-in-time view of gateway activity.
type Stats struct {
	Connections int    `json:"connections"`
	Accepted    uint64 `json:"accepted"`
	Relayed     uint64 `json:"relayed"`
	Delivered   uint64 `json:"delivered"`
	Failed      uint64 `json:"failed"`
}

// Gateway accepts realtime connections, keeps the registry of open clients
// and relays notification events to each of them at most once.
type Gateway struct {
	cfg      Config
	registry *Registry
	pub      pubsub.Publisher
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	// admitMu orders conns.Add against the closing transition in Shutdown.
	admitMu sync.Mutex
	conns   sync.WaitGroup
	closing atomic.Bool

	accepted  atomic.Uint64
	relayed   atomic.Uint64
	delivered atomic.Uint64
	failed    atomic.Uint64
}

// NewGateway creates a gateway. pub receives client lifecycle events and may be nil.
func NewGateway(cfg Config, pub pubsub.Publisher) *Gateway {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 256
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Gateway{
		cfg:      cfg,
		registry: NewRegistry(),
		pub:      pub,
		logger:   slog.Default().With("service", "gateway"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start subscribes the gateway to the notification source. Events published
// before Start returns are not relayed.
func (g *Gateway) Start(ctx context.Context, events EventSource) error {
	if err := events.Subscribe(g.ctx, g.Relay); err != nil {
		return err
	}

	if sub, ok := g.pub.(pubsub.Subscriber); ok {
		logLifecycle := func(msg string) func(context.Context, ClientEvent) error {
			return func(ctx context.Context, evt ClientEvent) error {
				g.logger.DebugContext(ctx, msg, "client_id", evt.ClientID, "reason", evt.Reason)
				return nil
			}
		}
		if err := pubsub.Subscribe(g.ctx, sub, TopicClientConnected, logLifecycle("Lifecycle: client connected")); err != nil {
			return err
		}
		if err := pubsub.Subscribe(g.ctx, sub, TopicClientDisconnected, logLifecycle("Lifecycle: client disconnected")); err != nil {
			return err
		}
	}

	g.logger.InfoContext(ctx, "Realtime gateway started",
		"send_buffer", g.cfg.SendBuffer, "write_timeout", g.cfg.WriteTimeout)
	return nil
}

// Handler returns the echo handler that upgrades a request to a realtime
// connection. It blocks for the lifetime of the connection.
func (g *Gateway) Handler() echo.HandlerFunc {
	return func(c echo.Context) error {
		if !g.admit() {
			return echo.NewHTTPError(http.StatusServiceUnavailable, ErrGatewayClosed.Error())
		}

		conn, err := websocket.Accept(c.Response(), c.Request(), g.acceptOptions())
		if err != nil {
			g.conns.Done()
			// Accept has already written the failure response.
			g.logger.WarnContext(c.Request().Context(), "Failed to upgrade connection", "error", err)
			return nil
		}

		client := NewClient(uuid.NewString(), conn, g.cfg.SendBuffer)
		client.RemoteAddr = c.Request().RemoteAddr
		g.serve(client)
		return nil
	}
}

// admit reserves a connection slot that Shutdown waits for. It reports
// false once the gateway is closing.
func (g *Gateway) admit() bool {
	g.admitMu.Lock()
	defer g.admitMu.Unlock()
	if g.closing.Load() {
		return false
	}
	g.conns.Add(1)
	return true
}

func (g *Gateway) acceptOptions() *websocket.AcceptOptions {
	if len(g.cfg.OriginPatterns) == 0 || slices.Contains(g.cfg.OriginPatterns, "*") {
		return &websocket.AcceptOptions{InsecureSkipVerify: true}
	}
	return &websocket.AcceptOptions{OriginPatterns: g.cfg.OriginPatterns}
}

// serve runs an admitted connection and releases its slot when done.
func (g *Gateway) serve(client *Client) {
	defer g.conns.Done()

	if err := g.Connect(client); err != nil {
		client.conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}

	go client.writePump(g.cfg.WriteTimeout, g.logger)
	reason := client.readPump(g.ctx)
	g.Disconnect(client, reason)
}

// welcome queues the connected frame. Clients wait for this frame
// before relying on notifications.
func (g *Gateway) welcome(client *Client) {
	frame, err := EncodeFrame(EventConnected, map[string]string{"clientId": client.ID})
	if err != nil {
		g.logger.Error("Failed to encode welcome frame", "client_id", client.ID, "error", err)
		return
	}
	if err := client.Enqueue(frame); err != nil {
		g.logger.Debug("Failed to send welcome frame", "client_id", client.ID, "error", err)
	}
}

// Connect moves a client to OPEN, queues the connected frame and registers
// it. The connected frame is always the first frame a client receives.
func (g *Gateway) Connect(client *Client) error {
	if g.closing.Load() {
		client.Close()
		return ErrGatewayClosed
	}
	if !client.open() {
		client.Close()
		return ErrClientClosed
	}
	g.welcome(client)
	if !g.registry.Add(client) {
		client.Close()
		return ErrClientClosed
	}
	g.accepted.Add(1)

	g.logger.Info("Client connected", "client_id", client.ID, "remote_addr", client.RemoteAddr,
		"connections", g.registry.Count())
	g.publishLifecycle(TopicClientConnected, ClientEvent{ClientID: client.ID, RemoteAddr: client.RemoteAddr})
	return nil
}

// Disconnect removes a client and closes it. Repeated calls are no-ops.
func (g *Gateway) Disconnect(client *Client, reason string) {
	client.Close()
	if !g.registry.Remove(client.ID) {
		return
	}

	g.logger.Info("Client disconnected", "client_id", client.ID, "reason", reason,
		"connections", g.registry.Count())
	g.publishLifecycle(TopicClientDisconnected, ClientEvent{ClientID: client.ID, Reason: reason})
}

func (g *Gateway) publishLifecycle(topic pubsub.Topic[ClientEvent], evt ClientEvent) {
	if g.pub == nil {
		return
	}
	if err := pubsub.Publish(g.ctx, g.pub, topic, evt); err != nil {
		g.logger.Debug("Failed to publish lifecycle event", "topic", topic.Name(), "error", err)
	}
}

// Relay sends evt to every open client in a snapshot of the registry.
// Per-client failures are logged and never propagated.
func (g *Gateway) Relay(ctx context.Context, evt notify.Event) {
	frame, err := EncodeFrame(evt.Name, evt.Message)
	if err != nil {
		g.logger.ErrorContext(ctx, "Failed to encode notification frame", "event", evt.Name, "error", err)
		return
	}
	g.relayed.Add(1)

	clients := g.registry.Snapshot()
	delivered := 0
	for _, client := range clients {
		if err := client.Enqueue(frame); err != nil {
			g.failed.Add(1)
			g.logger.WarnContext(ctx, "Notification delivery failed",
				"error", &DeliveryError{ClientID: client.ID, Event: evt.Name, Err: err})
			continue
		}
		delivered++
	}
	g.delivered.Add(uint64(delivered))

	g.logger.DebugContext(ctx, "Notification relayed",
		"event", evt.Name, "message_id", evt.Message.ID,
		"clients", len(clients), "delivered", delivered)
}

// Stats returns current gateway counters.
func (g *Gateway) Stats() Stats {
	return Stats{
		Connections: g.registry.Count(),
		Accepted:    g.accepted.Load(),
		Relayed:     g.relayed.Load(),
		Delivered:   g.delivered.Load(),
		Failed:      g.failed.Load(),
	}
}

// Shutdown stops accepting clients, closes every open connection and waits
// for connection handlers to finish or ctx to expire. The registry is empty
// when Shutdown returns.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.admitMu.Lock()
	first := g.closing.CompareAndSwap(false, true)
	g.admitMu.Unlock()
	if !first {
		return nil
	}

	clients := g.registry.Snapshot()
	g.logger.InfoContext(ctx, "Shutting down realtime gateway", "connections", len(clients))
	for _, client := range clients {
		client.Close()
	}
	g.cancel()

	done := make(chan struct{})
	go func() {
		g.conns.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}

	for _, client := range g.registry.Snapshot() {
		g.Disconnect(client, "server_shutdown")
	}
	return err
}
