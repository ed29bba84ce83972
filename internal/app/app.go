package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nfrund/eventdesk/internal/config"
	"github.com/nfrund/eventdesk/internal/database"
	"github.com/nfrund/eventdesk/internal/notify"
	"github.com/nfrund/eventdesk/internal/pubsub"
	"github.com/nfrund/eventdesk/internal/registry"
	"github.com/nfrund/eventdesk/internal/server"
	"github.com/nfrund/eventdesk/internal/topicmgr"
	"github.com/nfrund/eventdesk/internal/websocket"
)

// Options adjusts how the application is assembled.
type Options struct {
	// TopicMgr replaces the process-wide topic manager.
	TopicMgr *topicmgr.Manager
	// TracingConfig enables bus tracing. Nil uses the tracing settings of the config.
	TracingConfig *pubsub.TracingConfig
}

// App is a fully wired server plus the cleanup of process-wide resources.
type App struct {
	Server   *server.Server
	Registry *registry.Registry
	cleanup  func()
}

// RegisterTopics makes every bus topic the application publishes known to m.
func RegisterTopics(m *topicmgr.Manager) error {
	for _, t := range []topicmgr.Topic{
		notify.MessageCreated.Topic,
		websocket.TopicClientConnected.Topic,
		websocket.TopicClientDisconnected.Topic,
	} {
		if err := m.EnsureRegistered(t); err != nil {
			return fmt.Errorf("register topic %s: %w", t.Name(), err)
		}
	}
	return nil
}

// New wires the store, bus, gateway, modules and routes. The gateway is
// subscribed to the bus before New returns, so the server can accept
// submissions immediately.
func New(ctx context.Context, cfg config.Provider, opts Options) (*App, error) {
	if v, ok := cfg.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
	}

	topics := opts.TopicMgr
	if topics == nil {
		topics = topicmgr.Default()
	}
	if err := RegisterTopics(topics); err != nil {
		return nil, err
	}

	tracingCfg := pubsub.TracingConfigFrom(cfg)
	if opts.TracingConfig != nil {
		tracingCfg = *opts.TracingConfig
	}
	tracer, cleanupTracing, err := pubsub.SetupOTel(ctx, tracingCfg)
	if err != nil {
		return nil, fmt.Errorf("setup tracing: %w", err)
	}

	store, err := database.NewContactStore(ctx, cfg)
	if err != nil {
		cleanupTracing()
		return nil, fmt.Errorf("open contact store: %w", err)
	}

	bridge := pubsub.NewWatermillBridge(
		pubsub.WithTracer(tracer),
		pubsub.WithTopicManager(topics),
		pubsub.WithOutputBuffer(int64(cfg.GetPubSubBuffer())),
	)
	bus := notify.NewBus(bridge, bridge)
	gateway := websocket.NewGateway(websocket.Config{
		SendBuffer:     cfg.GetWSSendBuffer(),
		WriteTimeout:   cfg.GetWSWriteTimeout(),
		OriginPatterns: cfg.GetCORSAllowOrigins(),
	}, bridge)

	fail := func(err error) (*App, error) {
		_ = gateway.Shutdown(context.WithoutCancel(ctx))
		_ = bridge.Close()
		_ = store.Close()
		cleanupTracing()
		return nil, err
	}

	if err := gateway.Start(ctx, bus); err != nil {
		return fail(fmt.Errorf("start gateway: %w", err))
	}

	reg := registry.New(cfg)
	registry.Set(reg, registry.ContactStoreKey, store)
	registry.Set(reg, registry.NotifyBusKey, bus)
	registry.Set[pubsub.Publisher](reg, registry.PublisherKey, bridge)
	registry.Set[pubsub.Subscriber](reg, registry.SubscriberKey, bridge)
	registry.Set(reg, registry.GatewayKey, gateway)
	registry.Set(reg, registry.TopicManagerKey, topics)

	srv, err := server.New(server.Dependencies{
		Config:  cfg,
		Store:   store,
		Bus:     bus,
		Gateway: gateway,
		PubSub:  bridge,
	})
	if err != nil {
		return fail(err)
	}

	modules := NewModules(Dependencies{
		Config:     cfg,
		Publisher:  bridge,
		Subscriber: bridge,
		TopicMgr:   topics,
		Store:      store,
		Bus:        bus,
	})
	if err := srv.InitModules(ctx, modules, reg); err != nil {
		return fail(err)
	}
	srv.RegisterRoutes()

	slog.Info("Application wired",
		"store_driver", cfg.GetStoreDriver(),
		"topics", topics.Count(),
		"modules", len(modules),
		"services", reg.Keys())

	return &App{Server: srv, Registry: reg, cleanup: cleanupTracing}, nil
}

// Run serves until ctx is cancelled, then shuts down and flushes traces.
func (a *App) Run(ctx context.Context) error {
	defer a.cleanup()
	return a.Server.Start(ctx)
}

// Shutdown stops the server without Run, as used by tests.
func (a *App) Shutdown(ctx context.Context) error {
	defer a.cleanup()
	return a.Server.Shutdown(ctx)
}
