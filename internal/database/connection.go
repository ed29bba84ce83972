package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nfrund/eventdesk/internal/config"
	"github.com/surrealdb/surrealdb.go"
)

// SurrealSettings locates and authenticates against a SurrealDB database.
type SurrealSettings struct {
	URL       string
	Namespace string
	Database  string
	User      string
	Pass      string
	// HealthInterval is the period of background health checks. Zero means 30s.
	HealthInterval time.Duration
}

// SurrealSettingsFrom reads the SURREAL_* settings of cfg.
func SurrealSettingsFrom(cfg config.Provider) SurrealSettings {
	return SurrealSettings{
		URL:       cfg.GetDBUrl(),
		Namespace: cfg.GetDBNs(),
		Database:  cfg.GetDBDb(),
		User:      cfg.GetDBUser(),
		Pass:      cfg.GetDBPass(),
	}
}

// ConnectionStatus is a snapshot of a Connection's health.
type ConnectionStatus struct {
	Healthy    bool
	Reconnects uint64
	LastError  string
}

// Connection owns one SurrealDB session. Operations that fail because the
// link dropped are retried on a fresh session with exponential backoff, and
// a background monitor re-establishes sessions that fail health checks.
type Connection struct {
	settings SurrealSettings
	backoff  Backoff

	mu      sync.RWMutex
	db      *surrealdb.DB
	lastErr error

	healthy    atomic.Bool
	reconnects atomic.Uint64

	stop      chan struct{}
	stopOnce  sync.Once
	monitorWG sync.WaitGroup
}

// NewConnection creates an unconnected Connection for the configured database.
func NewConnection(cfg config.Provider) *Connection {
	return NewConnectionWithSettings(SurrealSettingsFrom(cfg))
}

// NewConnectionWithSettings creates an unconnected Connection.
func NewConnectionWithSettings(s SurrealSettings) *Connection {
	if s.HealthInterval <= 0 {
		s.HealthInterval = 30 * time.Second
	}
	return &Connection{
		settings: s,
		backoff:  DefaultBackoff(),
		stop:     make(chan struct{}),
	}
}

// Connect opens the first session, retrying with backoff until ctx ends.
func (c *Connection) Connect(ctx context.Context) error {
	return c.backoff.Do(ctx, func() error {
		if c.session() != nil {
			return nil
		}
		err := c.reopen(ctx)
		if errors.Is(err, ErrClosed) {
			return Permanent(err)
		}
		return err
	})
}

// WithConnection runs fn on the current session. When fn fails with a
// connection error the session is reopened and fn retried.
func (c *Connection) WithConnection(ctx context.Context, fn func(*surrealdb.DB) error) error {
	db := c.session()
	if db == nil {
		return opErr("no open surreal session", ErrNotConnected)
	}

	err := fn(db)
	if err == nil || !isConnectionError(err) {
		return err
	}

	slog.WarnContext(ctx, "Surreal session lost, reconnecting",
		"error", err, "db_url", redactDBURL(c.settings.URL))
	return c.backoff.Do(ctx, func() error {
		if rerr := c.reopen(ctx); rerr != nil {
			if errors.Is(rerr, ErrClosed) {
				return Permanent(rerr)
			}
			return fmt.Errorf("reconnect: %w (after %v)", rerr, err)
		}
		return fn(c.session())
	})
}

// StartMonitoring runs periodic health checks until Close.
func (c *Connection) StartMonitoring() {
	c.monitorWG.Add(1)
	go func() {
		defer c.monitorWG.Done()
		c.monitor()
	}()
}

// Status reports the connection's health.
func (c *Connection) Status() ConnectionStatus {
	st := ConnectionStatus{Healthy: c.healthy.Load(), Reconnects: c.reconnects.Load()}
	c.mu.RLock()
	if c.lastErr != nil {
		st.LastError = c.lastErr.Error()
	}
	c.mu.RUnlock()
	return st
}

// Close stops monitoring and closes the session. Repeated calls are no-ops.
func (c *Connection) Close(ctx context.Context) error {
	var err error
	c.stopOnce.Do(func() {
		close(c.stop)
		c.monitorWG.Wait()

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.db != nil {
			err = c.db.Close(ctx)
			c.db = nil
		}
		c.healthy.Store(false)
	})
	return err
}

func (c *Connection) session() *surrealdb.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

// reopen replaces the current session with a freshly authenticated one.
func (c *Connection) reopen(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.stop:
		return ErrClosed
	default:
	}

	if c.db != nil {
		_ = c.db.Close(ctx)
		c.db = nil
		c.reconnects.Add(1)
	}

	db, err := c.dial(ctx)
	if err != nil {
		c.lastErr = err
		c.healthy.Store(false)
		return err
	}

	c.db = db
	c.lastErr = nil
	c.healthy.Store(true)
	slog.InfoContext(ctx, "Surreal session established",
		"db_url", redactDBURL(c.settings.URL),
		"namespace", c.settings.Namespace,
		"database", c.settings.Database)
	return nil
}

func (c *Connection) dial(ctx context.Context) (*surrealdb.DB, error) {
	s := c.settings
	db, err := surrealdb.FromEndpointURLString(ctx, s.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", redactDBURL(s.URL), err)
	}
	if _, err := db.SignIn(ctx, &surrealdb.Auth{Username: s.User, Password: s.Pass}); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("sign in: %w", err)
	}
	if err := db.Use(ctx, s.Namespace, s.Database); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("use %s/%s: %w", s.Namespace, s.Database, err)
	}
	return db, nil
}

func (c *Connection) monitor() {
	ticker := time.NewTicker(c.settings.HealthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := c.ping(ctx); err != nil {
				slog.WarnContext(ctx, "Surreal health check failed, reconnecting", "error", err)
				if rerr := c.recoveryBackoff().Do(ctx, func() error { return c.reopen(ctx) }); rerr != nil {
					slog.ErrorContext(ctx, "Surreal reconnect after failed health check gave up", "error", rerr)
				}
			}
			cancel()
		}
	}
}

// recoveryBackoff bounds reconnects made by the health monitor so a check
// never outlives its ticker period by much.
func (c *Connection) recoveryBackoff() Backoff {
	b := c.backoff
	b.Retries = min(b.Retries, 2)
	return b
}

func (c *Connection) ping(ctx context.Context) error {
	db := c.session()
	if db == nil {
		c.healthy.Store(false)
		return errors.New("no open surreal session")
	}
	if _, err := db.Version(ctx); err != nil {
		c.healthy.Store(false)
		return fmt.Errorf("version round trip: %w", err)
	}
	c.healthy.Store(true)
	return nil
}

// isConnectionError tells dropped links from query errors, which are not retried.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection refused", "broken pipe", "unexpected eof", "use of closed network connection"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// redactDBURL hides any password in dbURL for logging.
func redactDBURL(dbURL string) string {
	u, err := url.Parse(dbURL)
	if err != nil {
		return "invalid-url"
	}
	return u.Redacted()
}
