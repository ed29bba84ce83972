package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nfrund/eventdesk/internal/config"
	"github.com/nfrund/eventdesk/internal/domain"
)

// NewContactStore builds the ContactRepository selected by the configured
// store driver.
func NewContactStore(ctx context.Context, cfg config.Provider) (domain.ContactRepository, error) {
	switch driver := cfg.GetStoreDriver(); driver {
	case config.StoreMemory:
		slog.InfoContext(ctx, "Using in-memory contact store; messages will not survive a restart")
		return NewMemoryContactStore(), nil

	case config.StoreSQLite:
		db, err := OpenSQLite(ctx, cfg.GetSQLitePath())
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		slog.InfoContext(ctx, "Using SQLite contact store", "path", cfg.GetSQLitePath())
		return NewSQLiteContactStore(db, cfg.GetDBQueryTimeout(), cfg.GetDBExecuteTimeout()), nil

	case config.StoreSurreal:
		conn := NewConnection(cfg)
		if err := conn.Connect(ctx); err != nil {
			return nil, fmt.Errorf("connect surreal store: %w", err)
		}
		conn.StartMonitoring()
		return NewSurrealContactStore(conn, cfg.GetDBQueryTimeout(), cfg.GetDBExecuteTimeout()), nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
