package database

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
)

// selectRows runs query on a pooled connection and decodes the rows of its
// first statement. Failures are returned as *QueryError carrying the query.
func selectRows[T any](ctx context.Context, conn *Connection, query string, params map[string]any) ([]T, error) {
	var rows []T
	err := conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		results, err := surrealdb.Query[[]T](ctx, db, query, params)
		if err != nil {
			return err
		}
		if results != nil && len(*results) > 0 {
			rows = (*results)[0].Result
		}
		return nil
	})
	if err != nil {
		return nil, queryErr("run query", query, err)
	}
	return rows, nil
}

// selectRecord is selectRows for statements addressing one record id.
// A statement that matched nothing yields ErrNotFound.
func selectRecord[T any](ctx context.Context, conn *Connection, query string, params map[string]any) (*T, error) {
	rows, err := selectRows[T](ctx, conn, query, params)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// Execute runs statements whose results are not needed, such as table
// cleanup between integration tests.
func Execute(ctx context.Context, db *surrealdb.DB, query string, params map[string]any) error {
	if _, err := surrealdb.Query[any](ctx, db, query, params); err != nil {
		return fmt.Errorf("query execution failed: %w", err)
	}
	return nil
}
