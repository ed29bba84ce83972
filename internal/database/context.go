package database

import (
	"context"
	"time"
)

type deadlineKey int

const (
	readDeadlineKey deadlineKey = iota
	writeDeadlineKey
)

// WithQueryTimeout overrides the read timeout stores apply to calls made
// with the returned context.
func WithQueryTimeout(ctx context.Context, d time.Duration) context.Context {
	return context.WithValue(ctx, readDeadlineKey, d)
}

// WithExecuteTimeout overrides the write timeout stores apply to calls made
// with the returned context.
func WithExecuteTimeout(ctx context.Context, d time.Duration) context.Context {
	return context.WithValue(ctx, writeDeadlineKey, d)
}

func withReadTimeout(ctx context.Context, fallback time.Duration) (context.Context, context.CancelFunc) {
	return withDeadline(ctx, readDeadlineKey, fallback)
}

func withWriteTimeout(ctx context.Context, fallback time.Duration) (context.Context, context.CancelFunc) {
	return withDeadline(ctx, writeDeadlineKey, fallback)
}

func withDeadline(ctx context.Context, key deadlineKey, fallback time.Duration) (context.Context, context.CancelFunc) {
	timeout := fallback
	if v, ok := ctx.Value(key).(time.Duration); ok && v > 0 {
		timeout = v
	}
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
