package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"
)

// Backoff retries an operation with exponentially growing delays. The zero
// value makes a single attempt.
type Backoff struct {
	// Retries is the number of attempts after the first.
	Retries int
	Base    time.Duration
	Max     time.Duration
	Factor  float64
	// Jitter is the fraction of each delay added at random.
	Jitter float64
}

// DefaultBackoff is used for Surreal session recovery.
func DefaultBackoff() Backoff {
	return Backoff{Retries: 5, Base: 100 * time.Millisecond, Max: 30 * time.Second, Factor: 2, Jitter: 0.25}
}

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. Do returns the wrapped error
// immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// Do calls fn until it succeeds, returns a Permanent error, the retry budget
// is spent or ctx ends.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}

		if err = fn(); err == nil {
			return nil
		}
		var perm permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if attempt >= b.Retries {
			break
		}

		wait := b.delay(attempt)
		slog.DebugContext(ctx, "Attempt failed, backing off",
			"attempt", attempt+1, "of", b.Retries+1, "wait", wait, "error", err)

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return fmt.Errorf("gave up after %d attempts: %w", b.Retries+1, err)
}

func (b Backoff) delay(attempt int) time.Duration {
	factor := b.Factor
	if factor < 1 {
		factor = 1
	}
	d := float64(b.Base) * math.Pow(factor, float64(attempt))
	if b.Max > 0 {
		d = math.Min(d, float64(b.Max))
	}
	if b.Jitter > 0 {
		d += rand.Float64() * d * b.Jitter
	}
	return time.Duration(d)
}
