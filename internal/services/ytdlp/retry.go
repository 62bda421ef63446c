package ytdlp

import (
	"context"
	"math/rand/v2"
	"time"
)

// Backoff configures the delay between attempts.
type Backoff struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
	// Jitter is the fraction of each delay randomized in either direction.
	Jitter float64
}

// DefaultBackoff waits 2s, 4s, 8s... up to a minute with 20% jitter.
func DefaultBackoff() Backoff {
	return Backoff{Initial: 2 * time.Second, Max: time.Minute, Multiplier: 2, Jitter: 0.2}
}

func (b Backoff) delay(attempt int) time.Duration {
	d := float64(b.Initial)
	for i := 1; i < attempt; i++ {
		d *= b.Multiplier
		if time.Duration(d) >= b.Max {
			d = float64(b.Max)
			break
		}
	}
	if b.Jitter > 0 {
		d += (rand.Float64()*2 - 1) * b.Jitter * d
	}
	if d < 0 {
		return 0
	}
	if b.Max > 0 && time.Duration(d) > b.Max {
		return b.Max
	}
	return time.Duration(d)
}

// attempt runs fn up to maxAttempts times while it returns retryable errors.
// onRetry is told about each failure that will be retried.
func attempt(ctx context.Context, maxAttempts int, backoff Backoff, fn func(context.Context) error, onRetry func(n int, wait time.Duration, err error)) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	var err error
	for n := 1; n <= maxAttempts; n++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !IsRetryable(err) || n == maxAttempts {
			return err
		}
		wait := backoff.delay(n)
		if onRetry != nil {
			onRetry(n, wait, err)
		}
		if wait <= 0 {
			continue
		}
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
	return err
}
