package network

import (
	"context"
	"time"
)

const retry = 1 * time.Second

// Retry is a doubling delay between reconnection attempts.
type Retry struct {
	t   time.Duration
	max time.Duration
}

func NewRetry(max time.Duration) Retry {
	if max < retry {
		max = retry
	}
	return Retry{t: retry, max: max}
}

// Fail waits for the current delay and then doubles it.
// Returns the context error if it's done before.
func (r *Retry) Fail(ctx context.Context) error {
	timer := time.NewTimer(r.t)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}
	r.t = min(r.t*2, r.max)
	return nil
}

func (r *Retry) Time() time.Duration { return r.t }
