package utils

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// Throttle spaces out sequential requests by a random interval drawn from
// [min, max]. The first call to Wait returns immediately.
type Throttle struct {
	min, max time.Duration

	mu          sync.Mutex
	rng         *rand.Rand
	lastRequest time.Time
	sleep       func(context.Context, time.Duration) error
}

// NewThrottle creates a Throttle. If max < min the interval is fixed at min.
func NewThrottle(minMs, maxMs int) *Throttle {
	if maxMs < minMs {
		maxMs = minMs
	}
	now := uint64(time.Now().UnixNano())
	return &Throttle{
		min:   time.Duration(minMs) * time.Millisecond,
		max:   time.Duration(maxMs) * time.Millisecond,
		rng:   rand.New(rand.NewPCG(now, now>>1)),
		sleep: sleepCtx,
	}
}

// Next returns the delay the next Wait will enforce between two requests.
func (t *Throttle) Next() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.next()
}

func (t *Throttle) next() time.Duration {
	span := t.max - t.min
	if span <= 0 {
		return t.min
	}
	return t.min + time.Duration(t.rng.Int64N(int64(span)+1))
}

// Wait blocks until the randomized interval since the previous request has
// elapsed, or the context is cancelled.
func (t *Throttle) Wait(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.lastRequest.IsZero() {
		interval := t.next()
		if elapsed := time.Since(t.lastRequest); elapsed < interval {
			if err := t.sleep(ctx, interval-elapsed); err != nil {
				return err
			}
		}
	}
	t.lastRequest = time.Now()
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
