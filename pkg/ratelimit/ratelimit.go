package ratelimit

import (
	"context"
	"math/rand"
	"time"
)

// Throttle enforces a fixed pause between successive operations, with
// optional jitter. A zero interval never blocks, which lets tests drive
// the calling loop at full speed.
type Throttle struct {
	interval time.Duration
	jitter   float64 // 0.0 to 1.0
}

// New creates a throttle that pauses for the given interval on each Pause
// call. Jitter is clamped to [0, 1] and randomizes each pause by up to
// +/- jitter*interval.
func New(interval time.Duration, jitter float64) *Throttle {
	if jitter < 0 {
		jitter = 0
	} else if jitter > 1 {
		jitter = 1
	}
	return &Throttle{interval: interval, jitter: jitter}
}

// Pause blocks for one throttle interval or until the context is canceled,
// whichever comes first.
func (t *Throttle) Pause(ctx context.Context) error {
	if t == nil || t.interval <= 0 {
		return nil
	}

	d := t.interval
	if t.jitter > 0 {
		// Random factor in [-1, 1] scaled by the jitter fraction.
		factor := (rand.Float64() * 2) - 1.0
		d += time.Duration(float64(t.interval) * t.jitter * factor)
		if d < 0 {
			d = 0
		}
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Interval reports the configured base pause duration.
func (t *Throttle) Interval() time.Duration {
	if t == nil {
		return 0
	}
	return t.interval
}
