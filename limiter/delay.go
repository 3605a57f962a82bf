package limiter

import (
	"context"
	"math/rand"
	"time"

	"golang.org/x/time/rate"
)

// RandomDelay pauses for a uniformly random duration in [Min, Max] on every
// Wait. It is the politeness pause between two page fetches.
type RandomDelay struct {
	Min time.Duration
	Max time.Duration
}

func NewRandomDelay(min, max time.Duration) *RandomDelay {
	if min < 0 {
		min = 0
	}
	if max < min {
		max = min
	}
	return &RandomDelay{Min: min, Max: max}
}

// Next returns the duration the next Wait will sleep for.
func (d *RandomDelay) Next() time.Duration {
	span := int64(d.Max - d.Min)
	if span <= 0 {
		return d.Min
	}
	return d.Min + time.Duration(rand.Int63n(span+1))
}

func (d *RandomDelay) Wait(ctx context.Context) error {
	wait := d.Next()
	if wait <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (d *RandomDelay) Limit() rate.Limit {
	mean := (d.Min + d.Max) / 2
	if mean <= 0 {
		return rate.Inf
	}
	return rate.Every(mean)
}
