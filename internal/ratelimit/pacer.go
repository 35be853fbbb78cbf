package ratelimit

import (
	"context"
	"time"
)

// Pacer throttles a sequence of outbound calls to an aggregate budget of
// maxCalls per interval. With burst 1 the call starts are spaced evenly:
// 30 calls per minute yields one start every two seconds, matching the AI
// provider's request-per-minute ceiling.
type Pacer struct {
	bucket   *Bucket
	interval time.Duration
	maxCalls int
}

// NewPacer creates a pacer with the given call budget.
func NewPacer(maxCalls int, interval time.Duration) *Pacer {
	refillRate := float64(maxCalls) / interval.Seconds()
	return &Pacer{
		bucket:   NewBucket(1, refillRate),
		interval: interval,
		maxCalls: maxCalls,
	}
}

// Wait blocks until the next call may start, or until the context is done.
func (p *Pacer) Wait(ctx context.Context) error {
	for {
		if p.bucket.Allow() {
			return nil
		}
		wait := p.bucket.NextToken()
		if wait <= 0 {
			continue
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Spacing returns the average gap between call starts.
func (p *Pacer) Spacing() time.Duration {
	return p.interval / time.Duration(p.maxCalls)
}

// EstimateDuration returns the projected wall-clock time to issue n calls.
func (p *Pacer) EstimateDuration(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * p.Spacing()
}
