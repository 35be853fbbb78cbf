// Package ratelimit provides token bucket rate limiting for inbound HTTP
// traffic and for pacing outbound calls to the AI provider.
package ratelimit

import (
	"sync"
	"time"
)

// Bucket is a token bucket. It allows a certain number of requests (tokens)
// per time window, with tokens refilling at a steady rate.
type Bucket struct {
	capacity   int       // Maximum tokens (burst capacity)
	refillRate float64   // Tokens per second
	tokens     float64   // Current tokens available
	lastRefill time.Time // Last time tokens were refilled
	mu         sync.Mutex
}

// NewBucket creates a bucket with the specified capacity and refill rate.
func NewBucket(capacity int, refillRate float64) *Bucket {
	return &Bucket{
		capacity:   capacity,
		refillRate: refillRate,
		tokens:     float64(capacity), // Start with full bucket
		lastRefill: time.Now(),
	}
}

// Allow checks if a token is available and consumes it if so.
func (b *Bucket) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill()

	if b.tokens >= 1.0 {
		b.tokens -= 1.0
		return true
	}
	return false
}

// NextToken returns how long until a token becomes available. Zero means a
// token is available now.
func (b *Bucket) NextToken() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill()

	if b.tokens >= 1.0 {
		return 0
	}
	needed := 1.0 - b.tokens
	return time.Duration(needed / b.refillRate * float64(time.Second))
}

// Status returns the current token count and when the bucket will be full,
// without consuming a token.
func (b *Bucket) Status() (remaining int, resetTime time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill()

	remaining = int(b.tokens)
	now := b.lastRefill
	if b.tokens < float64(b.capacity) {
		tokensNeeded := float64(b.capacity) - b.tokens
		secondsUntilFull := tokensNeeded / b.refillRate
		resetTime = now.Add(time.Duration(secondsUntilFull * float64(time.Second)))
	} else {
		resetTime = now
	}
	return remaining, resetTime
}

// refill adds tokens based on elapsed time. Caller must hold the mutex.
func (b *Bucket) refill() {
	now := time.Now()
	elapsed := now.Sub(b.lastRefill)
	tokensToAdd := elapsed.Seconds() * b.refillRate

	b.tokens = min(float64(b.capacity), b.tokens+tokensToAdd)
	b.lastRefill = now
}
