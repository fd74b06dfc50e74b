package ratelimit

import (
	"context"
	"sync"
	"time"

	"fx-rates-service/internal/infrastructure/metrics"
)

// TokenBucket implements a simple token bucket rate limiter.
// It guards incoming HTTP requests (Allow) and throttles outbound upstream calls (Wait).
type TokenBucket struct {
	mu         sync.Mutex
	capacity   int       // Maximum number of tokens
	tokens     int       // Current number of tokens
	refillRate int       // Tokens per second
	lastRefill time.Time // Last refill time
	lastUsed   time.Time
	now        func() time.Time
}

// NewTokenBucket creates a new token bucket rate limiter
// capacity: maximum number of tokens in the bucket
// refillRate: number of tokens added per second
func NewTokenBucket(capacity, refillRate int) *TokenBucket {
	return newTokenBucketWithClock(capacity, refillRate, time.Now)
}

func newTokenBucketWithClock(capacity, refillRate int, now func() time.Time) *TokenBucket {
	if capacity <= 0 {
		capacity = 1
	}
	if refillRate <= 0 {
		refillRate = 1
	}

	start := now()
	return &TokenBucket{
		capacity:   capacity,
		tokens:     capacity, // Start with full bucket
		refillRate: refillRate,
		lastRefill: start,
		lastUsed:   start,
		now:        now,
	}
}

// Allow checks if a request is allowed and consumes a token if available
// Returns true if request is allowed, false if rate limited
func (tb *TokenBucket) Allow() bool {
	return tb.AllowN(1)
}

// AllowN checks if N tokens are available and consumes them if so
func (tb *TokenBucket) AllowN(n int) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	tb.lastUsed = tb.now()

	if tb.tokens >= n {
		tb.tokens -= n
		return true
	}

	return false
}

// Wait blocks until a token is available or ctx is done
func (tb *TokenBucket) Wait(ctx context.Context) error {
	start := time.Now()
	defer func() {
		metrics.RecordThrottleWait(time.Since(start).Seconds())
	}()

	for {
		tb.mu.Lock()
		tb.refill()
		tb.lastUsed = tb.now()
		if tb.tokens > 0 {
			tb.tokens--
			tb.mu.Unlock()
			return nil
		}
		wait := tb.untilNextToken()
		tb.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// untilNextToken must be called with lock held
func (tb *TokenBucket) untilNextToken() time.Duration {
	interval := time.Second / time.Duration(tb.refillRate)
	wait := interval - tb.now().Sub(tb.lastRefill)
	if wait < time.Millisecond {
		wait = time.Millisecond
	}
	return wait
}

// Tokens returns the current number of available tokens
func (tb *TokenBucket) Tokens() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	return tb.tokens
}

// refill adds tokens based on elapsed time since last refill
// Must be called with lock held
func (tb *TokenBucket) refill() {
	now := tb.now()
	elapsed := now.Sub(tb.lastRefill)

	tokensToAdd := int(elapsed.Seconds() * float64(tb.refillRate))
	if tokensToAdd <= 0 {
		return
	}

	tb.tokens += tokensToAdd
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
		tb.lastRefill = now
		return
	}

	// Conservar la fracción de tiempo no convertida en tokens
	tb.lastRefill = tb.lastRefill.Add(time.Duration(tokensToAdd) * time.Second / time.Duration(tb.refillRate))
}

// RateLimiterCollection manages multiple token buckets for different clients
type RateLimiterCollection struct {
	mu         sync.RWMutex
	buckets    map[string]*TokenBucket
	capacity   int
	refillRate int
	// Cleanup old buckets to prevent memory leak
	lastCleanup     time.Time
	cleanupInterval time.Duration
	idleTimeout     time.Duration
}

// NewRateLimiterCollection creates a new collection of rate limiters
func NewRateLimiterCollection(capacity, refillRate int) *RateLimiterCollection {
	return &RateLimiterCollection{
		buckets:         make(map[string]*TokenBucket),
		capacity:        capacity,
		refillRate:      refillRate,
		lastCleanup:     time.Now(),
		cleanupInterval: 10 * time.Minute,
		idleTimeout:     30 * time.Minute,
	}
}

// Allow checks if a request from the given client is allowed
func (rlc *RateLimiterCollection) Allow(clientID string) bool {
	return rlc.getBucket(clientID).Allow()
}

// Tokens returns available tokens for the given client
func (rlc *RateLimiterCollection) Tokens(clientID string) int {
	return rlc.getBucket(clientID).Tokens()
}

// getBucket gets or creates a token bucket for the client
func (rlc *RateLimiterCollection) getBucket(clientID string) *TokenBucket {
	rlc.mu.RLock()
	bucket, exists := rlc.buckets[clientID]
	rlc.mu.RUnlock()

	if exists {
		return bucket
	}

	rlc.mu.Lock()
	defer rlc.mu.Unlock()

	// Double-check: otra goroutine pudo haberlo creado
	if bucket, exists := rlc.buckets[clientID]; exists {
		return bucket
	}

	bucket = NewTokenBucket(rlc.capacity, rlc.refillRate)
	rlc.buckets[clientID] = bucket

	rlc.maybeCleanup()

	return bucket
}

// maybeCleanup removes idle buckets
// Must be called with write lock held
func (rlc *RateLimiterCollection) maybeCleanup() {
	now := time.Now()
	if now.Sub(rlc.lastCleanup) < rlc.cleanupInterval {
		return
	}

	cutoff := now.Add(-rlc.idleTimeout)
	for clientID, bucket := range rlc.buckets {
		bucket.mu.Lock()
		idle := bucket.lastUsed.Before(cutoff)
		bucket.mu.Unlock()

		if idle {
			delete(rlc.buckets, clientID)
		}
	}

	rlc.lastCleanup = now
}

// Stats returns statistics about the rate limiter collection
func (rlc *RateLimiterCollection) Stats() map[string]interface{} {
	rlc.mu.RLock()
	defer rlc.mu.RUnlock()

	return map[string]interface{}{
		"total_clients": len(rlc.buckets),
		"capacity":      rlc.capacity,
		"refill_rate":   rlc.refillRate,
	}
}
