package provider

import (
	"context"
	"sync"
	"time"
)

// RateLimiter controls the rate of generator calls using a token bucket.
type RateLimiter struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
}

// RateLimitConfig configures the rate limiter.
type RateLimitConfig struct {
	RequestsPerMinute int // Maximum requests per minute
	BurstSize         int // Maximum burst size (default: same as RPM)
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rpm := float64(cfg.RequestsPerMinute)
	if rpm <= 0 {
		rpm = 60 // Default: 60 RPM
	}

	burst := float64(cfg.BurstSize)
	if burst <= 0 {
		burst = rpm
	}

	return &RateLimiter{
		tokens:     burst, // Start with full bucket
		maxTokens:  burst,
		refillRate: rpm / 60.0,
		lastRefill: time.Now(),
	}
}

// Wait blocks until a token is available or context is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		if r.TryAcquire() {
			return nil
		}

		r.mu.Lock()
		waitTime := time.Duration(float64(time.Second) / r.refillRate)
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}
}

// TryAcquire attempts to take a token without blocking.
func (r *RateLimiter) TryAcquire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()

	if r.tokens >= 1 {
		r.tokens--
		return true
	}
	return false
}

// refill adds tokens based on elapsed time. Caller holds r.mu.
func (r *RateLimiter) refill() {
	now := time.Now()
	elapsed := now.Sub(r.lastRefill).Seconds()
	r.lastRefill = now

	r.tokens += elapsed * r.refillRate
	if r.tokens > r.maxTokens {
		r.tokens = r.maxTokens
	}
}

// RateLimitedGenerator wraps a Generator with a token-bucket limiter.
// One token covers one flush, however many texts it carries.
type RateLimitedGenerator struct {
	generator Generator
	limiter   *RateLimiter
}

// NewRateLimitedGenerator creates a generator gated by the limiter.
func NewRateLimitedGenerator(gen Generator, cfg RateLimitConfig) *RateLimitedGenerator {
	return &RateLimitedGenerator{
		generator: gen,
		limiter:   NewRateLimiter(cfg),
	}
}

// Generate implements Generator, waiting for a token first.
func (g *RateLimitedGenerator) Generate(ctx context.Context, req GenerateRequest) (map[string]string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return g.generator.Generate(ctx, req)
}

// Verify RateLimitedGenerator implements Generator.
var _ Generator = (*RateLimitedGenerator)(nil)
