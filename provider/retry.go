package provider

import (
	"context"
	"errors"
	"strings"
	"time"
)

// RetryConfig holds configuration for retry behavior.
type RetryConfig struct {
	MaxRetries int           // Maximum number of retry attempts
	BaseDelay  time.Duration // Initial delay between retries
	MaxDelay   time.Duration // Maximum delay between retries
}

// DefaultRetryConfig returns sensible defaults for retry behavior.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
	}
}

// RetryableGenerator wraps a Generator with exponential backoff retry.
// The cache core never retries; wrapping the generator keeps retry policy
// on the collaborator side where it belongs.
type RetryableGenerator struct {
	generator Generator
	config    RetryConfig
}

// NewRetryableGenerator creates a generator with retry logic.
func NewRetryableGenerator(gen Generator, cfg RetryConfig) *RetryableGenerator {
	return &RetryableGenerator{
		generator: gen,
		config:    cfg,
	}
}

// Generate implements Generator with retry logic.
func (g *RetryableGenerator) Generate(ctx context.Context, req GenerateRequest) (map[string]string, error) {
	var lastErr error

	for attempt := 0; attempt <= g.config.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		result, err := g.generator.Generate(ctx, req)
		if err == nil {
			return result, nil
		}

		lastErr = err
		if !isRetryable(err) {
			return nil, err
		}

		// Don't sleep after the last attempt
		if attempt < g.config.MaxRetries {
			delay := g.config.BaseDelay * time.Duration(1<<attempt)
			if delay > g.config.MaxDelay {
				delay = g.config.MaxDelay
			}

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return nil, lastErr
}

// isRetryable checks if an error looks transient.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	msg := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"rate limit",
		"timeout",
		"connection refused",
		"temporary",
		"503",
		"502",
		"429",
	}
	for _, pattern := range retryablePatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// Verify RetryableGenerator implements Generator.
var _ Generator = (*RetryableGenerator)(nil)
