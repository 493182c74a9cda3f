package retry

import (
	"context"
	"errors"
	"math"
	"net"
	"strings"
	"time"
)

type RetryPolicy interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
}

type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Multiplier  float64
	// ShouldRetry overrides the default transient-error check.
	ShouldRetry func(error) bool
}

// DefaultConfig returns conservative defaults for backoff retries.
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts: 3,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    30 * time.Second,
		Multiplier:  2.0,
	}
}

// ExponentialBackoff retries with exponential delay between attempts.
type ExponentialBackoff struct {
	config *Config
}

// NewExponentialBackoff applies defaults when config is nil.
func NewExponentialBackoff(config *Config) *ExponentialBackoff {
	if config == nil {
		config = DefaultConfig()
	}
	return &ExponentialBackoff{config: config}
}

func (eb *ExponentialBackoff) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return run(ctx, eb.config, eb.calculateDelay, fn)
}

func (eb *ExponentialBackoff) calculateDelay(attempt int) time.Duration {
	delay := float64(eb.config.BaseDelay) * math.Pow(eb.config.Multiplier, float64(attempt-1))
	if delay > float64(eb.config.MaxDelay) {
		delay = float64(eb.config.MaxDelay)
	}

	return time.Duration(delay)
}

// FixedDelay retries with a constant delay between attempts.
type FixedDelay struct {
	config *Config
}

// NewFixedDelay applies defaults when config is nil.
func NewFixedDelay(config *Config) *FixedDelay {
	if config == nil {
		config = DefaultConfig()
	}
	return &FixedDelay{config: config}
}

func (fd *FixedDelay) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return run(ctx, fd.config, func(int) time.Duration { return fd.config.BaseDelay }, fn)
}

func run(ctx context.Context, cfg *Config, delayFor func(attempt int) time.Duration, fn func(ctx context.Context) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	shouldRetry := cfg.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = isRetryable
	}

	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}

		lastErr = err

		if attempt == cfg.MaxAttempts {
			break
		}

		if !shouldRetry(err) {
			return err
		}

		timer := time.NewTimer(delayFor(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return &MaxRetriesExceededError{
		LastError:   lastErr,
		MaxAttempts: cfg.MaxAttempts,
	}
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	errMsg := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"connection refused",
		"connection reset",
		"timeout",
		"temporary failure",
		"service unavailable",
		"too many requests",
		"the database system is starting up",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}

	return false
}

// MaxRetriesExceededError indicates that all retry attempts were exhausted.
type MaxRetriesExceededError struct {
	LastError   error
	MaxAttempts int
}

func (e *MaxRetriesExceededError) Error() string {
	return "max retries exceeded"
}

func (e *MaxRetriesExceededError) Unwrap() error {
	return e.LastError
}

// IsMaxRetriesExceeded reports whether err is a MaxRetriesExceededError.
func IsMaxRetriesExceeded(err error) bool {
	var maxRetriesErr *MaxRetriesExceededError
	return errors.As(err, &maxRetriesErr)
}
