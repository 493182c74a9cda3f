package ratelimit

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/time/rate"
)

const redisCallTimeout = 500 * time.Millisecond

type Logger interface {
	Error(msg string, args ...interface{})
}

func generateUniqueID() string {
	bytes := make([]byte, 8)

	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("%x", time.Now().UnixNano())
	}

	return hex.EncodeToString(bytes)
}

// RateLimiter defines the strategy interface for rate limiting
type RateLimiter interface {
	GetLimitDetails() (int, time.Duration)
	IsLimited(key string) (bool, error)
	Close() error
}

// InMemoryRateLimiter implements token bucket rate limiting for single instances
type InMemoryRateLimiter struct {
	requests int
	window   time.Duration

	mu       sync.Mutex
	limiters map[string]*keyedLimiter
	ops      uint64
}

type keyedLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewInMemoryRateLimiter(requests int, window time.Duration) *InMemoryRateLimiter {
	return &InMemoryRateLimiter{
		requests: requests,
		window:   window,
		limiters: make(map[string]*keyedLimiter),
	}
}

func (r *InMemoryRateLimiter) GetLimitDetails() (int, time.Duration) {
	return r.requests, r.window
}

func (r *InMemoryRateLimiter) IsLimited(key string) (bool, error) {
	if key == "" {
		key = "__empty__"
	}

	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	k, ok := r.limiters[key]
	if !ok {
		rps := float64(r.requests) / r.window.Seconds()
		k = &keyedLimiter{
			limiter:  rate.NewLimiter(rate.Limit(rps), r.requests),
			lastSeen: now,
		}
		r.limiters[key] = k
	} else {
		k.lastSeen = now
	}

	// Opportunistic cleanup; only keys idle for two windows are dropped.
	r.ops++
	if r.ops%1024 == 0 {
		cutoff := now.Add(-2 * r.window)
		for kKey, kVal := range r.limiters {
			if kVal.lastSeen.Before(cutoff) {
				delete(r.limiters, kKey)
			}
		}
	}

	return !k.limiter.Allow(), nil
}

func (r *InMemoryRateLimiter) Close() error {
	return nil
}

// slidingWindowScript trims the window, counts it and records the new hit atomically.
var slidingWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local expire = tonumber(ARGV[4])
	local memberId = ARGV[5]

	redis.call('ZREMRANGEBYSCORE', key, 0, now - window)

	local count = redis.call('ZCARD', key)
	if count >= limit then
		return 1
	end

	redis.call('ZADD', key, now, memberId)
	redis.call('EXPIRE', key, expire)

	return 0
`)

// RedisRateLimiter implements sliding window rate limiting for distributed systems
type RedisRateLimiter struct {
	client    *redis.Client
	requests  int
	window    time.Duration
	keyPrefix string
	logger    Logger
}

func NewRedisRateLimiter(client *redis.Client, requests int, window time.Duration, logger Logger) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:    client,
		requests:  requests,
		window:    window,
		keyPrefix: "ratelimit:",
		logger:    logger,
	}
}

func (r *RedisRateLimiter) GetLimitDetails() (int, time.Duration) {
	return r.requests, r.window
}

func (r *RedisRateLimiter) IsLimited(key string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisCallTimeout)
	defer cancel()

	fullKey := key
	if r.keyPrefix != "" && !strings.HasPrefix(key, r.keyPrefix) {
		fullKey = r.keyPrefix + key
	}

	windowSeconds := int64(r.window.Seconds())
	if windowSeconds < 1 {
		windowSeconds = 1
	}

	result, err := slidingWindowScript.Run(
		ctx,
		r.client,
		[]string{fullKey},
		time.Now().Unix(),
		windowSeconds,
		r.requests,
		windowSeconds*2,
		generateUniqueID(),
	).Int64()
	if err != nil {
		if r.logger != nil {
			r.logger.Error("Redis rate limit script execution failed", "key", fullKey, "error", err)
		}
		// Limiting is a security control; surface the failure instead of allowing silently.
		return false, fmt.Errorf("rate limiter Redis error: %w", err)
	}

	return result == 1, nil
}

// The Redis client is owned by the ApplicationConfig and closed there
func (r *RedisRateLimiter) Close() error {
	return nil
}

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Redis    *redis.Client // Optional, if nil uses in-memory
	Logger   Logger        // Optional logger for Redis operations
}

// NewRateLimiter creates a rate limiter based on configuration
func NewRateLimiter(config *RateLimitConfig) RateLimiter {
	if config.Redis != nil {
		return NewRedisRateLimiter(config.Redis, config.Requests, config.Window, config.Logger)
	}
	return NewInMemoryRateLimiter(config.Requests, config.Window)
}
