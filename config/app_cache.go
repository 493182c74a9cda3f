package config

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/akeren/multiverse-waitlist/internal/log"
	pkgredis "github.com/akeren/multiverse-waitlist/pkg/redis"
	"github.com/akeren/multiverse-waitlist/pkg/utils"
)

// Cache is the optional shared store behind rate limiting and token revocation.
type Cache interface {
	// Get returns ("", nil) when a key is not found.
	Get(ctx context.Context, key string) (string, error)
	// Set uses ttl=0 for no expiry.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

var ErrCacheNotConfigured = errors.New("cache host is not configured")

type CacheConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func NewCacheConfig() *CacheConfig {
	return &CacheConfig{
		Host:     utils.GetEnvTrimmed("REDIS_HOST"),
		Port:     utils.GetEnvOrDefault("REDIS_PORT", "6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       utils.GetEnvNonNegativeInt("REDIS_DB", 0),
	}
}

func (cc *CacheConfig) IsConfigured() bool {
	return cc.Host != ""
}

func (cc *CacheConfig) NewCache(logger *log.Logger) (Cache, error) {
	if !cc.IsConfigured() {
		return nil, ErrCacheNotConfigured
	}

	cache, err := pkgredis.NewRedisCache(&pkgredis.Config{
		Host:     cc.Host,
		Port:     cc.Port,
		Password: cc.Password,
		DB:       cc.DB,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Cache (Redis) connected successfully", "addr", cc.Host+":"+cc.Port, "db", cc.DB)
	return cache, nil
}

// NewCacheOrNil returns nil when Redis is absent or unreachable; callers fall back to memory.
func (cc *CacheConfig) NewCacheOrNil(logger *log.Logger) Cache {
	if !cc.IsConfigured() {
		logger.Info("Cache (Redis) is not configured; proceeding without external cache")
		return nil
	}

	cache, err := cc.NewCache(logger)
	if err != nil {
		logger.Error("Failed to create Cache (Redis); falling back to in-memory", "error", err)
		return nil
	}

	return cache
}

func CloseCache(cache Cache, logger *log.Logger) error {
	if cache == nil {
		return nil
	}

	if err := cache.Close(); err != nil {
		logger.Error("Failed to close cache", "error", err)
		return err
	}

	logger.Info("Cache connection closed")
	return nil
}
