package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigAddr(t *testing.T) {
	cfg := &Config{Host: "cache.internal", Port: "6380"}
	assert.Equal(t, "cache.internal:6380", cfg.Addr())

	v6 := &Config{Host: "::1", Port: "6379"}
	assert.Equal(t, "[::1]:6379", v6.Addr())
}

func TestNewRedisCache_RequiresHost(t *testing.T) {
	cache, err := NewRedisCache(&Config{Port: "6379"})
	assert.Error(t, err)
	assert.Nil(t, cache)

	cache, err = NewRedisCache(nil)
	assert.Error(t, err)
	assert.Nil(t, cache)
}

func TestNewRedisCache_UnreachableServer(t *testing.T) {
	cache, err := NewRedisCache(&Config{Host: "127.0.0.1", Port: "1"})
	assert.Error(t, err)
	assert.Nil(t, cache)
}
