package cache

import (
	"context"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"
)

// NewTestRedisCache connects to REDIS_TEST_ADDR (default localhost:6379) on
// DB 15, flushes it, and skips the test when no server answers.
func NewTestRedisCache(t *testing.T) *RedisCache {
	t.Helper()

	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	host, portStr, _ := strings.Cut(addr, ":")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		port = 6379
	}

	c, err := NewRedisCache(context.Background(), &RedisConfig{
		Host:        host,
		Port:        port,
		DB:          15,
		DialTimeout: time.Second,
	})
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	if err := c.client.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("failed to flush test redis: %v", err)
	}
	t.Cleanup(func() {
		_ = c.client.FlushDB(context.Background()).Err()
		_ = c.Close()
	})

	return c
}
