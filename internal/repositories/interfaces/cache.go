package interfaces

import (
	"context"
	"time"
)

// CacheService is the slice of the cache the repositories read through.
type CacheService interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
}
