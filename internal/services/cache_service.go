package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ridedeck/internal/models"
	"ridedeck/pkg/cache"
	"ridedeck/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const driversGeoKey = "drivers_geo"

// CacheService holds the short-lived state kept in Redis next to the
// database: online driver positions and rate-limit windows.
type CacheService interface {
	SetDriverLocation(ctx context.Context, driverID primitive.ObjectID, location *models.Coordinates) error
	RemoveDriverLocation(ctx context.Context, driverID primitive.ObjectID) error
	GetDriverLocation(ctx context.Context, driverID primitive.ObjectID) (*models.Coordinates, error)

	CheckRateLimit(ctx context.Context, key string, limit int64, window time.Duration) (*RateLimitResult, error)
}

// RedisClient is the part of the Redis cache the service needs.
type RedisClient interface {
	GeoAdd(ctx context.Context, key string, geoLocation *redis.GeoLocation) error
	GeoRemove(ctx context.Context, key string, members ...string) error
	GeoPosition(ctx context.Context, key, member string) (*redis.GeoPos, error)
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type RateLimitResult struct {
	Allowed    bool          `json:"allowed"`
	Count      int64         `json:"count"`
	Remaining  int64         `json:"remaining"`
	RetryAfter time.Duration `json:"retry_after"`
}

type cacheService struct {
	redisClient RedisClient
	logger      *logger.Logger
	keyPrefix   string
}

func NewCacheService(redisClient RedisClient, logger *logger.Logger, keyPrefix string) CacheService {
	return &cacheService{
		redisClient: redisClient,
		logger:      logger,
		keyPrefix:   keyPrefix,
	}
}

func (s *cacheService) SetDriverLocation(ctx context.Context, driverID primitive.ObjectID, location *models.Coordinates) error {
	err := s.redisClient.GeoAdd(ctx, s.buildKey(driversGeoKey), &redis.GeoLocation{
		Name:      driverID.Hex(),
		Longitude: location.Lng,
		Latitude:  location.Lat,
	})
	if err != nil {
		return fmt.Errorf("failed to store driver location: %w", err)
	}
	return nil
}

func (s *cacheService) RemoveDriverLocation(ctx context.Context, driverID primitive.ObjectID) error {
	if err := s.redisClient.GeoRemove(ctx, s.buildKey(driversGeoKey), driverID.Hex()); err != nil {
		return fmt.Errorf("failed to remove driver location: %w", err)
	}
	return nil
}

func (s *cacheService) GetDriverLocation(ctx context.Context, driverID primitive.ObjectID) (*models.Coordinates, error) {
	pos, err := s.redisClient.GeoPosition(ctx, s.buildKey(driversGeoKey), driverID.Hex())
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get driver location: %w", err)
	}
	return &models.Coordinates{Lat: pos.Latitude, Lng: pos.Longitude}, nil
}

func (s *cacheService) CheckRateLimit(ctx context.Context, key string, limit int64, window time.Duration) (*RateLimitResult, error) {
	count, ttl, err := s.redisClient.IncrementWindow(ctx, s.buildKey("rate_limit:"+key), window)
	if err != nil {
		return nil, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	result := &RateLimitResult{
		Allowed:   count <= limit,
		Count:     count,
		Remaining: remaining,
	}
	if !result.Allowed {
		result.RetryAfter = ttl
	}
	return result, nil
}

func (s *cacheService) buildKey(key string) string {
	if s.keyPrefix != "" {
		return fmt.Sprintf("%s:%s", s.keyPrefix, key)
	}
	return key
}

// noopCacheService is used when Redis is not configured: nothing is tracked
// and every request is within its rate limit.
type noopCacheService struct{}

func NewNoopCacheService() CacheService {
	return noopCacheService{}
}

func (noopCacheService) SetDriverLocation(context.Context, primitive.ObjectID, *models.Coordinates) error {
	return nil
}

func (noopCacheService) RemoveDriverLocation(context.Context, primitive.ObjectID) error {
	return nil
}

func (noopCacheService) GetDriverLocation(context.Context, primitive.ObjectID) (*models.Coordinates, error) {
	return nil, nil
}

func (noopCacheService) CheckRateLimit(_ context.Context, _ string, limit int64, _ time.Duration) (*RateLimitResult, error) {
	return &RateLimitResult{Allowed: true, Remaining: limit}, nil
}
