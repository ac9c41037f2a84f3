package middleware

import (
	"strconv"
	"time"

	"ridedeck/internal/services"
	"ridedeck/internal/utils"
	"ridedeck/pkg/logger"
	"ridedeck/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// RateLimit allows limit requests per window for each client IP on a route.
// When the backing store fails the request is let through.
func RateLimit(cache services.CacheService, limit int, window time.Duration, m *metrics.Metrics, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 {
			c.Next()
			return
		}

		route := c.FullPath()
		key := route + ":" + c.ClientIP()

		result, err := cache.CheckRateLimit(c.Request.Context(), key, int64(limit), window)
		if err != nil {
			log.WithError(err).WithField("key", key).Warn("Rate limiter unavailable")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))

		if !result.Allowed {
			retryAfter := int(result.RetryAfter.Round(time.Second).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			m.RecordRateLimited(route)
			log.LogSecurityEvent("rate_limited", "low", map[string]interface{}{
				"path":      route,
				"client_ip": c.ClientIP(),
			})
			utils.TooManyRequestsResponse(c)
			c.Abort()
			return
		}

		c.Next()
	}
}
