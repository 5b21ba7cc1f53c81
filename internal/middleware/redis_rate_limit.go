package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/verity/backend/internal/cache"
	apperrors "github.com/verity/backend/internal/errors"
	"github.com/verity/backend/internal/logger"
	"github.com/verity/backend/internal/util"
	"go.uber.org/zap"
)

const redisRateLimitTimeout = 2 * time.Second

// RedisRateLimitMiddleware creates a distributed fixed-window rate limiter using Redis
// This works across multiple instances. Without a Redis client it falls back to
// the in-process limiter.
func RedisRateLimitMiddleware(client *cache.RedisClient, config RateLimitConfig) gin.HandlerFunc {
	config = config.withDefaults()
	if client == nil {
		logger.Log.Info("Redis not configured, using in-process rate limiter",
			zap.String("limiter", config.Name),
		)
		return NewRateLimiter(config)
	}

	return func(c *gin.Context) {
		key := "rate_limit:" + config.Name + ":" + config.KeyFunc(c)
		ctx, cancel := context.WithTimeout(c.Request.Context(), redisRateLimitTimeout)
		defer cancel()

		count, remaining, err := client.IncrWindow(ctx, key, config.Window)
		if err != nil {
			// Fail closed
			logger.Log.Error("Rate limit check failed, rejecting request",
				zap.String("limiter", config.Name),
				zap.String("key", key),
				zap.Error(err),
			)
			util.RespondWithAPIError(c, apperrors.ServiceUnavailable("rate limiter"))
			c.Abort()
			return
		}

		if count > int64(config.Limit) {
			rejectRateLimited(c, config, remaining)
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(int64(config.Limit)-count, 10))
		c.Next()
	}
}
