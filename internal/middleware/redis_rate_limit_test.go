package middleware

import (
	"net/http"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/verity/backend/internal/cache"
)

func TestRedisRateLimitFallsBackWithoutRedis(t *testing.T) {
	router := newLimitedRouter(RedisRateLimitMiddleware(nil, RateLimitConfig{
		Name:    "test",
		Limit:   1,
		Window:  time.Minute,
		KeyFunc: IPKey,
	}))

	assert.Equal(t, http.StatusOK, get(router, "", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(router, "", "").Code)
}

func TestRedisRateLimitRejectsWhenRedisFails(t *testing.T) {
	// Nothing listens on port 1
	client := cache.Wrap(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	}))
	t.Cleanup(func() { client.Close() })

	router := newLimitedRouter(RedisRateLimitMiddleware(client, RateLimitConfig{
		Name:   "test",
		Limit:  5,
		Window: time.Minute,
	}))

	w := get(router, "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"SERVICE_UNAVAILABLE"`)
}
