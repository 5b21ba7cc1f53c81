package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/verity/backend/internal/config"
	apperrors "github.com/verity/backend/internal/errors"
	"github.com/verity/backend/internal/logger"
	"github.com/verity/backend/internal/metrics"
	"github.com/verity/backend/internal/util"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// Name labels the limiter in metrics and Redis keys
	Name string
	// Requests per window
	Limit int
	// Window duration
	Window time.Duration
	// KeyFunc picks the bucket a request counts against
	KeyFunc func(c *gin.Context) string
}

// DefaultRateLimitConfig returns sensible defaults
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Name:    "api",
		Limit:   100,
		Window:  time.Minute,
		KeyFunc: UserOrIPKey,
	}
}

// AuthRateLimitConfig limits the unauthenticated identity endpoints per client IP
func AuthRateLimitConfig(s config.RateLimitConfig) RateLimitConfig {
	return RateLimitConfig{
		Name:    "auth",
		Limit:   s.AuthRequests,
		Window:  s.AuthWindow,
		KeyFunc: IPKey,
	}
}

// APIRateLimitConfig limits the rest of the API per user, or per IP for anonymous callers
func APIRateLimitConfig(s config.RateLimitConfig) RateLimitConfig {
	return RateLimitConfig{
		Name:    "api",
		Limit:   s.APIRequests,
		Window:  s.APIWindow,
		KeyFunc: UserOrIPKey,
	}
}

// UploadRateLimitConfig returns limits for post creation, which may carry media
func UploadRateLimitConfig(s config.RateLimitConfig) RateLimitConfig {
	return RateLimitConfig{
		Name:    "upload",
		Limit:   s.UploadRequests,
		Window:  s.UploadWindow,
		KeyFunc: UserOrIPKey,
	}
}

// IPKey buckets requests by client IP
func IPKey(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}

// UserOrIPKey buckets authenticated requests by user and the rest by client IP
func UserOrIPKey(c *gin.Context) string {
	if userID := util.OptionalUserID(c); userID != "" {
		return "user:" + userID
	}
	return IPKey(c)
}

func (cfg RateLimitConfig) withDefaults() RateLimitConfig {
	def := DefaultRateLimitConfig()
	if cfg.Name == "" {
		cfg.Name = def.Name
	}
	if cfg.Limit <= 0 {
		cfg.Limit = def.Limit
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = def.KeyFunc
	}
	return cfg
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per key. A bucket holds Limit tokens and
// refills at Limit per Window.
type RateLimiter struct {
	config    RateLimitConfig
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	lastSweep time.Time
	now       func() time.Time
}

func newRateLimiter(config RateLimitConfig) *RateLimiter {
	config = config.withDefaults()
	return &RateLimiter{
		config:  config,
		clients: make(map[string]*clientLimiter),
		now:     time.Now,
	}
}

// NewRateLimiter creates a new in-process rate limiting middleware
func NewRateLimiter(config RateLimitConfig) gin.HandlerFunc {
	return newRateLimiter(config).Handler()
}

// Handler returns the middleware
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, retryAfter := rl.Allow(rl.config.KeyFunc(c))
		if !allowed {
			rejectRateLimited(c, rl.config, retryAfter)
			return
		}
		c.Next()
	}
}

// Allow takes one token from key's bucket. When the bucket is empty it
// reports how long until the next token.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.sweep(now)

	client, ok := rl.clients[key]
	if !ok {
		every := rl.config.Window / time.Duration(rl.config.Limit)
		client = &clientLimiter{limiter: rate.NewLimiter(rate.Every(every), rl.config.Limit)}
		rl.clients[key] = client
	}
	client.lastSeen = now

	if client.limiter.AllowN(now, 1) {
		return true, 0
	}

	reservation := client.limiter.ReserveN(now, 1)
	delay := reservation.DelayFrom(now)
	reservation.CancelAt(now)
	return false, delay
}

// sweep drops buckets idle for a full window; such a bucket is full again and
// equivalent to a fresh one.
func (rl *RateLimiter) sweep(now time.Time) {
	if rl.lastSweep.IsZero() {
		rl.lastSweep = now
	}
	if now.Sub(rl.lastSweep) < rl.config.Window {
		return
	}
	for key, client := range rl.clients {
		if now.Sub(client.lastSeen) >= rl.config.Window {
			delete(rl.clients, key)
		}
	}
	rl.lastSweep = now
}

func rejectRateLimited(c *gin.Context, config RateLimitConfig, retryAfter time.Duration) {
	seconds := int(math.Ceil(retryAfter.Seconds()))
	if seconds < 1 {
		seconds = 1
	}

	metrics.RecordRateLimitExceeded(config.Name, c.FullPath())
	logger.Log.Warn("Rate limit exceeded",
		zap.String("limiter", config.Name),
		logger.WithIP(c.ClientIP()),
		zap.String("path", c.FullPath()),
	)

	c.Header("Retry-After", strconv.Itoa(seconds))
	c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
	c.Header("X-RateLimit-Remaining", "0")
	util.RespondWithAPIError(c, apperrors.RateLimited("").WithDetails("retry after "+strconv.Itoa(seconds)+"s"))
	c.Abort()
}
