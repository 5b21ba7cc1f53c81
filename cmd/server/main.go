package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/verity/backend/internal/auth"
	"github.com/verity/backend/internal/cache"
	"github.com/verity/backend/internal/config"
	"github.com/verity/backend/internal/container"
	"github.com/verity/backend/internal/database"
	"github.com/verity/backend/internal/email"
	"github.com/verity/backend/internal/feed"
	"github.com/verity/backend/internal/handlers"
	"github.com/verity/backend/internal/logger"
	"github.com/verity/backend/internal/metrics"
	"github.com/verity/backend/internal/middleware"
	"github.com/verity/backend/internal/repository"
	"github.com/verity/backend/internal/social"
	"github.com/verity/backend/internal/storage"
	"github.com/verity/backend/internal/telemetry"
	"github.com/verity/backend/internal/validation"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The logger is not configured yet
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Initialize(logger.Options{
		Level: cfg.Log.Level,
		File:  cfg.Log.File,
		JSON:  cfg.Log.JSON,
	}); err != nil {
		os.Stderr.WriteString("failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Close()

	logger.Log.Info("=== Verity server starting ===",
		zap.String("environment", cfg.Environment),
		zap.String("port", cfg.Port),
	)

	ctx := context.Background()

	tracerProvider, err := telemetry.InitTracer(ctx, cfg.Telemetry, cfg.Environment)
	if err != nil {
		logger.Log.Warn("Tracing disabled", zap.Error(err))
	}

	if err := database.Initialize(cfg.Database); err != nil {
		logger.FatalWithFields("Failed to initialize database", err)
	}

	if cfg.Telemetry.Enabled {
		if err := database.DB.Use(telemetry.GORMTracingPlugin()); err != nil {
			logger.Log.Warn("Failed to register GORM tracing plugin", zap.Error(err))
		}
	}

	if err := database.Migrate(database.DB); err != nil {
		logger.FatalWithFields("Failed to run migrations", err)
	}

	metrics.Initialize()

	deps := container.New().
		WithLogger(logger.Log).
		WithDB(database.DB).
		OnCleanup("database", func(context.Context) error { return database.Close() }).
		OnCleanup("tracer", func(ctx context.Context) error { return telemetry.Shutdown(ctx, tracerProvider) })

	// Redis only backs rate limiting; without it each instance limits on its own
	if cfg.Redis.Enabled() {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Log.Warn("Redis unavailable, falling back to in-process rate limiting", zap.Error(err))
		} else {
			deps.WithCache(redisClient).
				OnCleanup("redis", func(context.Context) error { return redisClient.Close() })
		}
	}

	probes := validation.NewServiceValidator(cfg.RequiredServices).
		Register("database", func(context.Context) error { return database.Health() })
	if client := deps.Cache(); client != nil {
		probes.Register("redis", client.Ping)
	}

	deps.WithMailer(newMailer(cfg))
	if uploader := newS3Uploader(ctx, cfg); uploader != nil {
		deps.WithMediaStore(uploader)
		probes.Register("s3", uploader.CheckBucketAccess)
	}

	if err := probes.ValidateServices(ctx); err != nil {
		logger.FatalWithFields("Service validation failed", err)
	}

	store := repository.NewStore(deps.DB())
	deps.WithAuthService(auth.NewService(store.Users, deps.Mailer(), []byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)).
		WithSocialService(social.NewService(store, deps.MediaStore())).
		WithFeedComposer(feed.NewComposer(store.Posts))

	if err := deps.Validate(); err != nil {
		logger.FatalWithFields("Dependency wiring incomplete", err)
	}

	authService := deps.Auth()
	redisClient := deps.Cache()
	h := handlers.NewHandlers(authService, deps.Social(), deps.Feed())

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	if cfg.Telemetry.Enabled {
		r.Use(middleware.TracingMiddleware(cfg.Telemetry.ServiceName))
	}
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader, "Retry-After"}
	r.Use(cors.New(corsConfig))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.GET("/health", func(c *gin.Context) {
		if redisClient != nil {
			if err := redisClient.Ping(c.Request.Context()); err != nil {
				logger.Log.Warn("Redis health check failed", zap.Error(err))
			}
		}
		if err := database.Health(); err != nil {
			logger.Log.Error("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"timestamp": time.Now().UTC(),
				"service":   "verity-backend",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "verity-backend",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// OptionalAuth runs for the whole group, ahead of the per-user API limit
	api := r.Group("/api/v1")
	api.Use(middleware.OptionalAuth(authService))
	api.Use(middleware.RedisRateLimitMiddleware(redisClient, middleware.APIRateLimitConfig(cfg.RateLimit)))

	h.RegisterRoutes(api, handlers.RouteMiddleware{
		RequireAuth: middleware.RequireAuth(authService),
		AuthLimit:   middleware.RedisRateLimitMiddleware(redisClient, middleware.AuthRateLimitConfig(cfg.RateLimit)),
		UploadLimit: middleware.RedisRateLimitMiddleware(redisClient, middleware.UploadRateLimitConfig(cfg.RateLimit)),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("Verity backend listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.FatalWithFields("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := deps.Cleanup(shutdownCtx); err != nil {
		logger.Log.Warn("Shutdown finished with errors", zap.Error(err))
	}

	logger.Log.Info("Server exited")
}

// newMailer uses SES when a sender address is configured and logs codes otherwise
func newMailer(cfg *config.Config) email.Sender {
	if cfg.AWS.SESFromEmail == "" {
		logger.Log.Warn("SES_FROM_EMAIL not set, verification and reset codes are only logged")
		return email.LogSender{}
	}

	mailer, err := email.NewEmailService(cfg.AWS.Region, cfg.AWS.SESFromEmail, cfg.AWS.SESFromName)
	if err != nil {
		logger.FatalWithFields("Failed to initialize email service", err)
	}
	return mailer
}

// newS3Uploader returns nil when no bucket is configured; posts with media are
// then rejected with 503.
func newS3Uploader(ctx context.Context, cfg *config.Config) *storage.S3Uploader {
	if cfg.AWS.S3Bucket == "" {
		logger.Log.Warn("S3_BUCKET not set, media uploads are disabled")
		return nil
	}

	uploader, err := storage.NewS3Uploader(ctx, cfg.AWS.Region, cfg.AWS.S3Bucket, cfg.AWS.CDNURL)
	if err != nil {
		logger.FatalWithFields("Failed to initialize S3 uploader", err)
	}
	return uploader
}
