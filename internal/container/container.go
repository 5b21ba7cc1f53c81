// Package container holds the server's wired dependencies and shuts them down
// in reverse order of registration.
package container

import (
	"context"
	"errors"
	"sync"

	"github.com/verity/backend/internal/auth"
	"github.com/verity/backend/internal/cache"
	"github.com/verity/backend/internal/email"
	"github.com/verity/backend/internal/feed"
	"github.com/verity/backend/internal/logger"
	"github.com/verity/backend/internal/social"
	"github.com/verity/backend/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Container holds all application dependencies
type Container struct {
	// Core infrastructure
	db     *gorm.DB
	logger *zap.Logger
	cache  *cache.RedisClient

	// External services
	mailer email.Sender
	media  storage.MediaStore

	// Domain services
	auth   *auth.Service
	social *social.Service
	feed   *feed.Composer

	cleanupFuncs []cleanup
	mu           sync.RWMutex
}

type cleanup struct {
	name string
	fn   func(context.Context) error
}

// New creates a new empty container.
func New() *Container {
	return &Container{}
}

// WithDB registers the database connection
func (c *Container) WithDB(db *gorm.DB) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.db = db
	return c
}

// DB returns the database connection
func (c *Container) DB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

// WithLogger registers the logger
func (c *Container) WithLogger(l *zap.Logger) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = l
	return c
}

// Logger returns the registered logger, falling back to the global one
func (c *Container) Logger() *zap.Logger {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loggerLocked()
}

func (c *Container) loggerLocked() *zap.Logger {
	if c.logger == nil {
		return logger.Log
	}
	return c.logger
}

// WithCache registers the Redis client. A nil client means in-process rate limiting.
func (c *Container) WithCache(client *cache.RedisClient) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = client
	return c
}

func (c *Container) Cache() *cache.RedisClient {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cache
}

// WithMailer registers the code delivery backend
func (c *Container) WithMailer(mailer email.Sender) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mailer = mailer
	return c
}

func (c *Container) Mailer() email.Sender {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mailer
}

// WithMediaStore registers the media backend. A nil store disables uploads.
func (c *Container) WithMediaStore(media storage.MediaStore) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.media = media
	return c
}

func (c *Container) MediaStore() storage.MediaStore {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.media
}

// WithAuthService registers the identity service
func (c *Container) WithAuthService(service *auth.Service) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.auth = service
	return c
}

func (c *Container) Auth() *auth.Service {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.auth
}

// WithSocialService registers the graph, post and engagement service
func (c *Container) WithSocialService(service *social.Service) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.social = service
	return c
}

func (c *Container) Social() *social.Service {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.social
}

// WithFeedComposer registers the feed composer
func (c *Container) WithFeedComposer(composer *feed.Composer) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.feed = composer
	return c
}

func (c *Container) Feed() *feed.Composer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.feed
}

// OnCleanup registers a shutdown hook. Hooks run last registered, first cleaned up.
func (c *Container) OnCleanup(name string, fn func(context.Context) error) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanupFuncs = append(c.cleanupFuncs, cleanup{name: name, fn: fn})
	return c
}

// Cleanup runs every shutdown hook in reverse order. A failing hook does not
// stop the rest; all failures are joined into the returned error.
func (c *Container) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for i := len(c.cleanupFuncs) - 1; i >= 0; i-- {
		hook := c.cleanupFuncs[i]
		if err := hook.fn(ctx); err != nil {
			c.loggerLocked().Error("Cleanup function failed",
				zap.String("name", hook.name),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}
	c.cleanupFuncs = nil
	return errors.Join(errs...)
}

// Validate checks that all required dependencies are registered.
// Call it after wiring and before starting the server.
func (c *Container) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	missingDeps := []string{}
	if c.db == nil {
		missingDeps = append(missingDeps, "database (DB)")
	}
	if c.mailer == nil {
		missingDeps = append(missingDeps, "mailer")
	}
	if c.auth == nil {
		missingDeps = append(missingDeps, "auth service")
	}
	if c.social == nil {
		missingDeps = append(missingDeps, "social service")
	}
	if c.feed == nil {
		missingDeps = append(missingDeps, "feed composer")
	}
	if len(missingDeps) > 0 {
		return NewInitializationError("Missing required dependencies", missingDeps)
	}

	// Optional; the server degrades without them
	if c.cache == nil {
		c.loggerLocked().Warn("Redis not registered, rate limits are per instance")
	}
	if c.media == nil {
		c.loggerLocked().Warn("Media store not registered, uploads return 503")
	}
	return nil
}
