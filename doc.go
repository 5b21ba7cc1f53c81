// Package backend provides the Verity API server.
//
// This package contains no code of its own. The server and tools live under cmd/
// and the implementation is organized into subpackages:
//
//   - internal/handlers: HTTP request handlers for all API endpoints
//   - internal/models: Data models and database schemas
//   - internal/repository: Persistence for users, follows, posts, likes and comments
//   - internal/auth: Signup, verification, signin and password reset
//   - internal/social: Follow, like, comment and post operations
//   - internal/feed: Home feed composition
//   - internal/storage: Media sniffing and S3 uploads
//   - internal/email: SES delivery of verification and reset codes
//   - internal/database: Database connection and migrations
//   - internal/middleware: HTTP middleware (auth, rate limiting, metrics, tracing)
//   - internal/seed: Development and test fixtures
//
// See the individual package documentation for detailed API reference.
package backend
