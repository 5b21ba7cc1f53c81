package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPRequestSize       *prometheus.HistogramVec
	HTTPResponseSize      *prometheus.HistogramVec
	HTTPActiveConnections *prometheus.GaugeVec

	// Rate limiting metrics
	RateLimitExceededTotal *prometheus.CounterVec

	// Social graph and engagement
	ToggleTotal         *prometheus.CounterVec
	CommentsTotal       *prometheus.CounterVec
	ToggleConflicts     *prometheus.CounterVec
	CounterReconcileRun *prometheus.CounterVec

	// Feed metrics
	FeedGenerationTime *prometheus.HistogramVec
	FeedPostsReturned  prometheus.Histogram

	// Identity and external collaborators
	AuthEventsTotal   *prometheus.CounterVec
	EmailsTotal       *prometheus.CounterVec
	MediaUploadsTotal *prometheus.CounterVec

	// Error metrics
	ErrorsTotal *prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestSize: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_size_bytes",
					Help:    "HTTP request body size in bytes",
					Buckets: prometheus.ExponentialBuckets(100, 10, 7),
				},
				[]string{"method", "path"},
			),
			HTTPResponseSize: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_response_size_bytes",
					Help:    "HTTP response size in bytes",
					Buckets: prometheus.ExponentialBuckets(100, 10, 7),
				},
				[]string{"method", "path", "status"},
			),
			HTTPActiveConnections: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "http_active_connections",
					Help: "Number of currently active HTTP connections",
				},
				[]string{"method", "path"},
			),

			RateLimitExceededTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "rate_limit_exceeded_total",
					Help: "Requests rejected by a rate limiter",
				},
				[]string{"limiter", "path"},
			),

			ToggleTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "social_toggles_total",
					Help: "Follow and like state changes by resulting action",
				},
				[]string{"kind", "action"},
			),
			CommentsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "comments_total",
					Help: "Comment rows created or removed",
				},
				[]string{"operation"},
			),
			ToggleConflicts: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "social_toggle_conflicts_total",
					Help: "Toggles rejected by a uniqueness constraint under concurrency",
				},
				[]string{"kind"},
			),
			CounterReconcileRun: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "counter_reconcile_rows_total",
					Help: "Rows rewritten by counter reconciliation",
				},
				[]string{"table"},
			),

			FeedGenerationTime: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "feed_generation_duration_seconds",
					Help:    "Time to compose a feed page",
					Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1},
				},
				[]string{"feed_type"},
			),
			FeedPostsReturned: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "feed_posts_returned",
					Help:    "Posts returned per feed page",
					Buckets: []float64{0, 1, 5, 10, 15, 20},
				},
			),

			AuthEventsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "auth_events_total",
					Help: "Identity flow outcomes",
				},
				[]string{"event", "outcome"},
			),
			EmailsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "emails_sent_total",
					Help: "Email delivery attempts",
				},
				[]string{"kind", "status"},
			),
			MediaUploadsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "media_uploads_total",
					Help: "Media hosting operations",
				},
				[]string{"kind", "status"},
			),

			ErrorsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "errors_total",
					Help: "Total number of errors by type",
				},
				[]string{"error_type", "endpoint"},
			),
		}
	})
	return instance
}

// Get returns the global metrics instance
func Get() *Metrics {
	if instance == nil {
		return Initialize()
	}
	return instance
}

// RecordToggle counts a follow/like toggle by kind ("follow", "like") and resulting action
func RecordToggle(kind, action string) {
	Get().ToggleTotal.WithLabelValues(kind, action).Inc()
}

// RecordToggleConflict counts a toggle lost to a concurrent identical request
func RecordToggleConflict(kind string) {
	Get().ToggleConflicts.WithLabelValues(kind).Inc()
}

// RecordComments counts comment rows by operation ("created", "deleted")
func RecordComments(operation string, rows int64) {
	Get().CommentsTotal.WithLabelValues(operation).Add(float64(rows))
}

func RecordFeedGeneration(feedType string, duration time.Duration, posts int) {
	m := Get()
	m.FeedGenerationTime.WithLabelValues(feedType).Observe(duration.Seconds())
	m.FeedPostsReturned.Observe(float64(posts))
}

func RecordReconcile(table string, rows int64) {
	Get().CounterReconcileRun.WithLabelValues(table).Add(float64(rows))
}

// RecordAuthEvent counts identity flow outcomes, e.g. ("signin", "unverified")
func RecordAuthEvent(event, outcome string) {
	Get().AuthEventsTotal.WithLabelValues(event, outcome).Inc()
}

func RecordEmail(kind string, err error) {
	Get().EmailsTotal.WithLabelValues(kind, statusLabel(err)).Inc()
}

func RecordMediaUpload(kind string, err error) {
	Get().MediaUploadsTotal.WithLabelValues(kind, statusLabel(err)).Inc()
}

func RecordRateLimitExceeded(limiter, path string) {
	Get().RateLimitExceededTotal.WithLabelValues(limiter, path).Inc()
}

func RecordError(errorType, endpoint string) {
	Get().ErrorsTotal.WithLabelValues(errorType, endpoint).Inc()
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
