package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// BusinessEvents opens spans for domain operations, one level above the HTTP
// and database spans.
type BusinessEvents struct {
	tracer trace.Tracer
}

// NewBusinessEvents creates a new business events tracer
func NewBusinessEvents() *BusinessEvents {
	return &BusinessEvents{
		tracer: otel.Tracer("business-events"),
	}
}

// TraceFeed creates a span for composing one feed page
func (be *BusinessEvents) TraceFeed(ctx context.Context, viewerID string, page, limit int) (context.Context, trace.Span) {
	return be.tracer.Start(ctx, "feed.compose",
		trace.WithAttributes(
			attribute.String("user.id", viewerID),
			attribute.Int("feed.page", page),
			attribute.Int("feed.limit", limit),
		),
	)
}

// TraceToggle creates a span for a follow or like state change.
// kind is "follow" or "like"; targetID is the followed user or liked post.
func (be *BusinessEvents) TraceToggle(ctx context.Context, kind, actorID, targetID string) (context.Context, trace.Span) {
	return be.tracer.Start(ctx, "social."+kind,
		trace.WithAttributes(
			attribute.String("user.id", actorID),
			attribute.String("social.target_id", targetID),
		),
	)
}

// TraceComment creates a span for creating or deleting comments
func (be *BusinessEvents) TraceComment(ctx context.Context, operation, postID string) (context.Context, trace.Span) {
	return be.tracer.Start(ctx, "comment."+operation,
		trace.WithAttributes(
			attribute.String("post.id", postID),
		),
	)
}

// TracePublish creates a span for publishing a post
func (be *BusinessEvents) TracePublish(ctx context.Context, userID string, hasMedia bool) (context.Context, trace.Span) {
	return be.tracer.Start(ctx, "post.publish",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.Bool("post.has_media", hasMedia),
		),
	)
}

// TraceExternalAPI creates a client span for calls to S3, SES and similar
func (be *BusinessEvents) TraceExternalAPI(ctx context.Context, service, operation string) (context.Context, trace.Span) {
	return be.tracer.Start(ctx, "external."+service+"."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("external.service", service),
			attribute.String("external.operation", operation),
		),
	)
}

// EndSpan records err on the span, if any, and ends it
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	}
	span.End()
}

var globalBusinessEvents = NewBusinessEvents()

// Events returns the process-wide business events tracer. It resolves the
// global tracer provider lazily, so InitTracer may run after package init.
func Events() *BusinessEvents {
	return globalBusinessEvents
}
