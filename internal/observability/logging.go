// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"log/slog"
)

// Logs go through slog.Default, which the middleware package installs at init.

// LogMutation records a successful content mutation and counts it.
func LogMutation(ctx context.Context, entity, operation string, id uint, fields map[string]any) {
	ContentMutations.WithLabelValues(entity, operation).Inc()

	attrs := []any{
		slog.String("entity", entity),
		slog.String("operation", operation),
		slog.Uint64("id", uint64(id)),
	}
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	slog.Default().InfoContext(ctx, "content mutated", attrs...)
}

// LogAsyncOperationError logs a failure of fire-and-forget work that has no caller to report to.
func LogAsyncOperationError(ctx context.Context, operation string, err error, fields map[string]any) {
	AsyncFailures.WithLabelValues(operation).Inc()

	attrs := []any{
		slog.String("operation", operation),
		slog.String("type", "async_error"),
		slog.String("error", err.Error()),
	}
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	slog.Default().WarnContext(ctx, "async operation failed", attrs...)
}

// LogCacheEvent records a page cache hit, miss or invalidation at debug level.
func LogCacheEvent(ctx context.Context, event, key string) {
	PageCacheEvents.WithLabelValues(event).Inc()
	slog.Default().DebugContext(ctx, "page cache", slog.String("event", event), slog.String("key", key))
}
