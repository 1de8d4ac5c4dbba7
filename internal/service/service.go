// Package service holds the content workflows behind the HTTP handlers and CLIs.
package service

import (
	"context"
	"log/slog"
	"time"

	"portfolio/internal/observability"
	"portfolio/internal/revalidate"
)

// DefaultRecentLimit is used by the "recent" listings when no limit is given.
const DefaultRecentLimit = 3

type clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

// noopTrigger stands in when a service is built without a revalidator.
type noopTrigger struct{}

func (noopTrigger) Paths(context.Context, ...string) error { return nil }

func triggerOrNoop(t revalidate.Trigger) revalidate.Trigger {
	if t == nil {
		return noopTrigger{}
	}
	return t
}

// revalidateAfterWrite runs after a committed write. A failure here cannot undo the
// write, so it is logged and counted rather than returned.
func revalidateAfterWrite(ctx context.Context, t revalidate.Trigger, paths []string) {
	if err := t.Paths(ctx, paths...); err != nil {
		observability.LogAsyncOperationError(ctx, "revalidate", err, map[string]any{"paths": paths})
	}
}

func logResolveFailure(ctx context.Context, storageID string, err error) {
	slog.Default().WarnContext(ctx, "image url lookup failed",
		slog.String("storage_id", storageID),
		slog.String("error", err.Error()),
	)
}
