// Package revalidate marks cached public pages as stale after content changes.
package revalidate

import (
	"context"
	"errors"
	"fmt"

	"portfolio/internal/cache"
	"portfolio/internal/notifications"
	"portfolio/internal/observability"
)

// Trigger is what services depend on.
type Trigger interface {
	Paths(ctx context.Context, paths ...string) error
}

// Revalidator drops page cache entries and announces the paths to renderers.
type Revalidator struct {
	pages    *cache.PageCache
	notifier *notifications.Notifier
}

// New builds a Revalidator over pages, announcing on the same Redis client.
func New(pages *cache.PageCache) *Revalidator {
	return &Revalidator{
		pages:    pages,
		notifier: notifications.NewNotifier(pages.Client()),
	}
}

// Paths invalidates each distinct path and publishes it. It attempts every path
// and returns the joined failures.
func (r *Revalidator) Paths(ctx context.Context, paths ...string) error {
	ctx, span := observability.StartSpan(ctx, "revalidate", "paths")
	var errs []error
	defer func() { observability.EndSpan(span, errors.Join(errs...)) }()

	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		p = cache.NormalizePath(p)
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}

		if err := r.pages.Invalidate(ctx, p); err != nil {
			errs = append(errs, fmt.Errorf("invalidate %s: %w", p, err))
			observability.Revalidations.WithLabelValues("error").Inc()
			continue
		}
		if err := r.notifier.PublishRevalidate(ctx, p); err != nil {
			errs = append(errs, fmt.Errorf("publish %s: %w", p, err))
			observability.Revalidations.WithLabelValues("error").Inc()
			continue
		}
		observability.Revalidations.WithLabelValues("ok").Inc()
	}
	return errors.Join(errs...)
}

// PostPaths are the pages that show a post with slug.
func PostPaths(slugs ...string) []string {
	out := []string{cache.PathBlog, cache.PathHome}
	for _, s := range slugs {
		if s != "" {
			out = append(out, cache.PostPath(s))
		}
	}
	return out
}

// ProjectPaths are the pages that show a project with slug.
func ProjectPaths(slugs ...string) []string {
	out := []string{cache.PathProjects, cache.PathHome}
	for _, s := range slugs {
		if s != "" {
			out = append(out, cache.ProjectPath(s))
		}
	}
	return out
}
