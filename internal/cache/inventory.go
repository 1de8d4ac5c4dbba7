package cache

import (
	"strings"
	"time"
)

const (
	PageKeyPrefix = "page:"

	// RevalidateChannel carries page paths that rendering nodes must refetch.
	RevalidateChannel = "revalidate"
)

const DefaultPageTTL = 5 * time.Minute

// Logical page paths served from the page cache.
const (
	PathHome     = "/"
	PathBlog     = "/blog"
	PathProjects = "/projects"
)

// PageKey is the cache key for a logical page path. Paths are normalized to a
// leading slash with no trailing slash.
func PageKey(path string) string {
	return PageKeyPrefix + NormalizePath(path)
}

// NormalizePath trims whitespace and trailing slashes and ensures a leading slash.
func NormalizePath(path string) string {
	path = strings.TrimSpace(path)
	path = strings.TrimRight(path, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

// PostPath is the public detail page of a post.
func PostPath(slug string) string {
	return PathBlog + "/" + slug
}

// ProjectPath is the public detail page of a project.
func ProjectPath(slug string) string {
	return PathProjects + "/" + slug
}
