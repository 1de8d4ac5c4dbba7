package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPageCache(t *testing.T) (*miniredis.Miniredis, *PageCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, NewPageCache(rdb, time.Minute)
}

func TestNormalizePath(t *testing.T) {
	tests := map[string]string{
		"/blog":       "/blog",
		"/blog/":      "/blog",
		"blog/hello":  "/blog/hello",
		" / ":         "/",
		"":            "/",
		"/projects//": "/projects",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizePath(in), "input %q", in)
	}
	assert.Equal(t, "page:/blog/hello-world", PageKey(PostPath("hello-world")))
	assert.Equal(t, "page:/projects/site", PageKey(ProjectPath("site")))
}

func TestPageCache_AsideFetchesOnceThenHits(t *testing.T) {
	mr, pc := newPageCache(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *[]string) func() error {
		return func() error {
			calls++
			*dest = []string{"a", "b"}
			return nil
		}
	}

	var first []string
	require.NoError(t, pc.Aside(ctx, "/blog", &first, fetch(&first)))
	var second []string
	require.NoError(t, pc.Aside(ctx, "/blog/", &second, fetch(&second)))

	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"a", "b"}, second)
	assert.True(t, mr.Exists("page:/blog"))
	assert.Equal(t, time.Minute, mr.TTL("page:/blog"))
}

func TestPageCache_AsidePropagatesFetchError(t *testing.T) {
	mr, pc := newPageCache(t)
	var dest []string
	err := pc.Aside(context.Background(), "/", &dest, func() error { return errors.New("db down") })
	assert.EqualError(t, err, "db down")
	assert.False(t, mr.Exists("page:/"))
}

func TestPageCache_Invalidate(t *testing.T) {
	mr, pc := newPageCache(t)
	ctx := context.Background()
	require.NoError(t, pc.SetJSON(ctx, PageKey("/blog"), []int{1}))
	require.NoError(t, pc.SetJSON(ctx, PageKey("/"), []int{1}))
	require.NoError(t, pc.SetJSON(ctx, PageKey("/projects"), []int{1}))

	require.NoError(t, pc.Invalidate(ctx, "/blog", "/"))

	assert.False(t, mr.Exists("page:/blog"))
	assert.False(t, mr.Exists("page:/"))
	assert.True(t, mr.Exists("page:/projects"))
}

func TestPageCache_NilClientFailsOpen(t *testing.T) {
	pc := NewPageCache(nil, 0)
	ctx := context.Background()

	calls := 0
	var dest []string
	for i := 0; i < 2; i++ {
		require.NoError(t, pc.Aside(ctx, "/blog", &dest, func() error {
			calls++
			return nil
		}))
	}
	assert.Equal(t, 2, calls)
	assert.NoError(t, pc.Invalidate(ctx, "/blog"))
}

func TestNewClient(t *testing.T) {
	rdb, err := NewClient("redis://localhost:6379/2")
	require.NoError(t, err)
	assert.Equal(t, 2, rdb.Options().DB)

	_, err = NewClient("redis://%zz")
	assert.Error(t, err)
}
