package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"portfolio/internal/models"
	"portfolio/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPostInput(slug string) CreatePostInput {
	return CreatePostInput{
		Title:        "Hello World",
		Slug:         slug,
		Content:      strings.Repeat("Go is fun. ", 6),
		Tags:         []string{"go", "web"},
		Category:     "engineering",
		CoverImageID: "cover-1",
	}
}

func TestPostService_HelloWorld(t *testing.T) {
	env := newPostEnv(t)
	ctx := context.Background()

	post, err := env.svc.Create(ctx, testutil.Admin, validPostInput("hello-world"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, post.Status)
	assert.Equal(t, uint(1), post.AuthorID)
	assert.Equal(t, "Admin", post.AuthorName)
	assert.Zero(t, post.Views)
	assert.Zero(t, post.Likes)

	res, err := env.svc.Publish(ctx, testutil.Admin, post.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PublishOutcomePublished, res.Status)

	got, err := env.svc.GetBySlug(ctx, nil, "hello-world")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, got.Status)
	require.NotNil(t, got.PublishedAt)
	assert.False(t, got.PublishedAt.After(env.clock.now()))

	assert.Equal(t, []string{"/blog", "/", "/blog/hello-world"}, env.reval.All())
}

func TestPostService_SlugDefaultsToTitle(t *testing.T) {
	env := newPostEnv(t)

	in := validPostInput("")
	in.Title = "Building a Blog in Go!"
	post, err := env.svc.Create(context.Background(), testutil.Admin, in)
	require.NoError(t, err)
	assert.Equal(t, "building-a-blog-in-go", post.Slug)
}

func TestPostService_PublishIsIdempotent(t *testing.T) {
	env := newPostEnv(t)
	ctx := context.Background()

	post, err := env.svc.Create(ctx, testutil.Admin, validPostInput("twice"))
	require.NoError(t, err)

	_, err = env.svc.Publish(ctx, testutil.Admin, post.ID)
	require.NoError(t, err)
	first, err := env.repo.GetByID(ctx, post.ID)
	require.NoError(t, err)

	env.clock.advance(time.Hour)
	res, err := env.svc.Publish(ctx, testutil.Admin, post.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PublishOutcomeAlreadyPublished, res.Status)

	second, err := env.repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, second.Status)
	assert.True(t, first.PublishedAt.Equal(*second.PublishedAt), "publishedAt must not move")
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
	assert.Equal(t, first.Title, second.Title)
	assert.Equal(t, first.Slug, second.Slug)
}

func TestPostService_DuplicateSlug(t *testing.T) {
	env := newPostEnv(t)
	ctx := context.Background()

	first, err := env.svc.Create(ctx, testutil.Admin, validPostInput("dup"))
	require.NoError(t, err)
	require.NoError(t, env.svc.Archive(ctx, testutil.Admin, first.ID))

	_, err = env.svc.Create(ctx, testutil.Admin, validPostInput("dup"))
	require.Error(t, err)
	assert.Equal(t, models.CodeConflict, models.ErrorCode(err))
	assert.Equal(t, "Slug already exists", err.Error())

	kept, err := env.repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusArchived, kept.Status)
	assert.Equal(t, "Hello World", kept.Title)
}

func TestPostService_Archive(t *testing.T) {
	env := newPostEnv(t)
	ctx := context.Background()

	post, err := env.svc.Create(ctx, testutil.Admin, validPostInput("to-archive"))
	require.NoError(t, err)

	env.clock.advance(time.Minute)
	require.NoError(t, env.svc.Archive(ctx, testutil.Admin, post.ID))
	got, err := env.repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusArchived, got.Status)
	assert.True(t, got.UpdatedAt.After(post.CreatedAt))

	// Re-archiving is not an error.
	require.NoError(t, env.svc.Archive(ctx, testutil.Admin, post.ID))

	err = env.svc.Archive(ctx, testutil.Admin, 999)
	assert.Equal(t, "Post not found", err.Error())
}

func TestPostService_Unauthorized(t *testing.T) {
	env := newPostEnv(t)
	ctx := context.Background()
	stranger := &models.Actor{ID: 2, Email: "someone@example.com"}

	post, err := env.svc.Create(ctx, testutil.Admin, validPostInput("guarded"))
	require.NoError(t, err)

	for name, actor := range map[string]*models.Actor{"anonymous": nil, "stranger": stranger} {
		t.Run(name, func(t *testing.T) {
			_, err := env.svc.Create(ctx, actor, validPostInput("other"))
			assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err))

			_, err = env.svc.Publish(ctx, actor, post.ID)
			assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err))

			err = env.svc.Archive(ctx, actor, post.ID)
			assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err))

			_, err = env.svc.Update(ctx, actor, post.ID, models.PostPatch{})
			assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err))

			err = env.svc.DeleteImage(ctx, actor, "cover-1")
			assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err))
		})
	}

	got, err := env.repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, got.Status)
	exists, err := env.repo.SlugExists(ctx, "other", 0)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPostService_Update(t *testing.T) {
	env := newPostEnv(t)
	ctx := context.Background()

	post, err := env.svc.Create(ctx, testutil.Admin, validPostInput("original"))
	require.NoError(t, err)
	_, err = env.svc.Create(ctx, testutil.Admin, validPostInput("taken"))
	require.NoError(t, err)

	title := "A new title"
	published := models.StatusPublished
	env.clock.advance(time.Minute)
	updated, err := env.svc.Update(ctx, testutil.Admin, post.ID, models.PostPatch{Title: &title, Status: &published})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, "engineering", updated.Category, "absent fields are untouched")
	require.NotNil(t, updated.PublishedAt, "publishing through update back-fills publishedAt")
	firstPublished := *updated.PublishedAt

	// A later update keeps the original publish time.
	env.clock.advance(time.Hour)
	category := "notes"
	updated, err = env.svc.Update(ctx, testutil.Admin, post.ID, models.PostPatch{Category: &category})
	require.NoError(t, err)
	assert.True(t, updated.PublishedAt.Equal(firstPublished))

	slug := "taken"
	_, err = env.svc.Update(ctx, testutil.Admin, post.ID, models.PostPatch{Slug: &slug})
	assert.Equal(t, "Slug already exists", err.Error())

	short := "no"
	_, err = env.svc.Update(ctx, testutil.Admin, post.ID, models.PostPatch{Title: &short})
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))

	renamed := "renamed"
	_, err = env.svc.Update(ctx, testutil.Admin, post.ID, models.PostPatch{Slug: &renamed})
	require.NoError(t, err)
	assert.Contains(t, env.reval.All(), "/blog/original")
	assert.Contains(t, env.reval.All(), "/blog/renamed")
}

func TestPostService_CreateValidation(t *testing.T) {
	env := newPostEnv(t)

	tests := []struct {
		name   string
		mutate func(*CreatePostInput)
	}{
		{"short title", func(in *CreatePostInput) { in.Title = "Hi" }},
		{"bad slug", func(in *CreatePostInput) { in.Slug = "Not A Slug" }},
		{"short content", func(in *CreatePostInput) { in.Content = "too short" }},
		{"no tags", func(in *CreatePostInput) { in.Tags = nil }},
		{"six tags", func(in *CreatePostInput) { in.Tags = []string{"aa", "bb", "cc", "dd", "ee", "ff"} }},
		{"missing cover", func(in *CreatePostInput) { in.CoverImageID = "" }},
		{"long seo title", func(in *CreatePostInput) { s := strings.Repeat("x", 61); in.SEOTitle = &s }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validPostInput("valid-slug")
			tt.mutate(&in)
			_, err := env.svc.Create(context.Background(), testutil.Admin, in)
			assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
		})
	}
}

func TestPostService_Views(t *testing.T) {
	env := newPostEnv(t)
	ctx := context.Background()

	post, err := env.svc.Create(ctx, testutil.Admin, validPostInput("viewed"))
	require.NoError(t, err)

	var last int64
	for i := 0; i < 3; i++ {
		require.NoError(t, env.svc.IncrementView(ctx, post.ID))
		got, err := env.repo.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got.Views, last)
		last = got.Views
	}
	assert.Equal(t, int64(3), last)

	assert.NoError(t, env.svc.IncrementView(ctx, 4040), "a missing post is ignored")
}

func TestPostService_Visibility(t *testing.T) {
	env := newPostEnv(t)
	ctx := context.Background()
	env.store.Seed("cover-1", []byte("img"), "image/webp")

	post, err := env.svc.Create(ctx, testutil.Admin, validPostInput("secret-draft"))
	require.NoError(t, err)

	_, err = env.svc.GetBySlug(ctx, nil, "secret-draft")
	assert.True(t, models.IsNotFound(err))

	got, err := env.svc.GetBySlug(ctx, testutil.Admin, "secret-draft")
	require.NoError(t, err)
	assert.Equal(t, "https://storage.test/cover-1", got.CoverImageURL)

	list, err := env.svc.ListPublished(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list)

	all, err := env.svc.ListAll(ctx, testutil.Admin, 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, post.ID, all[0].ID)
	assert.NotEmpty(t, all[0].CoverImageURL)

	_, err = env.svc.ListByStatus(ctx, testutil.Admin, models.Status("bogus"), 10, 0)
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
}

func TestPostService_RevalidationFailureDoesNotFailPublish(t *testing.T) {
	env := newPostEnv(t)
	ctx := context.Background()

	post, err := env.svc.Create(ctx, testutil.Admin, validPostInput("stale-cache"))
	require.NoError(t, err)

	env.reval.Err = testutil.ErrBoom
	res, err := env.svc.Publish(ctx, testutil.Admin, post.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PublishOutcomePublished, res.Status)
}

func TestPostService_DeleteImage(t *testing.T) {
	env := newPostEnv(t)
	ctx := context.Background()
	env.store.Seed("img-1", []byte("x"), "image/webp")

	require.NoError(t, env.svc.DeleteImage(ctx, testutil.Admin, "img-1"))
	require.NoError(t, env.svc.DeleteImage(ctx, testutil.Admin, "img-1"), "already deleted")
	_, ok := env.store.Get("img-1")
	assert.False(t, ok)

	env.store.Err = testutil.ErrBoom
	err := env.svc.DeleteImage(ctx, testutil.Admin, "img-2")
	assert.Equal(t, models.CodeUpstream, models.ErrorCode(err))
}
