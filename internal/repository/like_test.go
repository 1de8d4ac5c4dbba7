package repository

import (
	"context"
	"testing"

	"portfolio/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestLikeRepository_ToggleRoundTrip(t *testing.T) {
	db := newTestDB(t)
	posts := NewPostRepository(db)
	likes := NewLikeRepository(db)
	ctx := context.Background()

	post := newPost("liked", models.StatusPublished)
	require.NoError(t, posts.Create(ctx, post))

	state, err := likes.Toggle(ctx, post.ID, "visitor-a")
	require.NoError(t, err)
	assert.Equal(t, models.LikeState{Liked: true, Likes: 1}, *state)

	other, err := likes.Toggle(ctx, post.ID, "visitor-b")
	require.NoError(t, err)
	assert.Equal(t, int64(2), other.Likes)

	state, err = likes.Toggle(ctx, post.ID, "visitor-a")
	require.NoError(t, err)
	assert.Equal(t, models.LikeState{Liked: false, Likes: 1}, *state)

	status, err := likes.Status(ctx, post.ID, "visitor-b")
	require.NoError(t, err)
	assert.True(t, status.Liked)

	n, err := likes.Count(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestLikeRepository_CounterNeverNegative(t *testing.T) {
	db := newTestDB(t)
	posts := NewPostRepository(db)
	likes := NewLikeRepository(db)
	ctx := context.Background()

	post := newPost("drifted", models.StatusPublished)
	require.NoError(t, posts.Create(ctx, post))
	require.NoError(t, db.Create(&models.Like{VisitorID: "v", PostID: post.ID}).Error)

	// The Like row exists but the counter says zero.
	state, err := likes.Toggle(ctx, post.ID, "v")
	require.NoError(t, err)
	assert.False(t, state.Liked)
	assert.Equal(t, int64(0), state.Likes)
}

func TestLikeRepository_MissingPost(t *testing.T) {
	likes := NewLikeRepository(newTestDB(t))

	_, err := likes.Toggle(context.Background(), 404, "v")
	require.Error(t, err)
	assert.Equal(t, "Post not found", err.Error())

	_, err = likes.Status(context.Background(), 404, "v")
	assert.True(t, models.IsNotFound(err))
}

func TestPostRepository_ReconcileLikes(t *testing.T) {
	db := newTestDB(t)
	posts := NewPostRepository(db)
	ctx := context.Background()

	post := newPost("reconcile", models.StatusPublished)
	require.NoError(t, posts.Create(ctx, post))
	require.NoError(t, db.Create(&models.Like{VisitorID: "a", PostID: post.ID}).Error)
	require.NoError(t, db.Create(&models.Like{VisitorID: "b", PostID: post.ID}).Error)
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", post.ID).
		UpdateColumn("likes", gorm.Expr("?", 7)).Error)

	changed, err := posts.ReconcileLikes(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)

	got, err := posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Likes)
}
