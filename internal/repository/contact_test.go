package repository

import (
	"context"
	"testing"
	"time"

	"portfolio/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactRepository(t *testing.T) {
	repo := NewContactRepository(newTestDB(t))
	ctx := context.Background()

	first := &models.ContactMessage{Name: "Ada", Email: "ada@example.com", Message: "hi", Status: models.ContactStatusNew}
	require.NoError(t, repo.Create(ctx, first))
	second := &models.ContactMessage{Name: "Linus", Email: "l@example.com", Message: "hey", Status: models.ContactStatusNew}
	require.NoError(t, repo.Create(ctx, second))

	list, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	at := time.Now().UTC()
	require.NoError(t, repo.MarkReplied(ctx, first.ID, "thanks", at))

	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContactStatusReplied, got.Status)
	require.NotNil(t, got.ReplyMessage)
	assert.Equal(t, "thanks", *got.ReplyMessage)
	assert.NotNil(t, got.RepliedAt)

	err = repo.MarkReplied(ctx, 999, "x", at)
	assert.True(t, models.IsNotFound(err))
}
