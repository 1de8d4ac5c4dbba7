package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"portfolio/internal/models"
	"portfolio/internal/repository"
	"portfolio/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type projectEnv struct {
	svc   *ProjectService
	repo  repository.ProjectRepository
	store *testutil.MemoryStore
	reval *testutil.RecordingRevalidator
	clock *fixedClock
}

func newProjectEnv(t *testing.T) *projectEnv {
	t.Helper()
	repo := repository.NewProjectRepository(newTestDB(t))
	store := testutil.NewMemoryStore()
	reval := &testutil.RecordingRevalidator{}
	svc := NewProjectService(repo, store, adminPolicy, reval)
	clock := newFixedClock()
	svc.now = clock.now
	return &projectEnv{svc: svc, repo: repo, store: store, reval: reval, clock: clock}
}

func validProjectInput(slug string) CreateProjectInput {
	return CreateProjectInput{
		Title:          "Portfolio Site",
		Slug:           slug,
		ProjectDetails: strings.Repeat("A fast personal site. ", 4),
		LiveURL:        "https://example.com",
		Technologies:   []string{"Go", "Postgres"},
		Tags:           []string{"go"},
		Category:       "web",
		ImageIDs:       []string{"img-a", "img-b"},
	}
}

func TestProjectService_Workflow(t *testing.T) {
	env := newProjectEnv(t)
	ctx := context.Background()

	project, err := env.svc.Create(ctx, testutil.Admin, validProjectInput("portfolio-site"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, project.Status)
	assert.Nil(t, project.GithubURL, "empty links are stored as absent")

	_, err = env.svc.GetBySlug(ctx, "portfolio-site")
	assert.True(t, models.IsNotFound(err), "drafts are not public")

	res, err := env.svc.Publish(ctx, testutil.Admin, project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PublishOutcomePublished, res.Status)

	env.clock.advance(time.Hour)
	res, err = env.svc.Publish(ctx, testutil.Admin, project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PublishOutcomeAlreadyPublished, res.Status)

	got, err := env.svc.GetBySlug(ctx, "portfolio-site")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, got.Status)
	assert.Contains(t, env.reval.All(), "/projects/portfolio-site")

	require.NoError(t, env.svc.Archive(ctx, testutil.Admin, project.ID))
	err = env.svc.Archive(ctx, testutil.Admin, 404)
	assert.Equal(t, "Project not found", err.Error())
}

func TestProjectService_UpdateOwnership(t *testing.T) {
	env := newProjectEnv(t)
	ctx := context.Background()

	project, err := env.svc.Create(ctx, testutil.Admin, validProjectInput("owned"))
	require.NoError(t, err)

	// Same admin email, different account.
	impostor := &models.Actor{ID: 99, Email: testutil.Admin.Email}
	title := "Taken over"
	_, err = env.svc.Update(ctx, impostor, project.ID, models.ProjectPatch{Title: &title})
	assert.Equal(t, models.CodeForbidden, models.ErrorCode(err))

	empty := ""
	updated, err := env.svc.Update(ctx, testutil.Admin, project.ID, models.ProjectPatch{Title: &title, LiveURL: &empty})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Nil(t, updated.LiveURL)

	bad := "not a url"
	_, err = env.svc.Update(ctx, testutil.Admin, project.ID, models.ProjectPatch{GithubURL: &bad})
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))

	tooMany := []string{"a", "b", "c", "d"}
	_, err = env.svc.Update(ctx, testutil.Admin, project.ID, models.ProjectPatch{ImageIDs: &tooMany})
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
}

func TestProjectService_DeleteImage(t *testing.T) {
	env := newProjectEnv(t)
	ctx := context.Background()
	env.store.Seed("img-a", []byte("a"), "image/webp")
	env.store.Seed("img-b", []byte("b"), "image/webp")

	project, err := env.svc.Create(ctx, testutil.Admin, validProjectInput("with-images"))
	require.NoError(t, err)

	require.NoError(t, env.svc.DeleteImage(ctx, testutil.Admin, project.ID, "img-a"))

	got, err := env.svc.GetByID(ctx, testutil.Admin, project.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"img-b"}, got.ImageIDs)
	assert.Equal(t, []string{"https://storage.test/img-b"}, got.ImageURLs)
	assert.Equal(t, []string{"img-a"}, env.store.Deleted())

	err = env.svc.DeleteImage(ctx, testutil.Admin, 404, "img-b")
	assert.True(t, models.IsNotFound(err))
}

func TestProjectService_ListRecentDefaultsToThree(t *testing.T) {
	env := newProjectEnv(t)
	ctx := context.Background()

	for _, slug := range []string{"one", "two", "three", "four"} {
		p, err := env.svc.Create(ctx, testutil.Admin, validProjectInput(slug))
		require.NoError(t, err)
		env.clock.advance(time.Minute)
		_, err = env.svc.Publish(ctx, testutil.Admin, p.ID)
		require.NoError(t, err)
	}

	recent, err := env.svc.ListRecent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "four", recent[0].Slug)

	all, err := env.svc.ListAll(ctx, testutil.Admin, 50, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	_, err = env.svc.ListAll(ctx, nil, 50, 0)
	assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err))
}
