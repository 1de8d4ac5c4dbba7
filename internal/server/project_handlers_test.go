package server

import (
	"net/http"
	"strings"
	"testing"

	"portfolio/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func projectBody(slug string) map[string]any {
	return map[string]any{
		"title":           "Portfolio Site",
		"slug":            slug,
		"project_details": strings.Repeat("Built with Go and Postgres. ", 3),
		"github_url":      "https://github.com/example/site",
		"technologies":    []string{"Go"},
		"tags":            []string{"go"},
		"category":        "web",
		"image_ids":       []string{"img-a", "img-b"},
	}
}

func TestProjectRoutes(t *testing.T) {
	env := newTestEnv(t)
	env.store.Seed("img-a", []byte("a"), "image/webp")
	env.store.Seed("img-b", []byte("b"), "image/webp")

	resp := env.do(t, http.MethodPost, "/api/admin/projects", env.token, projectBody("site"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	project := decode[models.Project](t, resp)
	id := itoa(project.ID)

	resp = env.do(t, http.MethodGet, "/api/projects/slug/site", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/admin/projects/"+id+"/publish", env.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/projects", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]models.Project](t, resp), 1)
	assert.True(t, env.mr.Exists("page:/projects"))

	resp = env.do(t, http.MethodGet, "/api/projects/recent?limit=3", "", nil)
	assert.Len(t, decode[[]models.Project](t, resp), 1)

	resp = env.do(t, http.MethodDelete, "/api/admin/projects/"+id+"/images/img-a", env.token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.False(t, env.mr.Exists("page:/projects"), "image removal revalidates the list")

	resp = env.do(t, http.MethodGet, "/api/projects/slug/site", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[models.Project](t, resp)
	assert.Equal(t, []string{"img-b"}, got.ImageIDs)
	assert.Equal(t, []string{"https://storage.test/img-b"}, got.ImageURLs)

	resp = env.do(t, http.MethodPatch, "/api/admin/projects/"+id, env.token, map[string]any{"live_url": "ftp://nope"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPatch, "/api/admin/projects/"+id, env.token, map[string]any{"github_url": ""})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, decode[models.Project](t, resp).GithubURL)

	resp = env.do(t, http.MethodPost, "/api/admin/projects/"+id+"/archive", env.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/admin/projects", env.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	all := decode[[]models.Project](t, resp)
	require.Len(t, all, 1)
	assert.Equal(t, models.StatusArchived, all[0].Status)

	resp = env.do(t, http.MethodGet, "/api/admin/projects/"+id, env.token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProjectRoutes_Errors(t *testing.T) {
	env := newTestEnv(t)

	tooMany := projectBody("crowded")
	tooMany["image_ids"] = []string{"a", "b", "c", "d"}
	resp := env.do(t, http.MethodPost, "/api/admin/projects", env.token, tooMany)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/admin/projects/404/publish", env.token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Project not found", decode[models.ErrorResponse](t, resp).Error)

	resp = env.do(t, http.MethodPost, "/api/admin/projects", "", projectBody("anon"))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
