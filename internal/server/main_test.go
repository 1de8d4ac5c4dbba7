package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"portfolio/internal/config"
	"portfolio/internal/database"
	"portfolio/internal/models"
	"portfolio/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

type testEnv struct {
	srv    *Server
	app    *fiber.App
	db     *gorm.DB
	mr     *miniredis.Miniredis
	store  *testutil.MemoryStore
	mailer *testutil.RecordingSender
	token  string
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Port:                 "0",
		Env:                  "test",
		JWTSecret:            testSecret,
		JWTTTLHours:          1,
		AdminEmail:           "admin@example.com",
		ImageMaxUploadSizeMB: 1,
		MailFrom:             "site@example.com",
		MailTo:               "owner@example.com",
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	db := newTestDB(t)
	store := testutil.NewMemoryStore()
	mailer := &testutil.RecordingSender{}

	srv, err := NewServer(testConfig(), Deps{DB: db, Redis: rdb, Store: store, Mailer: mailer})
	require.NoError(t, err)
	srv.runAsync = func(f func()) { f() }

	token, _, err := srv.tokens.Issue(testutil.Admin)
	require.NoError(t, err)

	return &testEnv{srv: srv, app: srv.App(), db: db, mr: mr, store: store, mailer: mailer, token: token}
}

// do sends a JSON request. A non-empty token is sent as a bearer token.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func postBody(slug string) map[string]any {
	return map[string]any{
		"title":          "Hello World",
		"slug":           slug,
		"content":        strings.Repeat("Some words about Go. ", 5),
		"tags":           []string{"go"},
		"category":       "engineering",
		"cover_image_id": "cover-1",
	}
}

// createPublishedPost creates and publishes a post through the admin API.
func (e *testEnv) createPublishedPost(t *testing.T, slug string) models.Post {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/admin/posts", e.token, postBody(slug))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	post := decode[models.Post](t, resp)

	resp = e.do(t, http.MethodPost, "/api/admin/posts/"+itoa(post.ID)+"/publish", e.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return post
}

func newRequest(t *testing.T, method, path string) *http.Request {
	t.Helper()
	return httptest.NewRequest(method, path, nil)
}
