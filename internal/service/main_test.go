package service

import (
	"testing"
	"time"

	"portfolio/internal/database"
	"portfolio/internal/policy"
	"portfolio/internal/repository"
	"portfolio/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

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

var adminPolicy = policy.NewAdminEmail("ADMIN@example.com")

// fixedClock returns a clock that can be moved forward by tests.
type fixedClock struct{ t time.Time }

func (c *fixedClock) now() time.Time       { return c.t }
func (c *fixedClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newFixedClock() *fixedClock {
	return &fixedClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

type postEnv struct {
	db    *gorm.DB
	svc   *PostService
	repo  repository.PostRepository
	store *testutil.MemoryStore
	reval *testutil.RecordingRevalidator
	clock *fixedClock
}

func newPostEnv(t *testing.T) *postEnv {
	t.Helper()
	db := newTestDB(t)
	repo := repository.NewPostRepository(db)
	store := testutil.NewMemoryStore()
	reval := &testutil.RecordingRevalidator{}
	svc := NewPostService(repo, store, adminPolicy, reval)
	clock := newFixedClock()
	svc.now = clock.now
	return &postEnv{db: db, svc: svc, repo: repo, store: store, reval: reval, clock: clock}
}
