package repository

import (
	"context"
	"regexp"
	"testing"

	"portfolio/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_GetByEmail_SQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE LOWER(email) = $1 ORDER BY "users"."id" LIMIT $2`)).
		WithArgs("admin@example.com", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name"}).AddRow(1, "admin@example.com", "Admin"))

	user, err := repo.GetByEmail(context.Background(), "  Admin@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, uint(1), user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Lifecycle(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	user := &models.User{Email: "Admin@Example.com", Name: "Admin", Password: "hash"}
	require.NoError(t, repo.Create(ctx, user))
	assert.Equal(t, "admin@example.com", user.Email)

	err = repo.Create(ctx, &models.User{Email: "admin@example.com", Password: "x"})
	assert.Equal(t, models.CodeConflict, models.ErrorCode(err))

	require.NoError(t, repo.UpdatePassword(ctx, user.ID, "new-hash"))
	got, err := repo.GetByEmail(ctx, "ADMIN@example.com")
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.Password)

	_, err = repo.GetByID(ctx, 999)
	assert.True(t, models.IsNotFound(err))
}
