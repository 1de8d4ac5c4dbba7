package service

import (
	"context"
	"testing"
	"time"

	"portfolio/internal/middleware"
	"portfolio/internal/models"
	"portfolio/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const strongPassword = "Correct-Horse-42"

func newAuthEnv(t *testing.T) (*AuthService, *middleware.TokenManager) {
	t.Helper()
	tokens := middleware.NewTokenManager("test-secret-key-12345678901234567890", time.Hour)
	svc := NewAuthService(repository.NewUserRepository(newTestDB(t)), adminPolicy, tokens)
	svc.cost = bcrypt.MinCost
	return svc, tokens
}

func TestAuthService_SignupGuard(t *testing.T) {
	svc, tokens := newAuthEnv(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupInput{Email: "intruder@example.com", Name: "Eve", Password: strongPassword})
	assert.Equal(t, models.CodeForbidden, models.ErrorCode(err))

	_, err = svc.Signup(ctx, SignupInput{Email: "admin@example.com", Name: "Admin", Password: "weak"})
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))

	res, err := svc.Signup(ctx, SignupInput{Email: "Admin@Example.com", Name: "Admin", Password: strongPassword})
	require.NoError(t, err)
	actor, err := tokens.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", actor.Email)

	_, err = svc.Signup(ctx, SignupInput{Email: "admin@example.com", Name: "Again", Password: strongPassword})
	assert.Equal(t, models.CodeConflict, models.ErrorCode(err))
}

func TestAuthService_Login(t *testing.T) {
	svc, _ := newAuthEnv(t)
	ctx := context.Background()

	created, err := svc.EnsureAdmin(ctx, "admin@example.com", "", strongPassword)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureAdmin(ctx, "admin@example.com", "", strongPassword)
	require.NoError(t, err)
	assert.False(t, created, "bootstrap is idempotent")

	res, err := svc.Login(ctx, LoginInput{Email: "ADMIN@example.com", Password: strongPassword})
	require.NoError(t, err)
	assert.Equal(t, "Admin", res.User.Name)

	me, err := svc.Me(ctx, models.ActorFromUser(res.User))
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, me.ID)

	for name, in := range map[string]LoginInput{
		"wrong password": {Email: "admin@example.com", Password: "Wrong-Horse-42"},
		"unknown user":   {Email: "nobody@example.com", Password: strongPassword},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Login(ctx, in)
			assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err))
		})
	}
}

func TestAuthService_ResetPassword(t *testing.T) {
	svc, _ := newAuthEnv(t)
	ctx := context.Background()

	_, err := svc.EnsureAdmin(ctx, "admin@example.com", "Admin", strongPassword)
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(ctx, "admin@example.com", "Brand-New-Pass-7"))
	_, err = svc.Login(ctx, LoginInput{Email: "admin@example.com", Password: "Brand-New-Pass-7"})
	assert.NoError(t, err)

	_, err = svc.EnsureAdmin(ctx, "other@example.com", "Other", strongPassword)
	assert.Error(t, err)
}
