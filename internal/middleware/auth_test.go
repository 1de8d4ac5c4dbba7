package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"portfolio/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	token, exp, err := tm.Issue(&models.Actor{ID: 7, Email: "admin@example.com", Name: "Admin"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	actor, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), actor.ID)
	assert.Equal(t, "admin@example.com", actor.Email)
	assert.Equal(t, "Admin", actor.Name)
}

func TestTokenManager_RejectsForeignTokens(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	otherSecret, _, err := NewTokenManager("another-secret-key-000000000000000000000", time.Hour).
		Issue(&models.Actor{ID: 1, Email: "a@b.c"})
	require.NoError(t, err)

	expiredTM := NewTokenManager(testSecret, time.Hour)
	expiredTM.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := expiredTM.Issue(&models.Actor{ID: 1, Email: "a@b.c"})
	require.NoError(t, err)

	noAudience, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"iss": tokenIssuer,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"wrong secret":     otherSecret,
		"expired":          expired,
		"missing audience": noAudience,
		"garbage":          "malformed.token.here",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := tm.Parse(raw)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestAuthRequired(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	app := fiber.New()
	app.Get("/test", tm.AuthRequired(), func(c *fiber.Ctx) error {
		return c.JSON(ActorFromCtx(c))
	})

	valid, _, err := tm.Issue(&models.Actor{ID: 123, Email: "admin@example.com"})
	require.NoError(t, err)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
	}{
		{"Happy Path", "Bearer " + valid, http.StatusOK},
		{"Lowercase scheme", "bearer " + valid, http.StatusOK},
		{"Missing Header", "", http.StatusUnauthorized},
		{"Invalid Format", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"Malformed Token", "Bearer malformed.token.here", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK {
				var actor models.Actor
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&actor))
				assert.Equal(t, uint(123), actor.ID)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	app := fiber.New()
	app.Get("/test", tm.OptionalAuth(), func(c *fiber.Ctx) error {
		if ActorFromCtx(c) == nil {
			return c.SendString("anonymous")
		}
		return c.SendString("admin")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer broken")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	buf := make([]byte, 16)
	n, _ := resp.Body.Read(buf)
	assert.Equal(t, "anonymous", string(buf[:n]))
}
