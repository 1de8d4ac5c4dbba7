package policy

import (
	"context"
	"testing"

	"portfolio/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestAdminEmail_Authorize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		configured string
		actor      *models.Actor
		allowed    bool
	}{
		{"exact match", "admin@example.com", &models.Actor{Email: "admin@example.com"}, true},
		{"case-insensitive", "Admin@Example.com", &models.Actor{Email: "ADMIN@example.COM"}, true},
		{"surrounding space", " admin@example.com ", &models.Actor{Email: "admin@example.com"}, true},
		{"other user", "admin@example.com", &models.Actor{Email: "visitor@example.com"}, false},
		{"no session", "admin@example.com", nil, false},
		{"unset admin blocks everyone", "", &models.Actor{Email: "admin@example.com"}, false},
		{"empty email never matches", "", &models.Actor{Email: ""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := NewAdminEmail(tt.configured).Authorize(context.Background(), tt.actor)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err))
			assert.EqualError(t, err, "Unauthorized")
		})
	}
}

func TestAdminEmail_MayRegister(t *testing.T) {
	p := NewAdminEmail("admin@example.com")
	assert.True(t, p.MayRegister("ADMIN@example.com"))
	assert.False(t, p.MayRegister("someone@example.com"))
	assert.False(t, NewAdminEmail("").MayRegister(""))
}

func TestAllowAll(t *testing.T) {
	assert.NoError(t, AllowAll.Authorize(context.Background(), &models.Actor{ID: 1}))
	assert.Error(t, AllowAll.Authorize(context.Background(), nil))
}
