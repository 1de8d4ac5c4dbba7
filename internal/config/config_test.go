package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:                      "development",
		Port:                     "8080",
		JWTSecret:                "secure-secret-at-least-32-chars-long",
		DBPassword:               "secure-password",
		DBSSLMode:                "require",
		ImageMaxUploadSizeMB:     1,
		DBConnMaxLifetimeMinutes: 1,
		RedisURL:                 "redis://localhost:6379",
		AdminEmail:               "admin@example.com",
	}
}

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Env = tt.env
			c.DBSSLMode = tt.sslMode

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateProductionRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"default jwt secret", func(c *Config) { c.JWTSecret = defaultJWTSecret }},
		{"short jwt secret", func(c *Config) { c.JWTSecret = "short" }},
		{"default db password", func(c *Config) { c.DBPassword = "password" }},
		{"missing admin email", func(c *Config) { c.AdminEmail = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Env = "production"
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestConfig_ValidateMailTransport(t *testing.T) {
	c := validConfig()
	c.MailTransport = "smtp"
	assert.Error(t, c.Validate())

	c.SMTPHost = "smtp.example.com"
	assert.NoError(t, c.Validate())

	c.MailTransport = "kafka"
	assert.Error(t, c.Validate())

	c.KafkaBrokers = "kafka-1:9092, kafka-2:9092"
	assert.NoError(t, c.Validate())
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, c.KafkaBrokerList())

	c.MailTransport = "pigeon"
	assert.Error(t, c.Validate())
}

func TestConfig_Durations(t *testing.T) {
	c := &Config{}
	assert.Equal(t, 24*time.Hour, c.JWTTTL())
	assert.Equal(t, 5*time.Minute, c.PageCacheTTL())
	assert.Equal(t, 15*time.Minute, c.PresignTTL())

	c.JWTTTLHours = 2
	c.PageCacheTTLSeconds = 10
	c.ImageMaxUploadSizeMB = 1
	assert.Equal(t, 2*time.Hour, c.JWTTTL())
	assert.Equal(t, 10*time.Second, c.PageCacheTTL())
	assert.Equal(t, int64(1<<20), c.MaxUploadBytes())
}

func TestLoadConfig_Normalization(t *testing.T) {
	defer os.Unsetenv("APP_ENV")
	defer os.Unsetenv("DB_SSLMODE")
	defer os.Unsetenv("ADMIN_EMAIL")
	defer viper.Reset()

	os.Setenv("APP_ENV", "development")
	os.Setenv("DB_SSLMODE", "  DISABLE  ")
	os.Setenv("ADMIN_EMAIL", "  Admin@Example.com ")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "Admin@Example.com", c.AdminEmail)
	assert.Equal(t, "log", c.MailTransport)
}
