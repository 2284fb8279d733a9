package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:               "8000",
		Env:                "development",
		JWTSecret:          "secure-secret-at-least-32-chars-long",
		DBPassword:         "secure-password",
		DBSSLMode:          "require",
		AccessTokenTTL:     5 * time.Minute,
		RefreshTokenTTL:    24 * time.Hour,
		PageSize:           10,
		TracingSampleRatio: 1,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid development", func(c *Config) {}, ""},
		{"missing port", func(c *Config) { c.Port = "" }, "PORT is required"},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET is required"},
		{"zero access ttl", func(c *Config) { c.AccessTokenTTL = 0 }, "ACCESS_TOKEN_TTL"},
		{"refresh shorter than access", func(c *Config) { c.RefreshTokenTTL = time.Minute }, "REFRESH_TOKEN_TTL"},
		{"zero page size", func(c *Config) { c.PageSize = 0 }, "PAGE_SIZE"},
		{"sample ratio out of range", func(c *Config) { c.TracingSampleRatio = 1.5 }, "TRACING_SAMPLE_RATIO"},
		{"production default secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = defaultJWTSecret
		}, "changed from the default"},
		{"production short secret", func(c *Config) {
			c.Env = "prod"
			c.JWTSecret = "short"
		}, "at least 32 characters"},
		{"production weak db password", func(c *Config) {
			c.Env = "production"
			c.DBPassword = "password"
		}, "DB_PASSWORD"},
		{"production valid", func(c *Config) { c.Env = "production" }, ""},
		{"development short secret only warns", func(c *Config) { c.JWTSecret = "short" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8000", c.Port)
	assert.Equal(t, 5*time.Minute, c.AccessTokenTTL)
	assert.Equal(t, 24*time.Hour, c.RefreshTokenTTL)
	assert.Equal(t, 10, c.PageSize)
	assert.Equal(t, 25, c.DBMaxOpenConns)
	assert.False(t, c.IsProduction())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("PORT", "9090")
	t.Setenv("ACCESS_TOKEN_TTL", "15m")
	t.Setenv("PAGE_SIZE", "25")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", c.Port)
	assert.Equal(t, 15*time.Minute, c.AccessTokenTTL)
	assert.Equal(t, 25, c.PageSize)
}

func TestConfig_Origins(t *testing.T) {
	c := &Config{AllowedOrigins: " http://a.test, ,http://b.test "}
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, c.Origins())
}
