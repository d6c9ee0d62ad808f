package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:                     "8080",
		Env:                      "development",
		AuthJWTSecret:            "secure-secret-at-least-32-chars-long",
		DBPassword:               "secure-password",
		DBSSLMode:                "require",
		RedisURL:                 "redis://localhost:6379",
		BucketPrecision:          3,
		TrendingCacheSeconds:     60,
		FeedMaxItems:             100,
		AvatarMaxUploadMB:        5,
		DBConnMaxLifetimeMinutes: 1,
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

func TestConfig_ValidateRanges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"missing port", func(c *Config) { c.Port = "" }},
		{"missing secret", func(c *Config) { c.AuthJWTSecret = "" }},
		{"missing redis", func(c *Config) { c.RedisURL = "" }},
		{"precision too low", func(c *Config) { c.BucketPrecision = 0 }},
		{"precision too high", func(c *Config) { c.BucketPrecision = 7 }},
		{"negative cache ttl", func(c *Config) { c.TrendingCacheSeconds = -1 }},
		{"zero feed size", func(c *Config) { c.FeedMaxItems = 0 }},
		{"zero avatar size", func(c *Config) { c.AvatarMaxUploadMB = 0 }},
		{"unknown exporter", func(c *Config) { c.TracingExporter = "zipkin" }},
		{"default secret in production", func(c *Config) {
			c.Env = "production"
			c.AuthJWTSecret = defaultAuthSecret
		}},
		{"weak db password in production", func(c *Config) {
			c.Env = "production"
			c.DBPassword = "password"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestConfig_Origins(t *testing.T) {
	c := &Config{AllowedOrigins: " http://a.test, ,http://b.test "}
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, c.Origins())
}

func TestLoadConfig_Normalization(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("BUCKET_PRECISION", "4")
	t.Setenv("TRACING_EXPORTER", " OTLP ")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, 4, c.BucketPrecision)
	assert.Equal(t, "otlp", c.TracingExporter)
	assert.Equal(t, "development", c.Env)
	assert.Equal(t, 200, c.FeedMaxItems)
}

func TestLoadConfig_RejectsBadPrecision(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "test")
	t.Setenv("BUCKET_PRECISION", "9")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestConfig_SeedDemoRejectedInProduction(t *testing.T) {
	c := validConfig()
	c.SeedDemo = true
	assert.NoError(t, c.Validate())

	c.Env = "production"
	assert.ErrorContains(t, c.Validate(), "SEED_DEMO")
}

func TestConfig_ValidateFeatureFlags(t *testing.T) {
	tests := []struct {
		name        string
		flags       string
		expectError bool
	}{
		{"Empty", "", false},
		{"Toggle and rollout", "popular_feed=off,beta=25%", false},
		{"Missing value", "popular_feed", true},
		{"Unknown value", "popular_feed=maybe", true},
		{"Rollout above 100", "popular_feed=150%", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.FeatureFlags = tt.flags
			err := c.Validate()
			if tt.expectError {
				assert.ErrorContains(t, err, "FEATURE_FLAGS")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
