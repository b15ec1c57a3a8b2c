package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Port:                 "8080",
		GinMode:              "debug",
		DBMaxOpenConns:       20,
		DBMaxIdleConns:       5,
		JWTTTL:               7 * 24 * time.Hour,
		LogFormat:            "console",
		AnalyticsTimezone:    "Local",
		AnalyticsMonthLocale: "bn",
		AMQPExchange:         "invoices",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		errorString string
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range",
			mutate:      func(c *Config) { c.Port = "70000" },
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "release mode without secret",
			mutate:      func(c *Config) { c.GinMode = "release" },
			errorString: "JWT_SECRET is required in release mode",
		},
		{
			name: "release mode with secret",
			mutate: func(c *Config) {
				c.GinMode = "release"
				c.JWTSecret = "s3cret"
			},
		},
		{
			name:        "unknown timezone",
			mutate:      func(c *Config) { c.AnalyticsTimezone = "Mars/Olympus" },
			errorString: "invalid analytics timezone 'Mars/Olympus'",
		},
		{
			name:        "unknown month locale",
			mutate:      func(c *Config) { c.AnalyticsMonthLocale = "fr" },
			errorString: "invalid month locale 'fr'",
		},
		{
			name:        "bad amqp scheme",
			mutate:      func(c *Config) { c.AMQPURL = "http://localhost:5672" },
			errorString: "scheme must be amqp or amqps",
		},
		{
			name:        "idle connections above open connections",
			mutate:      func(c *Config) { c.DBMaxIdleConns = 50 },
			errorString: "invalid max idle connections 50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errorString == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorString)
		})
	}
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_TTL", "24h")
	t.Setenv("CORS_ORIGINS", "https://app.example.com, https://admin.example.com")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("ANALYTICS_TIMEZONE", "UTC")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, 20, cfg.DBMaxOpenConns)
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestDSN(t *testing.T) {
	cfg := validConfig()
	cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBSSLMode = "u", "p", "db", "5433", "invoices", "require"
	assert.Equal(t, "postgres://u:p@db:5433/invoices?sslmode=require", cfg.DSN())

	cfg.DatabaseURL = "postgres://override"
	assert.Equal(t, "postgres://override", cfg.DSN())
}

func TestSecretFallback(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, []byte(devJWTSecret), cfg.Secret())

	cfg.JWTSecret = "abc"
	assert.Equal(t, []byte("abc"), cfg.Secret())
}
