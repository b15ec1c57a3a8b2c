package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const devJWTSecret = "default_super_secret_key"

type Config struct {
	// HTTP Server
	Port        string
	GinMode     string
	CORSOrigins []string

	// Database
	DatabaseURL    string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	DBMaxOpenConns int
	DBMaxIdleConns int

	// Auth
	JWTSecret      string
	JWTTTL         time.Duration
	GoogleClientID string

	// Logging
	LogLevel  string
	LogFormat string

	// Analytics
	AnalyticsTimezone    string
	AnalyticsMonthLocale string

	// AMQP
	AMQPURL      string
	AMQPExchange string
}

// Load reads configuration from the process environment.
// Call godotenv.Load beforehand to pick up a .env file.
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: getEnvList("CORS_ORIGINS", []string{"http://localhost:5173"}),

		DatabaseURL:    getEnv("DATABASE_URL", ""),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", "postgres"),
		DBName:         getEnv("DB_NAME", "postgres"),
		DBSSLMode:      getEnv("DB_SSLMODE", "disable"),
		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 20),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),

		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTTTL:         getEnvDuration("JWT_TTL", 7*24*time.Hour),
		GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		AnalyticsTimezone:    getEnv("ANALYTICS_TIMEZONE", "Local"),
		AnalyticsMonthLocale: getEnv("ANALYTICS_MONTH_LOCALE", "bn"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "invoices"),
	}
}

// DSN returns the Postgres connection string, preferring DATABASE_URL when set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName + "?sslmode=" + c.DBSSLMode
}

// Secret returns the HMAC secret for app tokens.
// Outside release mode an empty JWT_SECRET falls back to a development key.
func (c *Config) Secret() []byte {
	if c.JWTSecret == "" {
		return []byte(devJWTSecret)
	}
	return []byte(c.JWTSecret)
}

// Location resolves ANALYTICS_TIMEZONE. Validate reports unknown zones.
func (c *Config) Location() *time.Location {
	if c.AnalyticsTimezone == "" || c.AnalyticsTimezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.AnalyticsTimezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.GinMode == "release" && c.JWTSecret == "" {
		errors = append(errors, "JWT_SECRET is required in release mode")
	}

	if c.JWTTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid JWT TTL %v: must be at least 1 minute", c.JWTTTL))
	}

	if c.DBMaxOpenConns < 1 {
		errors = append(errors, fmt.Sprintf("invalid max open connections %d: must be at least 1", c.DBMaxOpenConns))
	}
	if c.DBMaxIdleConns < 0 || c.DBMaxIdleConns > c.DBMaxOpenConns {
		errors = append(errors, fmt.Sprintf("invalid max idle connections %d: must be between 0 and %d", c.DBMaxIdleConns, c.DBMaxOpenConns))
	}

	validFormats := []string{"console", "json"}
	if !contains(validFormats, c.LogFormat) {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be one of %v", c.LogFormat, validFormats))
	}

	if c.AnalyticsTimezone != "" && c.AnalyticsTimezone != "Local" {
		if _, err := time.LoadLocation(c.AnalyticsTimezone); err != nil {
			errors = append(errors, fmt.Sprintf("invalid analytics timezone '%s': %v", c.AnalyticsTimezone, err))
		}
	}

	validLocales := []string{"bn", "en"}
	if !contains(validLocales, c.AnalyticsMonthLocale) {
		errors = append(errors, fmt.Sprintf("invalid month locale '%s': must be one of %v", c.AnalyticsMonthLocale, validLocales))
	}

	if c.AMQPURL != "" {
		if !strings.HasPrefix(c.AMQPURL, "amqp://") && !strings.HasPrefix(c.AMQPURL, "amqps://") {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': scheme must be amqp or amqps", c.AMQPURL))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
