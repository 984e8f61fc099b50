package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/wolfman30/podology-frontdesk/internal/datekey"
)

// Config holds application configuration
type Config struct {
	Port        string
	Env         string
	LogLevel    string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Clinic locale
	ClinicTimezone    string
	ClinicCountryCode string

	// Reminder board
	BoardRefreshInterval time.Duration
	UpcomingHorizon      time.Duration
	MarkSentClaimTTL     time.Duration

	StaffJWTSecret     string
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int

	// Terminal board client
	FrontdeskAPIURL   string
	FrontdeskAPIToken string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		ClinicTimezone:    getEnv("CLINIC_TIMEZONE", "America/Sao_Paulo"),
		ClinicCountryCode: getEnv("CLINIC_COUNTRY_CODE", "55"),

		BoardRefreshInterval: getEnvAsDuration("BOARD_REFRESH_INTERVAL", 5*time.Minute),
		UpcomingHorizon:      getEnvAsDuration("UPCOMING_HORIZON", 24*time.Hour),
		MarkSentClaimTTL:     getEnvAsDuration("MARK_SENT_CLAIM_TTL", 30*time.Second),

		StaffJWTSecret:     getEnv("STAFF_JWT_SECRET", ""),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 10),

		FrontdeskAPIURL:   strings.TrimRight(getEnv("FRONTDESK_API_URL", "http://localhost:8080"), "/"),
		FrontdeskAPIToken: getEnv("FRONTDESK_API_TOKEN", ""),
	}
}

// Location resolves ClinicTimezone, falling back to UTC when it is unknown.
func (c *Config) Location() *time.Location {
	if c == nil {
		return time.UTC
	}
	return datekey.Location(c.ClinicTimezone)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil && value > 0 {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping blanks.
func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
