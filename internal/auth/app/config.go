package app

import (
	"errors"
	"os"
	"strconv"
	"time"
)

type Config struct {
	AccessTokenSecret  string // Required: HMAC secret for access tokens
	RefreshTokenSecret string // Required: HMAC secret for refresh tokens
	PasswordPepper     string // Required: server-side pepper mixed into password hashes
	OTPPepper          string // Required: separate pepper for OTP hashes

	AccessTokenTTL  time.Duration // Optional: access token lifetime (default: 15m)
	RefreshTokenTTL time.Duration // Optional: refresh token lifetime (default: 7 days)

	DatabaseFile string // Optional: path to SQLite database file (default: ./campusconnect.db)
	RedisAddr    string // Optional: redis host:port for cache and job queue (default: localhost:6379)
	RedisPass    string // Optional: redis password

	EmailDomain            string        // Optional: institutional mail domain accounts must use (default: campus.edu)
	OTPTTL                 time.Duration // Optional: verification code lifetime (default: 5m)
	UsernameReservationTTL time.Duration // Optional: signup username claim lifetime (default: 15m)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired-token purge interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		AccessTokenSecret:  os.Getenv("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret: os.Getenv("REFRESH_TOKEN_SECRET"),
		PasswordPepper:     os.Getenv("PASSWORD_PEPPER"),
		OTPPepper:          os.Getenv("OTP_PEPPER"),

		AccessTokenTTL:  getEnvDurationOrDefault("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: getEnvDurationOrDefault("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		DatabaseFile: getEnvOrDefault("DATABASE_FILE", "campusconnect.db"),
		RedisAddr:    getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPass:    os.Getenv("REDIS_PASSWORD"),

		EmailDomain:            getEnvOrDefault("CAMPUS_EMAIL_DOMAIN", "campus.edu"),
		OTPTTL:                 getEnvDurationOrDefault("OTP_TTL", 5*time.Minute),
		UsernameReservationTTL: getEnvDurationOrDefault("USERNAME_RESERVATION_TTL", 15*time.Minute),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

// Validate reports the secrets that cannot be defaulted.
func (c Config) Validate() error {
	switch {
	case c.AccessTokenSecret == "":
		return errors.New("ACCESS_TOKEN_SECRET is required")
	case c.RefreshTokenSecret == "":
		return errors.New("REFRESH_TOKEN_SECRET is required")
	case c.PasswordPepper == "":
		return errors.New("PASSWORD_PEPPER is required")
	case c.OTPPepper == "":
		return errors.New("OTP_PEPPER is required")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if d, err := time.ParseDuration(value); err == nil {
		return d
	}

	return defaultValue
}
