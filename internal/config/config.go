// Package config loads runtime configuration from the environment.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	// Load .env file to environments
	_ "github.com/joho/godotenv/autoload"
)

// Database holds the parameters for connecting to postgres.
type Database struct {
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	ConnStr    string
	UseConnStr bool
}

// Token configures the identity token codec and its transport.
type Token struct {
	Secret string
	Issuer string
	TTL    time.Duration
	Header string
	Marker string
}

// Redis is optional; an empty Addr keeps the token denylist in memory.
type Redis struct {
	Addr     string
	Password string
	DB       int
}

// SMTP is optional; an empty Host logs OTP mails instead of sending them.
type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Admin seeds an admin-like identity at start when Email and Password are set.
type Admin struct {
	Email        string
	Password     string
	MobileNumber string
}

// Config is the whole runtime configuration.
type Config struct {
	Port           int
	LogLevel       slog.Level
	AllowOrigins   []string
	HashCost       int
	OTPTTL         time.Duration
	UploadDir      string
	GCSBucket      string
	MaxUploadBytes int64

	Database Database
	Token    Token
	Redis    Redis
	SMTP     SMTP
	Admin    Admin
}

// Load reads the configuration from the environment, applying defaults.
func Load() Config {
	connStr := GetString("DB_CONNECTION_STR", "")
	return Config{
		Port:           GetInt("PORT", 8080),
		LogLevel:       GetLevel("LOG_LEVEL", slog.LevelInfo),
		AllowOrigins:   GetList("ALLOW_ORIGIN", []string{"*"}),
		HashCost:       GetInt("SALT_ROUNDS", 10),
		OTPTTL:         GetDuration("OTP_TTL", 10*time.Minute),
		UploadDir:      GetString("UPLOAD_DIR", "uploads"),
		GCSBucket:      GetString("GCS_BUCKET", ""),
		MaxUploadBytes: int64(GetInt("MAX_UPLOAD_BYTES", 10<<20)),
		Database: Database{
			Host:       GetString("DB_HOST", ""),
			Port:       GetString("DB_PORT", ""),
			User:       GetString("DB_USERNAME", ""),
			Password:   GetString("DB_PASSWORD", ""),
			DBName:     GetString("DB_DATABASE", ""),
			ConnStr:    connStr,
			UseConnStr: GetBool("USE_CONNECTION_STR", connStr != ""),
		},
		Token: Token{
			Secret: GetString("TOKEN_SECRET", ""),
			Issuer: GetString("TOKEN_ISSUER", "jobboard"),
			TTL:    GetDuration("TOKEN_TTL", 24*time.Hour),
			Header: GetString("TOKEN_HEADER", "token"),
			Marker: GetString("TOKEN_MARKER", "viri__"),
		},
		Redis: Redis{
			Addr:     GetString("REDIS_ADDR", ""),
			Password: GetString("REDIS_PASSWORD", ""),
			DB:       GetInt("REDIS_DB", 0),
		},
		SMTP: SMTP{
			Host:     GetString("SMTP_HOST", ""),
			Port:     GetInt("SMTP_PORT", 587),
			Username: GetString("SMTP_USERNAME", ""),
			Password: GetString("SMTP_PASSWORD", ""),
			From:     GetString("SMTP_FROM", "no-reply@jobboard.local"),
		},
		Admin: Admin{
			Email:        GetString("ADMIN_EMAIL", ""),
			Password:     GetString("ADMIN_PASSWORD", ""),
			MobileNumber: GetString("ADMIN_MOBILE", ""),
		},
	}
}

// GetString retrieves an environment variable or returns a fallback when unset or empty.
func GetString(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// GetInt retrieves an environment variable as integer or returns fallback.
func GetInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			slog.Warn("invalid config value", "key", key, "error", err)
			return fallback
		}
		return parsed
	}
	return fallback
}

// GetBool retrieves an environment variable as bool or returns fallback.
func GetBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			slog.Warn("invalid config value", "key", key, "error", err)
			return fallback
		}
		return parsed
	}
	return fallback
}

// GetDuration parses values like "15m" or "24h".
func GetDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			slog.Warn("invalid config value", "key", key, "error", err)
			return fallback
		}
		return parsed
	}
	return fallback
}

// GetList splits a comma separated variable.
func GetList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// GetLevel parses debug, info, warn or error.
func GetLevel(key string, fallback slog.Level) slog.Level {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(value)); err != nil {
		slog.Warn("invalid config value", "key", key, "error", err)
		return fallback
	}
	return lvl
}
