// Package config reads settings from the environment, after loading a .env
// file if one is present.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	Port     string
	AppEnv   string
	LogLevel slog.Level

	StorageDriver string
	DatabaseDSN   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret      string
	AccessTokenTTL time.Duration
	SessionTTL     time.Duration
	SessionCookie  string
	BcryptCost     int

	SMTPHost  string
	SMTPPort  int
	SMTPUser  string
	SMTPPass  string
	FromEmail string
}

// Production reports whether cookies must be marked Secure and mail must go
// out over SMTP.
func (c Config) Production() bool {
	return c.AppEnv == "production"
}

// Load reads the configuration. A missing JWT_SECRET is an error: the server
// must not start without a signing key.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		Port:           getEnvOrDefault("PORT", "8080"),
		AppEnv:         getEnvOrDefault("APP_ENV", "development"),
		StorageDriver:  getEnvOrDefault("STORAGE_DRIVER", StoragePostgres),
		DatabaseDSN:    strings.TrimSpace(os.Getenv("DATABASE_DSN")),
		RedisAddr:      strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        getIntEnvOrDefault("REDIS_DB", 0),
		JWTSecret:      strings.TrimSpace(os.Getenv("JWT_SECRET")),
		AccessTokenTTL: time.Duration(getIntEnvOrDefault("ACCESS_TOKEN_EXPIRES_MIN", 15)) * time.Minute,
		SessionTTL:     time.Duration(getIntEnvOrDefault("SESSION_TTL_MIN", 60)) * time.Minute,
		SessionCookie:  getEnvOrDefault("SESSION_COOKIE", "sid"),
		BcryptCost:     getIntEnvOrDefault("BCRYPT_COST", bcrypt.DefaultCost),
		SMTPHost:       strings.TrimSpace(os.Getenv("SMTP_HOST")),
		SMTPPort:       getIntEnvOrDefault("SMTP_PORT", 587),
		SMTPUser:       os.Getenv("SMTP_USER"),
		SMTPPass:       os.Getenv("SMTP_PASS"),
		FromEmail:      getEnvOrDefault("FROM_EMAIL", "no-reply@tasknest.local"),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnvOrDefault("LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	switch cfg.StorageDriver {
	case StorageMemory:
	case StoragePostgres:
		if cfg.DatabaseDSN == "" {
			return Config{}, errors.New("DATABASE_DSN is required when STORAGE_DRIVER=postgres")
		}
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	if cfg.Production() && cfg.SMTPHost == "" {
		return Config{}, errors.New("SMTP_HOST is required when APP_ENV=production")
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value != "" {
		return value
	}
	return defaultValue
}

func getIntEnvOrDefault(key string, defaultValue int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		slog.Warn("invalid integer setting, using default", "key", key, "value", raw, "default", defaultValue)
		return defaultValue
	}
	return value
}
