// Package config provides server configuration from the environment.
package config

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all server configuration.
type Config struct {
	Port           string
	AllowedOrigins []string
	SessionTTL     time.Duration
	Redis          RedisConfig
	DBPath         string
	RulesPath      string
	RateLimit      int
	RateWindow     time.Duration
	LogLevel       slog.Level
	MaxInputSize   int
	Encryption     EncryptionConfig
}

// EncryptionConfig holds the AES-256 keys that seal stored sessions.
// No active key leaves sessions in plain JSON.
type EncryptionConfig struct {
	ActiveKey    []byte
	FallbackKeys [][]byte
}

// Enabled reports whether session encryption was configured.
func (e EncryptionConfig) Enabled() bool {
	return len(e.ActiveKey) > 0
}

// RedisConfig selects the Redis session store. An empty Addr keeps sessions in memory.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a Redis address was configured.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	level, err := parseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	encryption, err := parseEncryption(getEnv("SESSION_ENCRYPTION_KEY", ""), getEnv("SESSION_ENCRYPTION_FALLBACK_KEYS", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg := &Config{
		Port:           getEnv("PORT", "3001"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3001")),
		SessionTTL:     getEnvDuration("SESSION_TTL", 30*time.Minute),
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		DBPath:       getEnv("DB_PATH", "./data/clearance.db"),
		RulesPath:    getEnv("RULES_PATH", ""),
		RateLimit:    getEnvInt("RATE_LIMIT", 20),
		RateWindow:   getEnvDuration("RATE_WINDOW", time.Minute),
		LogLevel:     level,
		MaxInputSize: getEnvInt("CLEARANCE_MAX_INPUT_SIZE", 16384),
		Encryption:   encryption,
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("RATE_LIMIT must be > 0")
	}
	if c.RateWindow <= 0 {
		return fmt.Errorf("RATE_WINDOW must be > 0")
	}
	if c.MaxInputSize <= 0 {
		return fmt.Errorf("CLEARANCE_MAX_INPUT_SIZE must be > 0")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("REDIS_DB must be >= 0")
	}
	return nil
}

// RecordingEnabled reports whether leads and events go to a database.
func (c *Config) RecordingEnabled() bool {
	return c.DBPath != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

// getEnvDuration accepts Go durations ("90s") or bare seconds ("90").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseLevel(value string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL %q: %w", value, err)
	}
	return level, nil
}

const encryptionKeySize = 32

// parseEncryption decodes base64 keys. Fallback keys without an active key
// are rejected since nothing could be written.
func parseEncryption(active, fallbacks string) (EncryptionConfig, error) {
	var cfg EncryptionConfig
	decode := func(name, value string) ([]byte, error) {
		key, err := base64.StdEncoding.DecodeString(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if len(key) != encryptionKeySize {
			return nil, fmt.Errorf("%s must decode to %d bytes, got %d", name, encryptionKeySize, len(key))
		}
		return key, nil
	}

	if active = strings.TrimSpace(active); active != "" {
		key, err := decode("SESSION_ENCRYPTION_KEY", active)
		if err != nil {
			return cfg, err
		}
		cfg.ActiveKey = key
	}
	for _, value := range splitList(fallbacks) {
		key, err := decode("SESSION_ENCRYPTION_FALLBACK_KEYS", value)
		if err != nil {
			return cfg, err
		}
		cfg.FallbackKeys = append(cfg.FallbackKeys, key)
	}
	if len(cfg.FallbackKeys) > 0 && !cfg.Enabled() {
		return cfg, fmt.Errorf("SESSION_ENCRYPTION_FALLBACK_KEYS requires SESSION_ENCRYPTION_KEY")
	}
	return cfg, nil
}
