// Package config loads agent configuration from environment variables,
// with an optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/opspulse/workmon/internal/domain"
)

// Config holds all configuration for the agent process.
type Config struct {
	Session domain.SessionConfig

	UploadInterval    time.Duration
	SpoolRetryEvery   time.Duration
	HeartbeatInterval time.Duration

	DataDir           string
	DirectorySeedPath string
	TokenSecret       string
	LogLevel          string
}

// Load reads configuration from environment variables. A missing .env file
// is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	session := domain.DefaultSessionConfig()
	var err error
	if session.IdleThresholdSeconds, err = getEnvInt("WORKMON_IDLE_THRESHOLD_SECONDS", session.IdleThresholdSeconds); err != nil {
		return nil, err
	}
	if session.IdlePollIntervalSeconds, err = getEnvInt("WORKMON_IDLE_POLL_SECONDS", session.IdlePollIntervalSeconds); err != nil {
		return nil, err
	}
	if session.BrowserPollIntervalSec, err = getEnvInt("WORKMON_BROWSER_POLL_SECONDS", session.BrowserPollIntervalSec); err != nil {
		return nil, err
	}
	if session.BufferCapacity, err = getEnvInt("WORKMON_BUFFER_CAPACITY", session.BufferCapacity); err != nil {
		return nil, err
	}
	if session.KeystrokeRingCapacity, err = getEnvInt("WORKMON_KEY_RING_CAPACITY", session.KeystrokeRingCapacity); err != nil {
		return nil, err
	}

	uploadSeconds, err := getEnvInt("WORKMON_UPLOAD_INTERVAL_SECONDS", 10)
	if err != nil {
		return nil, err
	}
	spoolSeconds, err := getEnvInt("WORKMON_SPOOL_RETRY_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	heartbeatSeconds, err := getEnvInt("WORKMON_HEARTBEAT_SECONDS", 30)
	if err != nil {
		return nil, err
	}

	home, _ := os.UserHomeDir()
	cfg := &Config{
		Session:           session,
		UploadInterval:    time.Duration(uploadSeconds) * time.Second,
		SpoolRetryEvery:   time.Duration(spoolSeconds) * time.Second,
		HeartbeatInterval: time.Duration(heartbeatSeconds) * time.Second,
		DataDir:           getEnv("WORKMON_DATA_DIR", filepath.Join(home, ".workmon")),
		DirectorySeedPath: getEnv("WORKMON_DIRECTORY_SEED", ""),
		TokenSecret:       getEnv("WORKMON_TOKEN_SECRET", ""),
		LogLevel:          getEnv("WORKMON_LOG_LEVEL", "info"),
	}

	if cfg.Session.BufferCapacity <= 0 {
		return nil, fmt.Errorf("buffer capacity must be positive, got %d", cfg.Session.BufferCapacity)
	}
	if cfg.Session.IdleThresholdSeconds <= 0 {
		return nil, fmt.Errorf("idle threshold must be positive, got %d", cfg.Session.IdleThresholdSeconds)
	}
	return cfg, nil
}

// getEnv gets an environment variable with a fallback default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
