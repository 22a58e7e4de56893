package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Alwanly/heroku-ranger/pkg/validator"
)

const (
	DefaultRangerURL   = "https://rangerapp.com/api/v1"
	DefaultPlatformURL = "https://api.heroku.com"
)

type CLIConfig struct {
	RangerURL       string `validate:"required,url"`
	PlatformURL     string `validate:"required,url"`
	PlatformToken   string
	AppName         string
	CredentialsFile string
	RequestTimeout  time.Duration `validate:"gt=0"`
	// Retry policy for idempotent Ranger calls
	MaxRetries       int `validate:"gte=0"`
	InitialBackoff   time.Duration
	MaxBackoff       time.Duration
	ClearConcurrency int    `validate:"gte=1"`
	LogFormat        string `validate:"omitempty,oneof=console development json production"`
	LogLevel         string `validate:"omitempty,oneof=debug info warn error"`
}

type StubConfig struct {
	ServerAddr    string `validate:"required"`
	DatabasePath  string
	APIKey        string `validate:"required"`
	CheckInterval time.Duration
	CheckTimeout  time.Duration `validate:"gt=0"`
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	LogFormat     string `validate:"omitempty,oneof=console development json production"`
	LogLevel      string `validate:"omitempty,oneof=debug info warn error"`
}

// LoadCLIConfig reads the command line client configuration from environment or returns defaults
func LoadCLIConfig() (*CLIConfig, error) {
	cfg := &CLIConfig{
		RangerURL:        envOrDefault("RANGER_API_URL", DefaultRangerURL),
		PlatformURL:      envOrDefault("HEROKU_API_URL", DefaultPlatformURL),
		PlatformToken:    os.Getenv("HEROKU_API_KEY"),
		AppName:          os.Getenv("HEROKU_APP"),
		CredentialsFile:  envOrDefault("RANGER_CONFIG", defaultCredentialsFile()),
		RequestTimeout:   envSeconds("RANGER_REQUEST_TIMEOUT", 10*time.Second),
		MaxRetries:       envInt("RANGER_MAX_RETRIES", 2),
		InitialBackoff:   envMillis("RANGER_INITIAL_BACKOFF_MS", 200*time.Millisecond),
		MaxBackoff:       envMillis("RANGER_MAX_BACKOFF_MS", 2*time.Second),
		ClearConcurrency: envInt("RANGER_CLEAR_CONCURRENCY", 4),
		LogFormat:        envOrDefault("LOG_FORMAT", "console"),
		LogLevel:         envOrDefault("LOG_LEVEL", "warn"),
	}

	if err := validator.ValidateStruct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %s", validator.Describe(err))
	}
	return cfg, nil
}

// LoadStubConfig reads the local Ranger stub server config from environment or returns defaults
func LoadStubConfig() (*StubConfig, error) {
	cfg := &StubConfig{
		ServerAddr:    envOrDefault("STUB_ADDR", ":8090"),
		DatabasePath:  envOrDefault("DATABASE_PATH", "./data/ranger.db"),
		APIKey:        envOrDefault("STUB_API_KEY", "local-ranger-key"),
		CheckInterval: envSeconds("STUB_CHECK_INTERVAL", 0),
		CheckTimeout:  envSeconds("STUB_CHECK_TIMEOUT", 5*time.Second),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),
		LogFormat:     os.Getenv("LOG_FORMAT"),
		LogLevel:      envOrDefault("LOG_LEVEL", "info"),
	}

	if err := validator.ValidateStruct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %s", validator.Describe(err))
	}
	return cfg, nil
}

func defaultCredentialsFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "heroku-ranger", "credentials.yml")
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func envSeconds(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return def
}

func envMillis(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return time.Duration(i) * time.Millisecond
		}
	}
	return def
}
